// Package memory is a process-local storage adapter. It backs the service in
// development and the usecase tests; every read returns a copy so callers
// never alias stored state.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type intakeKey struct {
	userID uuid.UUID
	date   time.Time
}

type mealRecord struct {
	meal        domain.Meal
	ingredients []domain.MealIngredient
}

type dayRecord struct {
	day     domain.DietDay
	mealIDs []uuid.UUID
}

type planRecord struct {
	plan domain.DietPlan
	days []dayRecord
}

// Store holds every entity in maps guarded by one RWMutex.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]domain.User
	foods    map[uuid.UUID]domain.FoodItem
	fdcIndex map[int]uuid.UUID
	meals    map[uuid.UUID]mealRecord
	plans    map[uuid.UUID]planRecord
	intakes  map[intakeKey]domain.RecommendedDailyIntake
	consumed []domain.ConsumedMeal

	txMu sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]domain.User),
		foods:    make(map[uuid.UUID]domain.FoodItem),
		fdcIndex: make(map[int]uuid.UUID),
		meals:    make(map[uuid.UUID]mealRecord),
		plans:    make(map[uuid.UUID]planRecord),
		intakes:  make(map[intakeKey]domain.RecommendedDailyIntake),
	}
}

type txKey struct{}

// TxManager serializes units of work over a Store. There is no rollback:
// writes made before fn fails stay applied.
type TxManager struct {
	store *Store
}

// NewTxManager creates a TxManager for store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTx runs fn while holding the store's transaction lock. Nested calls
// join the outer unit of work.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

func copyFood(f domain.FoodItem) *domain.FoodItem {
	out := f
	out.Nutrients = append([]domain.NutrientFact(nil), f.Nutrients...)
	return &out
}

func copyTargets(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// loadMeal hydrates a meal record with copies of its food items. Callers
// hold s.mu.
func (s *Store) loadMeal(id uuid.UUID) (*domain.Meal, bool) {
	rec, ok := s.meals[id]
	if !ok {
		return nil, false
	}
	meal := rec.meal
	meal.Ingredients = make([]domain.MealIngredient, len(rec.ingredients))
	for i, ing := range rec.ingredients {
		if f, ok := s.foods[ing.FoodItemID]; ok {
			ing.Food = copyFood(f)
		}
		meal.Ingredients[i] = ing
	}
	return &meal, true
}
