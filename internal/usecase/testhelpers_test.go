package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/dietledger/backend/internal/infrastructure/memory"
	"github.com/dietledger/backend/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func newProfile(weight, height string, age int, g domain.Gender, a domain.ActivityLevel, goal domain.Goal) domain.UserProfile {
	return domain.UserProfile{
		WeightKg:      ptr(dec(weight)),
		HeightCm:      ptr(dec(height)),
		Age:           ptr(age),
		Gender:        ptr(g),
		ActivityLevel: ptr(a),
		Goal:          ptr(goal),
	}
}

// fact builds a per-100 g nutrient fact; an empty value is null.
func fact(name, value, unit string) domain.NutrientFact {
	f := domain.NutrientFact{Name: name, Unit: unit}
	if value != "" {
		f.Value = decimal.NewNullDecimal(dec(value))
	}
	return f
}

// fixedClock returns a clock pinned to the given date at noon UTC.
func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
}

// testEnv wires the services over one memory store.
type testEnv struct {
	store    *memory.Store
	users    *memory.UserRepository
	foods    *memory.FoodRepository
	meals    *memory.MealRepository
	plans    *memory.PlanRepository
	intakes  *memory.IntakeRepository
	consumed *memory.ConsumedMealRepository
	tx       *memory.TxManager
	ledger   *ConsumptionLedger
	rollup   *PlanRollup
	mealSvc  *MealService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memory.NewStore()
	env := &testEnv{
		store:    s,
		users:    memory.NewUserRepository(s),
		foods:    memory.NewFoodRepository(s),
		meals:    memory.NewMealRepository(s),
		plans:    memory.NewPlanRepository(s),
		intakes:  memory.NewIntakeRepository(s),
		consumed: memory.NewConsumedMealRepository(s),
		tx:       memory.NewTxManager(s),
	}
	log := logger.Discard()
	env.ledger = NewConsumptionLedger(log, env.users, env.meals, env.intakes, env.consumed, env.tx,
		NewIntakeCalculator(DefaultIntakeCalculatorConfig()))
	env.rollup = NewPlanRollup(log, env.plans, env.meals, env.tx)
	env.mealSvc = NewMealService(log, env.meals, env.foods, env.tx, env.rollup)
	return env
}

func (e *testEnv) addUser(t *testing.T, profile domain.UserProfile) uuid.UUID {
	t.Helper()
	u := &domain.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", Profile: profile}
	require.NoError(t, e.users.Save(context.Background(), u))
	return u.ID
}

func (e *testEnv) addFood(t *testing.T, name string, facts ...domain.NutrientFact) *domain.FoodItem {
	t.Helper()
	f := &domain.FoodItem{ID: uuid.New(), Name: name, Nutrients: facts, GramWeight: decimal.NewFromInt(100)}
	require.NoError(t, e.foods.Save(context.Background(), f))
	return f
}

// addMeal stores a meal of food at 100 g so facts apply unscaled.
func (e *testEnv) addMeal(t *testing.T, name string, foods ...*domain.FoodItem) *domain.Meal {
	t.Helper()
	m := &domain.Meal{ID: uuid.New(), Name: name}
	for _, f := range foods {
		ing, err := domain.NewIngredient(f, decimal.NewFromInt(100))
		require.NoError(t, err)
		m.AddIngredient(ing)
	}
	require.NoError(t, e.meals.Save(context.Background(), m))
	return m
}

// energyMeal is a one-ingredient meal carrying only Energy.
func (e *testEnv) energyMeal(t *testing.T, kcal string) *domain.Meal {
	t.Helper()
	f := e.addFood(t, "energy "+kcal, fact(domain.NutrientEnergy, kcal, "kcal"))
	return e.addMeal(t, "meal "+kcal, f)
}

// seedIntake stores an intake record directly, bypassing the calculator.
func (e *testEnv) seedIntake(t *testing.T, userID uuid.UUID, date time.Time, targets map[string]decimal.Decimal) {
	t.Helper()
	require.NoError(t, e.intakes.Create(context.Background(), &domain.RecommendedDailyIntake{
		ID:      uuid.New(),
		UserID:  userID,
		Date:    date,
		Targets: targets,
	}))
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
