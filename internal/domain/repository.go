package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CacheRepository stores JSON-encodable values with a TTL. Get decodes the
// entry into dest and returns ErrCacheMiss for absent or expired keys.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// USDAClient defines the interface for interacting with USDA FoodData Central API
type USDAClient interface {
	SearchFoods(ctx context.Context, query string) (*USDASearchResponse, error)
	GetFoodDetails(ctx context.Context, fdcID int) (*USDAFood, error)
}

// UserRepository loads users with their profile.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Save(ctx context.Context, user *User) error
}

// FoodRepository is the nutrient fact store.
type FoodRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*FoodItem, error)
	GetByFdcID(ctx context.Context, fdcID int) (*FoodItem, error)
	// Save inserts or updates the food item and its facts.
	Save(ctx context.Context, food *FoodItem) error
}

// MealRepository loads meals with ingredients and their food items.
type MealRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Meal, error)
	// ListIDsByFood returns the meals with an ingredient of the food item.
	ListIDsByFood(ctx context.Context, foodID uuid.UUID) ([]uuid.UUID, error)
	// Save persists the meal, its ingredient list and cached totals.
	Save(ctx context.Context, meal *Meal) error
}

// PlanRepository loads diet plans with days, meals, ingredients and foods.
type PlanRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*DietPlan, error)
	ListIDsByMeal(ctx context.Context, mealID uuid.UUID) ([]uuid.UUID, error)
	Save(ctx context.Context, plan *DietPlan) error
	// SaveTotals writes only the cached total and average fields.
	SaveTotals(ctx context.Context, plan *DietPlan) error
}

// IntakeRepository stores one intake record per user and date.
type IntakeRepository interface {
	// Find returns ErrIntakeNotFound when there is no record for the date.
	Find(ctx context.Context, userID uuid.UUID, date time.Time) (*RecommendedDailyIntake, error)
	// FindForUpdate is Find holding a write lock until the transaction ends.
	FindForUpdate(ctx context.Context, userID uuid.UUID, date time.Time) (*RecommendedDailyIntake, error)
	// Create returns ErrAlreadyExists when a record for (user, date) exists.
	Create(ctx context.Context, rdi *RecommendedDailyIntake) error
	// UpdateTargets writes Targets if Version still matches the stored
	// version, then increments it; otherwise ErrConcurrentUpdate.
	UpdateTargets(ctx context.Context, rdi *RecommendedDailyIntake) error
	// ListRange returns the records dated within [from, to], oldest first.
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]RecommendedDailyIntake, error)
}

// ConsumedMealRepository is the append-only consumption ledger.
type ConsumedMealRepository interface {
	Create(ctx context.Context, meal *ConsumedMeal) error
	ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ConsumedMeal, error)
}

// TxManager runs fn in one atomic unit of work.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
