package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MealIngredient is a quantity of a food item inside one meal. Food is the
// shared catalog entry and may be nil when it was not loaded.
type MealIngredient struct {
	ID            uuid.UUID       `json:"id"`
	FoodItemID    uuid.UUID       `json:"foodItemId"`
	Food          *FoodItem       `json:"-"`
	QuantityGrams decimal.Decimal `json:"quantityGrams"`
}

// Meal owns its ingredients. The Total* fields are a cache of
// MealTotals(Ingredients) and are rewritten by every mutation method.
type Meal struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Ingredients   []MealIngredient `json:"ingredients"`
	TotalCalories decimal.Decimal  `json:"totalCalories"`
	TotalProtein  decimal.Decimal  `json:"totalProtein"`
	TotalCarbs    decimal.Decimal  `json:"totalCarbs"`
	TotalFat      decimal.Decimal  `json:"totalFat"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// NewIngredient validates the quantity and builds an ingredient for food.
func NewIngredient(food *FoodItem, quantityGrams decimal.Decimal) (MealIngredient, error) {
	if food == nil {
		return MealIngredient{}, fmt.Errorf("%w: ingredient without food item", ErrInvalidRequest)
	}
	if quantityGrams.IsNegative() {
		return MealIngredient{}, fmt.Errorf("%w: quantity must be >= 0, got %s", ErrInvalidRequest, quantityGrams)
	}
	return MealIngredient{
		ID:            uuid.New(),
		FoodItemID:    food.ID,
		Food:          food,
		QuantityGrams: quantityGrams,
	}, nil
}

// AddIngredient appends ing and refreshes the cached totals.
func (m *Meal) AddIngredient(ing MealIngredient) {
	m.Ingredients = append(m.Ingredients, ing)
	m.Recompute()
}

// RemoveIngredient drops the ingredient with the given id. It reports
// whether anything was removed.
func (m *Meal) RemoveIngredient(id uuid.UUID) bool {
	for i, ing := range m.Ingredients {
		if ing.ID == id {
			m.Ingredients = append(m.Ingredients[:i], m.Ingredients[i+1:]...)
			m.Recompute()
			return true
		}
	}
	return false
}

// ReplaceIngredients swaps the whole ingredient list.
func (m *Meal) ReplaceIngredients(ings []MealIngredient) {
	m.Ingredients = ings
	m.Recompute()
}

// Recompute rewrites the cached totals from the ingredients.
func (m *Meal) Recompute() {
	t := MealTotals(m.Ingredients)
	m.TotalCalories = t.Calories
	m.TotalProtein = t.Protein
	m.TotalCarbs = t.Carbs
	m.TotalFat = t.Fat
}

// CachedTotals returns the stored totals without recomputing them.
func (m *Meal) CachedTotals() MacroTotals {
	return MacroTotals{
		Calories: m.TotalCalories,
		Protein:  m.TotalProtein,
		Carbs:    m.TotalCarbs,
		Fat:      m.TotalFat,
	}
}
