package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fact(name, value, unit string) NutrientFact {
	if value == "" {
		return NutrientFact{Name: name, Unit: unit}
	}
	return NutrientFact{Name: name, Value: decimal.NewNullDecimal(dec(value)), Unit: unit}
}

func food(name string, facts ...NutrientFact) *FoodItem {
	return &FoodItem{ID: uuid.New(), Name: name, Nutrients: facts}
}

func ingredient(f *FoodItem, grams string) MealIngredient {
	return MealIngredient{ID: uuid.New(), FoodItemID: f.ID, Food: f, QuantityGrams: dec(grams)}
}

func oats() *FoodItem {
	return food("Oats",
		fact("Energy", "389", "kcal"),
		fact("Protein", "16.9", "g"),
		fact("Carbohydrates", "66.3", "g"),
		fact("Total lipid (fat)", "6.9", "g"),
		fact("Fiber, total dietary", "10.6", "g"),
	)
}

func milk() *FoodItem {
	return food("Milk",
		fact("Energy", "61", "kcal"),
		fact("Protein", "3.2", "g"),
		fact("Carbohydrates", "4.8", "g"),
		fact("Total lipid (fat)", "3.3", "g"),
		fact("Calcium, Ca", "113", "mg"),
	)
}
