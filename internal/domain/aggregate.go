package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MealTotals sums calories, protein, carbohydrates and fat over the
// ingredients. Each fact contributes value * grams / 100; null facts and
// ingredients without a loaded food contribute nothing.
func MealTotals(ingredients []MealIngredient) MacroTotals {
	totals := MacroTotals{}
	for _, ing := range ingredients {
		if ing.Food == nil {
			continue
		}
		for _, fact := range ing.Food.Nutrients {
			field := classifyMacro(fact.Name)
			if field == macroNone {
				continue
			}
			v := fact.Scaled(ing.QuantityGrams)
			switch field {
			case macroCalories:
				totals.Calories = totals.Calories.Add(v)
			case macroProtein:
				totals.Protein = totals.Protein.Add(v)
			case macroCarbs:
				totals.Carbs = totals.Carbs.Add(v)
			case macroFat:
				totals.Fat = totals.Fat.Add(v)
			}
		}
	}
	return totals
}

// MealNutrients returns the full nutrient breakdown of the ingredients.
// Names that normalize to the same key are summed under the first name seen.
func MealNutrients(ingredients []MealIngredient) Breakdown {
	acc := newBreakdownAccumulator()
	for _, ing := range ingredients {
		acc.addIngredient(ing)
	}
	return acc.result()
}

// PerFoodItemNutrients returns one breakdown per food item. A food used by
// several ingredients has their contributions summed.
func PerFoodItemNutrients(ingredients []MealIngredient) map[uuid.UUID]Breakdown {
	accs := make(map[uuid.UUID]*breakdownAccumulator)
	for _, ing := range ingredients {
		if ing.Food == nil {
			continue
		}
		acc, ok := accs[ing.Food.ID]
		if !ok {
			acc = newBreakdownAccumulator()
			accs[ing.Food.ID] = acc
		}
		acc.addIngredient(ing)
	}

	out := make(map[uuid.UUID]Breakdown, len(accs))
	for id, acc := range accs {
		out[id] = acc.result()
	}
	return out
}

// DayTotals sums MealTotals over the meals; a meal listed twice counts twice.
func DayTotals(meals []*Meal) MacroTotals {
	totals := MacroTotals{}
	for _, m := range meals {
		if m == nil {
			continue
		}
		totals = totals.Add(MealTotals(m.Ingredients))
	}
	return totals
}

// DayNutrients returns the full breakdown of every meal in the day.
func DayNutrients(meals []*Meal) Breakdown {
	acc := newBreakdownAccumulator()
	for _, m := range meals {
		if m == nil {
			continue
		}
		for _, ing := range m.Ingredients {
			acc.addIngredient(ing)
		}
	}
	return acc.result()
}

// PlanTotals sums DayTotals over the days.
func PlanTotals(days []DietDay) MacroTotals {
	totals := MacroTotals{}
	for _, d := range days {
		totals = totals.Add(DayTotals(d.Meals))
	}
	return totals
}

// PlanAverages divides PlanTotals by the number of days. With no days every
// average is null.
func PlanAverages(days []DietDay) MacroAverages {
	if len(days) == 0 {
		return MacroAverages{}
	}
	totals := PlanTotals(days)
	n := decimal.NewFromInt(int64(len(days)))
	avg := func(d decimal.Decimal) decimal.NullDecimal {
		return decimal.NewNullDecimal(d.Div(n))
	}
	return MacroAverages{
		Calories: avg(totals.Calories),
		Protein:  avg(totals.Protein),
		Carbs:    avg(totals.Carbs),
		Fat:      avg(totals.Fat),
	}
}

type breakdownAccumulator struct {
	order  []string
	names  map[string]string
	values map[string]Amount
}

func newBreakdownAccumulator() *breakdownAccumulator {
	return &breakdownAccumulator{
		names:  make(map[string]string),
		values: make(map[string]Amount),
	}
}

func (a *breakdownAccumulator) addIngredient(ing MealIngredient) {
	if ing.Food == nil {
		return
	}
	for _, fact := range ing.Food.Nutrients {
		if !fact.Value.Valid {
			continue
		}
		a.add(fact.Name, fact.Unit, fact.Scaled(ing.QuantityGrams))
	}
}

func (a *breakdownAccumulator) add(name, unit string, v decimal.Decimal) {
	key := NutrientNameNormalizer(name)
	if key == "" {
		return
	}
	cur, ok := a.values[key]
	if !ok {
		a.order = append(a.order, key)
		a.names[key] = name
		cur.Unit = unit
	}
	if cur.Unit == "" {
		cur.Unit = unit
	}
	cur.Value = cur.Value.Add(v)
	a.values[key] = cur
}

func (a *breakdownAccumulator) result() Breakdown {
	out := make(Breakdown, len(a.order))
	for _, key := range a.order {
		out[a.names[key]] = a.values[key]
	}
	return out
}
