package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DietDay groups meals for one day of a plan. Meals are shared with other
// days and plans; day totals are always computed on demand.
type DietDay struct {
	ID     uuid.UUID `json:"id"`
	PlanID uuid.UUID `json:"planId"`
	Date   time.Time `json:"date"`
	Label  string    `json:"label"`
	Meals  []*Meal   `json:"meals"`
}

// Totals sums the meals of the day.
func (d DietDay) Totals() MacroTotals {
	return DayTotals(d.Meals)
}

// DietPlan owns its days. The Total*/Avg* fields are cached and refreshed by
// RecomputeTotals; SaveCount belongs to the statistics job.
type DietPlan struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Days          []DietDay           `json:"days"`
	TotalCalories decimal.Decimal     `json:"totalCalories"`
	TotalProtein  decimal.Decimal     `json:"totalProtein"`
	TotalCarbs    decimal.Decimal     `json:"totalCarbs"`
	TotalFat      decimal.Decimal     `json:"totalFat"`
	AvgCalories   decimal.NullDecimal `json:"avgCalories"`
	AvgProtein    decimal.NullDecimal `json:"avgProtein"`
	AvgCarbs      decimal.NullDecimal `json:"avgCarbs"`
	AvgFat        decimal.NullDecimal `json:"avgFat"`
	SaveCount     int                 `json:"saveCount"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// RecomputeTotals rewrites the cached total and average fields from Days.
func (p *DietPlan) RecomputeTotals() {
	totals := PlanTotals(p.Days)
	p.TotalCalories = totals.Calories
	p.TotalProtein = totals.Protein
	p.TotalCarbs = totals.Carbs
	p.TotalFat = totals.Fat

	avg := PlanAverages(p.Days)
	p.AvgCalories = avg.Calories
	p.AvgProtein = avg.Protein
	p.AvgCarbs = avg.Carbs
	p.AvgFat = avg.Fat
}

// ContainsMeal reports whether any day of the plan lists the meal.
func (p *DietPlan) ContainsMeal(mealID uuid.UUID) bool {
	for _, d := range p.Days {
		for _, m := range d.Meals {
			if m != nil && m.ID == mealID {
				return true
			}
		}
	}
	return false
}
