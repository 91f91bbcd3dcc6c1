package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecommendedDailyIntake is the per-user, per-date target record. Targets
// are decremented in place as meals are consumed and may go negative.
type RecommendedDailyIntake struct {
	ID        uuid.UUID                  `json:"id"`
	UserID    uuid.UUID                  `json:"userId"`
	Date      time.Time                  `json:"date"`
	Targets   map[string]decimal.Decimal `json:"targets"`
	Version   int                        `json:"-"`
	CreatedAt time.Time                  `json:"createdAt"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// ConsumedMeal is the immutable snapshot written for each consumption.
type ConsumedMeal struct {
	ID                  uuid.UUID       `json:"id"`
	IntakeID            uuid.UUID       `json:"intakeId"`
	UserID              uuid.UUID       `json:"userId"`
	MealID              uuid.UUID       `json:"mealId"`
	MealName            string          `json:"mealName"`
	TotalCalories       decimal.Decimal `json:"totalCalories"`
	TotalProtein        decimal.Decimal `json:"totalProtein"`
	TotalCarbs          decimal.Decimal `json:"totalCarbs"`
	TotalFat            decimal.Decimal `json:"totalFat"`
	TotalSugars         decimal.Decimal `json:"totalSugars"`
	TotalSaturatedFat   decimal.Decimal `json:"totalSaturatedFat"`
	TotalUnsaturatedFat decimal.Decimal `json:"totalUnsaturatedFat"`
	ConsumedDate        time.Time       `json:"consumedDate"`
	ConsumedTime        time.Time       `json:"consumedTime"`
}

// Scope selects the date window of a cumulative intake view.
type Scope string

const (
	ScopeWeek  Scope = "week"
	ScopeMonth Scope = "month"
)

// ParseScope accepts "week" and "month" case-insensitively.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScopeWeek, ScopeMonth:
		return sc, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidRequest, s)
}

// Range returns the inclusive first and last calendar day of the scope
// containing day. Weeks run Monday through Sunday.
func (s Scope) Range(day time.Time) (time.Time, time.Time) {
	day = DateOf(day)
	switch s {
	case ScopeMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, -1)
	default:
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := day.AddDate(0, 0, -(weekday - 1))
		return monday, monday.AddDate(0, 0, 6)
	}
}

// DateOf truncates t to its calendar date at UTC midnight, keeping the
// year/month/day as seen in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidRequest, s)
	}
	return t, nil
}
