package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gender selects the Mifflin-St Jeor constant.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ActivityLevel is one of the five TDEE activity bands.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Goal drives the caloric adjustment and the protein policy.
type Goal string

const (
	GoalLoseWeight           Goal = "lose_weight"
	GoalLoseWeightKeepMuscle Goal = "lose_weight_keep_muscle"
	GoalMaintain             Goal = "maintain"
	GoalGainWeight           Goal = "gain_weight"
	GoalBuildMuscle          Goal = "build_muscle"
)

// ParseGender accepts the gender names case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, s)
}

// ParseActivityLevel accepts the activity band names case-insensitively.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	switch a := ActivityLevel(strings.ToLower(strings.TrimSpace(s))); a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, s)
}

// ParseGoal accepts the goal names case-insensitively.
func ParseGoal(s string) (Goal, error) {
	switch g := Goal(strings.ToLower(strings.TrimSpace(s))); g {
	case GoalLoseWeight, GoalLoseWeightKeepMuscle, GoalMaintain, GoalGainWeight, GoalBuildMuscle:
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, s)
}

// UserProfile holds the biometrics needed for an intake target. Nil fields
// are unknown.
type UserProfile struct {
	WeightKg      *decimal.Decimal `json:"weightKg,omitempty"`
	HeightCm      *decimal.Decimal `json:"heightCm,omitempty"`
	Age           *int             `json:"age,omitempty"`
	Gender        *Gender          `json:"gender,omitempty"`
	ActivityLevel *ActivityLevel   `json:"activityLevel,omitempty"`
	Goal          *Goal            `json:"goal,omitempty"`
}

// MissingFields lists the profile fields that are nil, in a stable order.
func (p UserProfile) MissingFields() []string {
	var missing []string
	if p.WeightKg == nil {
		missing = append(missing, "weight")
	}
	if p.HeightCm == nil {
		missing = append(missing, "height")
	}
	if p.Age == nil {
		missing = append(missing, "age")
	}
	if p.Gender == nil {
		missing = append(missing, "gender")
	}
	if p.ActivityLevel == nil {
		missing = append(missing, "activityLevel")
	}
	if p.Goal == nil {
		missing = append(missing, "goal")
	}
	return missing
}

// User is an account with its biometric profile.
type User struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Profile   UserProfile `json:"profile"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
