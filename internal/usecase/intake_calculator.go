package usecase

import (
	"fmt"

	"github.com/dietledger/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Energy per gram of each macro, kcal
var (
	kcalPerGramProtein = decimal.NewFromInt(4)
	kcalPerGramCarbs   = decimal.NewFromInt(4)
	kcalPerGramFat     = decimal.NewFromInt(9)
)

// activityFactors converts BMR into total daily energy expenditure.
var activityFactors = map[domain.ActivityLevel]decimal.Decimal{
	domain.ActivitySedentary:  decimal.RequireFromString("1.2"),
	domain.ActivityLight:      decimal.RequireFromString("1.375"),
	domain.ActivityModerate:   decimal.RequireFromString("1.55"),
	domain.ActivityActive:     decimal.RequireFromString("1.725"),
	domain.ActivityVeryActive: decimal.RequireFromString("1.9"),
}

// energyDirection is the sign applied to the configured deficit/surplus.
type energyDirection int

const (
	energyDeficit energyDirection = -1
	energyHold    energyDirection = 0
	energySurplus energyDirection = 1
)

type goalPolicy struct {
	energy       energyDirection
	proteinPerKg decimal.Decimal
}

// goalPolicies: muscle-focused goals share the energy adjustment of their
// plain counterpart and raise the protein target.
var goalPolicies = map[domain.Goal]goalPolicy{
	domain.GoalLoseWeight:           {energyDeficit, decimal.RequireFromString("1.6")},
	domain.GoalLoseWeightKeepMuscle: {energyDeficit, decimal.RequireFromString("2.2")},
	domain.GoalMaintain:             {energyHold, decimal.RequireFromString("1.2")},
	domain.GoalGainWeight:           {energySurplus, decimal.RequireFromString("1.6")},
	domain.GoalBuildMuscle:          {energySurplus, decimal.RequireFromString("2.2")},
}

// Mifflin-St Jeor coefficients
var (
	bmrWeightFactor = decimal.NewFromInt(10)
	bmrHeightFactor = decimal.RequireFromString("6.25")
	bmrAgeFactor    = decimal.NewFromInt(5)
	bmrMaleConst    = decimal.NewFromInt(5)
	bmrFemaleConst  = decimal.NewFromInt(-161)
)

// IntakeCalculatorConfig holds the tunable part of the intake policy
type IntakeCalculatorConfig struct {
	CalorieDeficit float64
	CalorieSurplus float64
	FatEnergyRatio float64
}

// IntakeCalculator derives daily nutrient targets from a biometric profile.
// It holds no state besides its policy and is safe for concurrent use.
type IntakeCalculator struct {
	deficit        decimal.Decimal
	surplus        decimal.Decimal
	fatEnergyRatio decimal.Decimal
}

// DefaultIntakeCalculatorConfig returns the standard policy: 500 kcal
// deficit and surplus, 25% of energy from fat.
func DefaultIntakeCalculatorConfig() IntakeCalculatorConfig {
	return IntakeCalculatorConfig{
		CalorieDeficit: 500,
		CalorieSurplus: 500,
		FatEnergyRatio: 0.25,
	}
}

// NewIntakeCalculator creates a calculator with the given policy. Values are
// used as given, so a zero deficit or surplus disables that adjustment.
func NewIntakeCalculator(config IntakeCalculatorConfig) *IntakeCalculator {
	return &IntakeCalculator{
		deficit:        decimal.NewFromFloat(config.CalorieDeficit),
		surplus:        decimal.NewFromFloat(config.CalorieSurplus),
		fatEnergyRatio: decimal.NewFromFloat(config.FatEnergyRatio),
	}
}

// Calculate returns the daily targets keyed by nutrient name: Energy (kcal),
// Protein, Total lipid (fat) and Carbohydrates (g), rounded to 2 places.
func (c *IntakeCalculator) Calculate(profile domain.UserProfile) (map[string]decimal.Decimal, error) {
	if missing := profile.MissingFields(); len(missing) > 0 {
		return nil, &domain.MissingProfileDataError{Fields: missing}
	}

	factor, ok := activityFactors[*profile.ActivityLevel]
	if !ok {
		return nil, fmt.Errorf("%w: unknown activity level %q", domain.ErrInvalidProfile, *profile.ActivityLevel)
	}
	policy, ok := goalPolicies[*profile.Goal]
	if !ok {
		return nil, fmt.Errorf("%w: unknown goal %q", domain.ErrInvalidProfile, *profile.Goal)
	}

	bmr, err := basalMetabolicRate(profile)
	if err != nil {
		return nil, err
	}

	energy := bmr.Mul(factor)
	switch policy.energy {
	case energyDeficit:
		energy = energy.Sub(c.deficit)
	case energySurplus:
		energy = energy.Add(c.surplus)
	}

	protein := profile.WeightKg.Mul(policy.proteinPerKg)
	fatEnergy := energy.Mul(c.fatEnergyRatio)
	fat := fatEnergy.Div(kcalPerGramFat)

	carbs := energy.Sub(protein.Mul(kcalPerGramProtein)).Sub(fatEnergy).Div(kcalPerGramCarbs)
	if carbs.IsNegative() {
		carbs = decimal.Zero
	}

	return map[string]decimal.Decimal{
		domain.NutrientEnergy:        energy.Round(2),
		domain.NutrientProtein:       protein.Round(2),
		domain.NutrientFat:           fat.Round(2),
		domain.NutrientCarbohydrates: carbs.Round(2),
	}, nil
}

// basalMetabolicRate applies Mifflin-St Jeor.
func basalMetabolicRate(p domain.UserProfile) (decimal.Decimal, error) {
	var genderConst decimal.Decimal
	switch *p.Gender {
	case domain.GenderMale:
		genderConst = bmrMaleConst
	case domain.GenderFemale:
		genderConst = bmrFemaleConst
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown gender %q", domain.ErrInvalidProfile, *p.Gender)
	}

	return p.WeightKg.Mul(bmrWeightFactor).
		Add(p.HeightCm.Mul(bmrHeightFactor)).
		Sub(decimal.NewFromInt(int64(*p.Age)).Mul(bmrAgeFactor)).
		Add(genderConst), nil
}
