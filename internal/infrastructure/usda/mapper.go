package usda

import (
	"strings"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// USDA nutrient identifiers for energy. Search results carry the id,
// abridged details carry the legacy number.
const (
	NutrientIDEnergy     = 1008
	NutrientNumberEnergy = "208"
)

// MapToFoodItem converts a USDA food into a catalog entry with one fact per
// reported nutrient, per 100 g. Energy is kept in kcal only; the kJ
// duplicate USDA also reports is dropped. The returned item has a fresh ID.
func MapToFoodItem(food *domain.USDAFood) *domain.FoodItem {
	item := &domain.FoodItem{
		ID:                 uuid.New(),
		FdcID:              food.FdcID,
		Name:               strings.TrimSpace(food.Description),
		Nutrients:          MapNutrients(food.Nutrients),
		GramWeight:         decimal.NewFromInt(100),
		PortionDescription: "100 g",
	}

	if isGramUnit(food.ServingUnit) && food.ServingSize > 0 {
		item.GramWeight = decimal.NewFromFloat(food.ServingSize)
		item.PortionDescription = strings.TrimSpace(food.Household)
		if item.PortionDescription == "" {
			item.PortionDescription = item.GramWeight.String() + " g"
		}
	}
	return item
}

// MapNutrients converts USDA nutrients to facts. Names seen twice keep the
// first occurrence; a nutrient without a value becomes a null fact.
func MapNutrients(nutrients []domain.USDANutrient) []domain.NutrientFact {
	facts := make([]domain.NutrientFact, 0, len(nutrients))
	seen := make(map[string]bool, len(nutrients))

	for _, n := range nutrients {
		name := strings.TrimSpace(n.DisplayName())
		if name == "" {
			continue
		}
		unit := normalizeUnit(n.UnitName)
		if isEnergy(n, name) && unit != "kcal" {
			continue
		}

		key := domain.NormalizeNutrientName(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		fact := domain.NutrientFact{Name: name, Unit: unit}
		if q := n.Quantity(); q != nil {
			fact.Value = decimal.NewNullDecimal(decimal.NewFromFloat(*q))
		}
		facts = append(facts, fact)
	}
	return facts
}

func isEnergy(n domain.USDANutrient, name string) bool {
	return n.NutrientID == NutrientIDEnergy ||
		n.Number == NutrientNumberEnergy || n.NutrientNumber == NutrientNumberEnergy ||
		strings.EqualFold(name, domain.NutrientEnergy)
}

// normalizeUnit lowercases USDA unit names ("KCAL", "G", "UG").
func normalizeUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	switch u {
	case "ug":
		return "µg"
	case "iu":
		return "IU"
	}
	return u
}

func isGramUnit(u string) bool {
	switch strings.ToLower(strings.TrimSpace(u)) {
	case "g", "grm", "gram", "grams":
		return true
	}
	return false
}
