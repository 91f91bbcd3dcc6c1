package domain

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Canonical nutrient names used for the cached macro totals and for the
// keys of a freshly calculated intake record.
const (
	NutrientEnergy        = "Energy"
	NutrientProtein       = "Protein"
	NutrientCarbohydrates = "Carbohydrates"
	NutrientFat           = "Total lipid (fat)"

	// Names recorded on the consumption snapshot in addition to the macros.
	NutrientSugars          = "Total Sugars"
	NutrientSaturatedFat    = "Fatty acids, total saturated"
	NutrientMonounsaturated = "Fatty acids, total monounsaturated"
	NutrientPolyunsaturated = "Fatty acids, total polyunsaturated"
)

// USDA FoodData Central reports carbohydrates and sugars under these names.
const (
	usdaCarbohydrates = "Carbohydrate, by difference"
	usdaSugars        = "Sugars, total including NLEA"
)

// shortFatName is the plain name intake maps from other sources use for
// the fat target.
const shortFatName = "Fat"

var hundred = decimal.NewFromInt(100)

// NutrientFact is one nutrient of a food item, expressed per 100 g.
// A null Value means the source did not report the nutrient.
type NutrientFact struct {
	Name  string              `json:"name"`
	Value decimal.NullDecimal `json:"value"`
	Unit  string              `json:"unit"`
}

// Scaled returns the contribution of the fact for the given quantity in grams.
func (f NutrientFact) Scaled(quantityGrams decimal.Decimal) decimal.Decimal {
	if !f.Value.Valid {
		return decimal.Zero
	}
	return f.Value.Decimal.Mul(quantityGrams).Div(hundred)
}

// Amount is a nutrient quantity with its unit.
type Amount struct {
	Value decimal.Decimal `json:"value"`
	Unit  string          `json:"unit"`
}

// Breakdown maps a nutrient display name to its amount.
type Breakdown map[string]Amount

// Lookup finds a nutrient by normalized name.
func (b Breakdown) Lookup(name string) (Amount, bool) {
	if a, ok := b[name]; ok {
		return a, true
	}
	key := NutrientNameNormalizer(name)
	for n, a := range b {
		if NutrientNameNormalizer(n) == key {
			return a, true
		}
	}
	return Amount{}, false
}

// Value returns the amount for name, or zero when it is absent.
func (b Breakdown) Value(name string) decimal.Decimal {
	a, _ := b.Lookup(name)
	return a.Value
}

// MacroTotals holds the four macro figures cached on meals and plans.
type MacroTotals struct {
	Calories decimal.Decimal `json:"calories"`
	Protein  decimal.Decimal `json:"protein"`
	Carbs    decimal.Decimal `json:"carbs"`
	Fat      decimal.Decimal `json:"fat"`
}

// Add returns the element-wise sum of t and o.
func (t MacroTotals) Add(o MacroTotals) MacroTotals {
	return MacroTotals{
		Calories: t.Calories.Add(o.Calories),
		Protein:  t.Protein.Add(o.Protein),
		Carbs:    t.Carbs.Add(o.Carbs),
		Fat:      t.Fat.Add(o.Fat),
	}
}

// MacroAverages are per-day averages; every field is invalid when there
// were no days to average over.
type MacroAverages struct {
	Calories decimal.NullDecimal `json:"calories"`
	Protein  decimal.NullDecimal `json:"protein"`
	Carbs    decimal.NullDecimal `json:"carbs"`
	Fat      decimal.NullDecimal `json:"fat"`
}

// NutrientNameNormalizer is applied wherever nutrient names from food data
// are compared with intake record keys.
var NutrientNameNormalizer = NormalizeNutrientName

// NormalizeNutrientName trims, lowercases and replaces each whitespace run
// with a single underscore: "  Total  Sugars " -> "total_sugars".
func NormalizeNutrientName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(name))
	prevSpace := false
	for _, r := range name {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteByte('_')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// NutrientKey is the normalized matching key for name. USDA aliases of the
// canonical macro names, and "Fat", share the canonical key. Cached macro
// totals still match only the exact canonical names.
func NutrientKey(name string) string {
	trimmed := strings.TrimSpace(name)
	switch {
	case classifyMacro(trimmed) == macroCarbs:
		return NutrientNameNormalizer(NutrientCarbohydrates)
	case strings.EqualFold(trimmed, shortFatName):
		return NutrientNameNormalizer(NutrientFat)
	case strings.EqualFold(trimmed, usdaSugars):
		return NutrientNameNormalizer(NutrientSugars)
	}
	return NutrientNameNormalizer(name)
}

// macroField identifies which cached total a fact name feeds, using
// case-insensitive exact matching.
type macroField int

const (
	macroNone macroField = iota
	macroCalories
	macroProtein
	macroCarbs
	macroFat
)

func classifyMacro(name string) macroField {
	switch {
	case strings.EqualFold(name, NutrientEnergy):
		return macroCalories
	case strings.EqualFold(name, NutrientProtein):
		return macroProtein
	case strings.EqualFold(name, NutrientCarbohydrates), strings.EqualFold(name, usdaCarbohydrates):
		return macroCarbs
	case strings.EqualFold(name, NutrientFat):
		return macroFat
	default:
		return macroNone
	}
}
