package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FoodItem is a catalog entry whose nutrient facts are expressed per 100 g.
// Food items are shared by reference between meal ingredients.
type FoodItem struct {
	ID                 uuid.UUID       `json:"id"`
	FdcID              int             `json:"fdcId,omitempty"`
	Name               string          `json:"name"`
	Nutrients          []NutrientFact  `json:"nutrients"`
	GramWeight         decimal.Decimal `json:"gramWeight"`
	PortionDescription string          `json:"portionDescription,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}
