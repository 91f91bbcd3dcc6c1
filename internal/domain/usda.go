package domain

// USDAFood represents a food item from the USDA FoodData Central API
type USDAFood struct {
	FdcID       int            `json:"fdcId"`
	Description string         `json:"description"`
	DataType    string         `json:"dataType"`
	FoodClass   string         `json:"foodClass,omitempty"`
	ServingSize float64        `json:"servingSize,omitempty"`
	ServingUnit string         `json:"servingSizeUnit,omitempty"`
	Household   string         `json:"householdServingFullText,omitempty"`
	Nutrients   []USDANutrient `json:"foodNutrients"`
}

// USDANutrient represents a single nutrient from USDA data. Search results
// use the nutrient* fields, abridged food details use name/amount/number.
type USDANutrient struct {
	NutrientID     int      `json:"nutrientId,omitempty"`
	NutrientName   string   `json:"nutrientName,omitempty"`
	NutrientNumber string   `json:"nutrientNumber,omitempty"`
	UnitName       string   `json:"unitName"`
	Value          *float64 `json:"value,omitempty"`

	Number string   `json:"number,omitempty"`
	Name   string   `json:"name,omitempty"`
	Amount *float64 `json:"amount,omitempty"`
}

// DisplayName returns whichever name field the payload carried.
func (n USDANutrient) DisplayName() string {
	if n.NutrientName != "" {
		return n.NutrientName
	}
	return n.Name
}

// Quantity returns the per-100 g value, or nil when USDA reported none.
func (n USDANutrient) Quantity() *float64 {
	if n.Value != nil {
		return n.Value
	}
	return n.Amount
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}
