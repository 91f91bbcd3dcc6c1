package postgres

import (
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type userModel struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Email         string           `gorm:"size:320"`
	WeightKg      *decimal.Decimal `gorm:"type:numeric"`
	HeightCm      *decimal.Decimal `gorm:"type:numeric"`
	Age           *int
	Gender        *string `gorm:"size:16"`
	ActivityLevel *string `gorm:"size:32"`
	Goal          *string `gorm:"size:32"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (userModel) TableName() string { return "users" }

type foodItemModel struct {
	ID                 uuid.UUID                                 `gorm:"type:uuid;primaryKey"`
	FdcID              *int                                      `gorm:"uniqueIndex"`
	Name               string                                    `gorm:"not null"`
	Nutrients          datatypes.JSONType[[]domain.NutrientFact] `gorm:"type:jsonb;not null"`
	GramWeight         decimal.Decimal                           `gorm:"type:numeric;not null"`
	PortionDescription string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (foodItemModel) TableName() string { return "food_items" }

type mealModel struct {
	ID            uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Name          string                `gorm:"not null"`
	Ingredients   []mealIngredientModel `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE"`
	TotalCalories decimal.Decimal       `gorm:"type:numeric;not null"`
	TotalProtein  decimal.Decimal       `gorm:"type:numeric;not null"`
	TotalCarbs    decimal.Decimal       `gorm:"type:numeric;not null"`
	TotalFat      decimal.Decimal       `gorm:"type:numeric;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (mealModel) TableName() string { return "meals" }

type mealIngredientModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MealID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position      int             `gorm:"not null"`
	FoodItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Food          *foodItemModel  `gorm:"foreignKey:FoodItemID;constraint:OnDelete:RESTRICT"`
	QuantityGrams decimal.Decimal `gorm:"type:numeric;not null"`
}

func (mealIngredientModel) TableName() string { return "meal_ingredients" }

type dietPlanModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name          string              `gorm:"not null"`
	Days          []dietDayModel      `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	TotalCalories decimal.Decimal     `gorm:"type:numeric;not null"`
	TotalProtein  decimal.Decimal     `gorm:"type:numeric;not null"`
	TotalCarbs    decimal.Decimal     `gorm:"type:numeric;not null"`
	TotalFat      decimal.Decimal     `gorm:"type:numeric;not null"`
	AvgCalories   decimal.NullDecimal `gorm:"type:numeric"`
	AvgProtein    decimal.NullDecimal `gorm:"type:numeric"`
	AvgCarbs      decimal.NullDecimal `gorm:"type:numeric"`
	AvgFat        decimal.NullDecimal `gorm:"type:numeric"`
	SaveCount     int                 `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (dietPlanModel) TableName() string { return "diet_plans" }

type dietDayModel struct {
	ID       uuid.UUID          `gorm:"type:uuid;primaryKey"`
	PlanID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Position int                `gorm:"not null"`
	Date     time.Time          `gorm:"type:date"`
	Label    string             `gorm:"size:64"`
	Meals    []dietDayMealModel `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
}

func (dietDayModel) TableName() string { return "diet_days" }

// dietDayMealModel links a day to a shared meal.
type dietDayMealModel struct {
	DayID    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Position int        `gorm:"primaryKey"`
	MealID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Meal     *mealModel `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE"`
}

func (dietDayMealModel) TableName() string { return "diet_day_meals" }

type intakeModel struct {
	ID        uuid.UUID                                      `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID                                      `gorm:"type:uuid;not null;uniqueIndex:idx_intake_user_date"`
	Date      time.Time                                      `gorm:"type:date;not null;uniqueIndex:idx_intake_user_date"`
	Targets   datatypes.JSONType[map[string]decimal.Decimal] `gorm:"type:jsonb;not null"`
	Version   int                                            `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (intakeModel) TableName() string { return "recommended_daily_intakes" }

type consumedMealModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	IntakeID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_consumed_user_date"`
	MealID              uuid.UUID       `gorm:"type:uuid;not null"`
	MealName            string          `gorm:"not null"`
	TotalCalories       decimal.Decimal `gorm:"type:numeric;not null"`
	TotalProtein        decimal.Decimal `gorm:"type:numeric;not null"`
	TotalCarbs          decimal.Decimal `gorm:"type:numeric;not null"`
	TotalFat            decimal.Decimal `gorm:"type:numeric;not null"`
	TotalSugars         decimal.Decimal `gorm:"type:numeric;not null"`
	TotalSaturatedFat   decimal.Decimal `gorm:"type:numeric;not null"`
	TotalUnsaturatedFat decimal.Decimal `gorm:"type:numeric;not null"`
	ConsumedDate        time.Time       `gorm:"type:date;not null;index:idx_consumed_user_date"`
	ConsumedTime        time.Time       `gorm:"not null"`
}

func (consumedMealModel) TableName() string { return "consumed_meals" }

func newUserModel(u *domain.User) userModel {
	m := userModel{
		ID:        u.ID,
		Email:     u.Email,
		WeightKg:  u.Profile.WeightKg,
		HeightCm:  u.Profile.HeightCm,
		Age:       u.Profile.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if g := u.Profile.Gender; g != nil {
		s := string(*g)
		m.Gender = &s
	}
	if a := u.Profile.ActivityLevel; a != nil {
		s := string(*a)
		m.ActivityLevel = &s
	}
	if g := u.Profile.Goal; g != nil {
		s := string(*g)
		m.Goal = &s
	}
	return m
}

func (m userModel) toDomain() *domain.User {
	u := &domain.User{
		ID:    m.ID,
		Email: m.Email,
		Profile: domain.UserProfile{
			WeightKg: m.WeightKg,
			HeightCm: m.HeightCm,
			Age:      m.Age,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Gender != nil {
		g := domain.Gender(*m.Gender)
		u.Profile.Gender = &g
	}
	if m.ActivityLevel != nil {
		a := domain.ActivityLevel(*m.ActivityLevel)
		u.Profile.ActivityLevel = &a
	}
	if m.Goal != nil {
		g := domain.Goal(*m.Goal)
		u.Profile.Goal = &g
	}
	return u
}

func newFoodItemModel(f *domain.FoodItem) foodItemModel {
	m := foodItemModel{
		ID:                 f.ID,
		Name:               f.Name,
		Nutrients:          datatypes.NewJSONType(f.Nutrients),
		GramWeight:         f.GramWeight,
		PortionDescription: f.PortionDescription,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
	if f.FdcID > 0 {
		id := f.FdcID
		m.FdcID = &id
	}
	return m
}

func (m foodItemModel) toDomain() *domain.FoodItem {
	f := &domain.FoodItem{
		ID:                 m.ID,
		Name:               m.Name,
		Nutrients:          m.Nutrients.Data(),
		GramWeight:         m.GramWeight,
		PortionDescription: m.PortionDescription,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.FdcID != nil {
		f.FdcID = *m.FdcID
	}
	return f
}

func newMealModel(meal *domain.Meal) mealModel {
	m := mealModel{
		ID:            meal.ID,
		Name:          meal.Name,
		TotalCalories: meal.TotalCalories,
		TotalProtein:  meal.TotalProtein,
		TotalCarbs:    meal.TotalCarbs,
		TotalFat:      meal.TotalFat,
		CreatedAt:     meal.CreatedAt,
		UpdatedAt:     meal.UpdatedAt,
	}
	m.Ingredients = make([]mealIngredientModel, len(meal.Ingredients))
	for i, ing := range meal.Ingredients {
		m.Ingredients[i] = mealIngredientModel{
			ID:            ing.ID,
			MealID:        meal.ID,
			Position:      i,
			FoodItemID:    ing.FoodItemID,
			QuantityGrams: ing.QuantityGrams,
		}
	}
	return m
}

func (m mealModel) toDomain() *domain.Meal {
	meal := &domain.Meal{
		ID:            m.ID,
		Name:          m.Name,
		TotalCalories: m.TotalCalories,
		TotalProtein:  m.TotalProtein,
		TotalCarbs:    m.TotalCarbs,
		TotalFat:      m.TotalFat,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	meal.Ingredients = make([]domain.MealIngredient, len(m.Ingredients))
	for i, ing := range m.Ingredients {
		out := domain.MealIngredient{
			ID:            ing.ID,
			FoodItemID:    ing.FoodItemID,
			QuantityGrams: ing.QuantityGrams,
		}
		if ing.Food != nil {
			out.Food = ing.Food.toDomain()
		}
		meal.Ingredients[i] = out
	}
	return meal
}

func newDietPlanModel(p *domain.DietPlan) dietPlanModel {
	m := dietPlanModel{
		ID:            p.ID,
		Name:          p.Name,
		TotalCalories: p.TotalCalories,
		TotalProtein:  p.TotalProtein,
		TotalCarbs:    p.TotalCarbs,
		TotalFat:      p.TotalFat,
		AvgCalories:   p.AvgCalories,
		AvgProtein:    p.AvgProtein,
		AvgCarbs:      p.AvgCarbs,
		AvgFat:        p.AvgFat,
		SaveCount:     p.SaveCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	m.Days = make([]dietDayModel, len(p.Days))
	for i, d := range p.Days {
		day := dietDayModel{
			ID:       d.ID,
			PlanID:   p.ID,
			Position: i,
			Date:     d.Date,
			Label:    d.Label,
		}
		for _, meal := range d.Meals {
			if meal == nil {
				continue
			}
			day.Meals = append(day.Meals, dietDayMealModel{
				DayID:    d.ID,
				Position: len(day.Meals),
				MealID:   meal.ID,
			})
		}
		m.Days[i] = day
	}
	return m
}

func (m dietPlanModel) toDomain() *domain.DietPlan {
	p := &domain.DietPlan{
		ID:            m.ID,
		Name:          m.Name,
		TotalCalories: m.TotalCalories,
		TotalProtein:  m.TotalProtein,
		TotalCarbs:    m.TotalCarbs,
		TotalFat:      m.TotalFat,
		AvgCalories:   m.AvgCalories,
		AvgProtein:    m.AvgProtein,
		AvgCarbs:      m.AvgCarbs,
		AvgFat:        m.AvgFat,
		SaveCount:     m.SaveCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	p.Days = make([]domain.DietDay, len(m.Days))
	for i, d := range m.Days {
		day := domain.DietDay{
			ID:     d.ID,
			PlanID: m.ID,
			Date:   d.Date,
			Label:  d.Label,
			Meals:  make([]*domain.Meal, 0, len(d.Meals)),
		}
		for _, dm := range d.Meals {
			if dm.Meal != nil {
				day.Meals = append(day.Meals, dm.Meal.toDomain())
			}
		}
		p.Days[i] = day
	}
	return p
}

func newIntakeModel(rdi *domain.RecommendedDailyIntake) intakeModel {
	return intakeModel{
		ID:        rdi.ID,
		UserID:    rdi.UserID,
		Date:      domain.DateOf(rdi.Date),
		Targets:   datatypes.NewJSONType(rdi.Targets),
		Version:   rdi.Version,
		CreatedAt: rdi.CreatedAt,
		UpdatedAt: rdi.UpdatedAt,
	}
}

func (m intakeModel) toDomain() *domain.RecommendedDailyIntake {
	targets := m.Targets.Data()
	if targets == nil {
		targets = make(map[string]decimal.Decimal)
	}
	return &domain.RecommendedDailyIntake{
		ID:        m.ID,
		UserID:    m.UserID,
		Date:      domain.DateOf(m.Date),
		Targets:   targets,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func newConsumedMealModel(c *domain.ConsumedMeal) consumedMealModel {
	return consumedMealModel{
		ID:                  c.ID,
		IntakeID:            c.IntakeID,
		UserID:              c.UserID,
		MealID:              c.MealID,
		MealName:            c.MealName,
		TotalCalories:       c.TotalCalories,
		TotalProtein:        c.TotalProtein,
		TotalCarbs:          c.TotalCarbs,
		TotalFat:            c.TotalFat,
		TotalSugars:         c.TotalSugars,
		TotalSaturatedFat:   c.TotalSaturatedFat,
		TotalUnsaturatedFat: c.TotalUnsaturatedFat,
		ConsumedDate:        domain.DateOf(c.ConsumedDate),
		ConsumedTime:        c.ConsumedTime,
	}
}

func (m consumedMealModel) toDomain() domain.ConsumedMeal {
	return domain.ConsumedMeal{
		ID:                  m.ID,
		IntakeID:            m.IntakeID,
		UserID:              m.UserID,
		MealID:              m.MealID,
		MealName:            m.MealName,
		TotalCalories:       m.TotalCalories,
		TotalProtein:        m.TotalProtein,
		TotalCarbs:          m.TotalCarbs,
		TotalFat:            m.TotalFat,
		TotalSugars:         m.TotalSugars,
		TotalSaturatedFat:   m.TotalSaturatedFat,
		TotalUnsaturatedFat: m.TotalUnsaturatedFat,
		ConsumedDate:        domain.DateOf(m.ConsumedDate),
		ConsumedTime:        m.ConsumedTime,
	}
}
