package postgres

import (
	"context"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsert inserts row or overwrites every column when the primary key exists.
func upsert(db *gorm.DB, row interface{}) error {
	return db.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(row).Error
}

// UserRepository implements domain.UserRepository.
type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var m userModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "get user", domain.ErrUserNotFound)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	m := newUserModel(user)
	return mapError(upsert(conn(ctx, r.db), &m), "save user", domain.ErrUserNotFound)
}

// FoodRepository implements domain.FoodRepository.
type FoodRepository struct{ db *gorm.DB }

func NewFoodRepository(db *gorm.DB) *FoodRepository { return &FoodRepository{db: db} }

func (r *FoodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FoodItem, error) {
	var m foodItemModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "get food item", domain.ErrFoodNotFound)
	}
	return m.toDomain(), nil
}

func (r *FoodRepository) GetByFdcID(ctx context.Context, fdcID int) (*domain.FoodItem, error) {
	var m foodItemModel
	if err := conn(ctx, r.db).First(&m, "fdc_id = ?", fdcID).Error; err != nil {
		return nil, mapError(err, "get food item by fdc id", domain.ErrFoodNotFound)
	}
	return m.toDomain(), nil
}

// Save returns ErrAlreadyExists when another item holds the same FDC ID.
func (r *FoodRepository) Save(ctx context.Context, food *domain.FoodItem) error {
	m := newFoodItemModel(food)
	return mapError(upsert(conn(ctx, r.db), &m), "save food item", domain.ErrFoodNotFound)
}

// MealRepository implements domain.MealRepository.
type MealRepository struct{ db *gorm.DB }

func NewMealRepository(db *gorm.DB) *MealRepository { return &MealRepository{db: db} }

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position") }

func (r *MealRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meal, error) {
	var m mealModel
	err := conn(ctx, r.db).
		Preload("Ingredients", byPosition).
		Preload("Ingredients.Food").
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err, "get meal", domain.ErrMealNotFound)
	}
	return m.toDomain(), nil
}

func (r *MealRepository) ListIDsByFood(ctx context.Context, foodID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db).
		Model(&mealIngredientModel{}).
		Where("food_item_id = ?", foodID).
		Distinct().
		Order("meal_id").
		Pluck("meal_id", &ids).Error
	if err != nil {
		return nil, mapError(err, "list meals by food", domain.ErrMealNotFound)
	}
	return ids, nil
}

// Save rewrites the meal row and its whole ingredient list.
func (r *MealRepository) Save(ctx context.Context, meal *domain.Meal) error {
	m := newMealModel(meal)
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, &m); err != nil {
			return err
		}
		if err := tx.Where("meal_id = ?", m.ID).Delete(&mealIngredientModel{}).Error; err != nil {
			return err
		}
		if len(m.Ingredients) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&m.Ingredients).Error
	})
	return mapError(err, "save meal", domain.ErrFoodNotFound)
}

// PlanRepository implements domain.PlanRepository.
type PlanRepository struct{ db *gorm.DB }

func NewPlanRepository(db *gorm.DB) *PlanRepository { return &PlanRepository{db: db} }

func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DietPlan, error) {
	var m dietPlanModel
	err := conn(ctx, r.db).
		Preload("Days", byPosition).
		Preload("Days.Meals", byPosition).
		Preload("Days.Meals.Meal").
		Preload("Days.Meals.Meal.Ingredients", byPosition).
		Preload("Days.Meals.Meal.Ingredients.Food").
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err, "get diet plan", domain.ErrPlanNotFound)
	}
	return m.toDomain(), nil
}

func (r *PlanRepository) ListIDsByMeal(ctx context.Context, mealID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db).
		Table("diet_day_meals AS dm").
		Joins("JOIN diet_days AS d ON d.id = dm.day_id").
		Where("dm.meal_id = ?", mealID).
		Distinct().
		Order("d.plan_id").
		Pluck("d.plan_id", &ids).Error
	if err != nil {
		return nil, mapError(err, "list plans by meal", domain.ErrPlanNotFound)
	}
	return ids, nil
}

// Save rewrites the plan row, its days and their meal links. Meals must
// already exist.
func (r *PlanRepository) Save(ctx context.Context, plan *domain.DietPlan) error {
	m := newDietPlanModel(plan)
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, &m); err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", m.ID).Delete(&dietDayModel{}).Error; err != nil {
			return err
		}
		for i := range m.Days {
			day := &m.Days[i]
			if err := tx.Omit(clause.Associations).Create(day).Error; err != nil {
				return err
			}
			if len(day.Meals) == 0 {
				continue
			}
			if err := tx.Omit(clause.Associations).Create(&day.Meals).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return mapError(err, "save diet plan", domain.ErrMealNotFound)
}

func (r *PlanRepository) SaveTotals(ctx context.Context, plan *domain.DietPlan) error {
	res := conn(ctx, r.db).Model(&dietPlanModel{}).Where("id = ?", plan.ID).Updates(map[string]interface{}{
		"total_calories": plan.TotalCalories,
		"total_protein":  plan.TotalProtein,
		"total_carbs":    plan.TotalCarbs,
		"total_fat":      plan.TotalFat,
		"avg_calories":   plan.AvgCalories,
		"avg_protein":    plan.AvgProtein,
		"avg_carbs":      plan.AvgCarbs,
		"avg_fat":        plan.AvgFat,
		"updated_at":     plan.UpdatedAt,
	})
	if res.Error != nil {
		return mapError(res.Error, "save plan totals", domain.ErrPlanNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

// IntakeRepository implements domain.IntakeRepository.
type IntakeRepository struct{ db *gorm.DB }

func NewIntakeRepository(db *gorm.DB) *IntakeRepository { return &IntakeRepository{db: db} }

func (r *IntakeRepository) Find(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.RecommendedDailyIntake, error) {
	return r.find(conn(ctx, r.db), userID, date)
}

// FindForUpdate locks the row with SELECT ... FOR UPDATE; call it inside
// TxManager.RunInTx.
func (r *IntakeRepository) FindForUpdate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.RecommendedDailyIntake, error) {
	return r.find(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), userID, date)
}

func (r *IntakeRepository) find(db *gorm.DB, userID uuid.UUID, date time.Time) (*domain.RecommendedDailyIntake, error) {
	var m intakeModel
	err := db.Where("user_id = ? AND date = ?", userID, domain.DateOf(date)).First(&m).Error
	if err != nil {
		return nil, mapError(err, "find intake", domain.ErrIntakeNotFound)
	}
	return m.toDomain(), nil
}

func (r *IntakeRepository) Create(ctx context.Context, rdi *domain.RecommendedDailyIntake) error {
	m := newIntakeModel(rdi)
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		return mapError(err, "create intake", domain.ErrUserNotFound)
	}
	return nil
}

func (r *IntakeRepository) UpdateTargets(ctx context.Context, rdi *domain.RecommendedDailyIntake) error {
	m := newIntakeModel(rdi)
	res := conn(ctx, r.db).Model(&intakeModel{}).
		Where("id = ? AND version = ?", rdi.ID, rdi.Version).
		Updates(map[string]interface{}{
			"targets":    m.Targets,
			"version":    gorm.Expr("version + 1"),
			"updated_at": rdi.UpdatedAt,
		})
	if res.Error != nil {
		return mapError(res.Error, "update intake", domain.ErrIntakeNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrentUpdate
	}
	rdi.Version++
	return nil
}

func (r *IntakeRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.RecommendedDailyIntake, error) {
	var rows []intakeModel
	err := conn(ctx, r.db).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, domain.DateOf(from), domain.DateOf(to)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, mapError(err, "list intakes", domain.ErrIntakeNotFound)
	}
	out := make([]domain.RecommendedDailyIntake, len(rows))
	for i, m := range rows {
		out[i] = *m.toDomain()
	}
	return out, nil
}

// ConsumedMealRepository implements domain.ConsumedMealRepository.
type ConsumedMealRepository struct{ db *gorm.DB }

func NewConsumedMealRepository(db *gorm.DB) *ConsumedMealRepository {
	return &ConsumedMealRepository{db: db}
}

func (r *ConsumedMealRepository) Create(ctx context.Context, meal *domain.ConsumedMeal) error {
	m := newConsumedMealModel(meal)
	return mapError(conn(ctx, r.db).Create(&m).Error, "record consumed meal", domain.ErrIntakeNotFound)
}

func (r *ConsumedMealRepository) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.ConsumedMeal, error) {
	var rows []consumedMealModel
	err := conn(ctx, r.db).
		Where("user_id = ? AND consumed_date BETWEEN ? AND ?", userID, domain.DateOf(from), domain.DateOf(to)).
		Order("consumed_time, id").
		Find(&rows).Error
	if err != nil {
		return nil, mapError(err, "list consumed meals", domain.ErrIntakeNotFound)
	}
	out := make([]domain.ConsumedMeal, len(rows))
	for i, m := range rows {
		out[i] = m.toDomain()
	}
	return out, nil
}
