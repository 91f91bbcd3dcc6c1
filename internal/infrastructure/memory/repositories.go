package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
)

// UserRepository implements domain.UserRepository.
type UserRepository struct{ s *Store }

func NewUserRepository(s *Store) *UserRepository { return &UserRepository{s: s} }

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Save(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

// FoodRepository implements domain.FoodRepository.
type FoodRepository struct{ s *Store }

func NewFoodRepository(s *Store) *FoodRepository { return &FoodRepository{s: s} }

func (r *FoodRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.FoodItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.foods[id]
	if !ok {
		return nil, domain.ErrFoodNotFound
	}
	return copyFood(f), nil
}

func (r *FoodRepository) GetByFdcID(_ context.Context, fdcID int) (*domain.FoodItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.fdcIndex[fdcID]
	if !ok {
		return nil, domain.ErrFoodNotFound
	}
	return copyFood(r.s.foods[id]), nil
}

func (r *FoodRepository) Save(_ context.Context, food *domain.FoodItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if food.FdcID != 0 {
		if existing, ok := r.s.fdcIndex[food.FdcID]; ok && existing != food.ID {
			return domain.ErrAlreadyExists
		}
		r.s.fdcIndex[food.FdcID] = food.ID
	}
	r.s.foods[food.ID] = *copyFood(*food)
	return nil
}

// MealRepository implements domain.MealRepository.
type MealRepository struct{ s *Store }

func NewMealRepository(s *Store) *MealRepository { return &MealRepository{s: s} }

func (r *MealRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Meal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.loadMeal(id)
	if !ok {
		return nil, domain.ErrMealNotFound
	}
	return m, nil
}

func (r *MealRepository) ListIDsByFood(_ context.Context, foodID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []uuid.UUID
	for id, rec := range r.s.meals {
		for _, ing := range rec.ingredients {
			if ing.FoodItemID == foodID {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r *MealRepository) Save(_ context.Context, meal *domain.Meal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := mealRecord{meal: *meal}
	rec.meal.Ingredients = nil
	rec.ingredients = make([]domain.MealIngredient, len(meal.Ingredients))
	for i, ing := range meal.Ingredients {
		if ing.Food != nil {
			ing.FoodItemID = ing.Food.ID
		}
		ing.Food = nil
		rec.ingredients[i] = ing
	}
	r.s.meals[meal.ID] = rec
	return nil
}

// PlanRepository implements domain.PlanRepository.
type PlanRepository struct{ s *Store }

func NewPlanRepository(s *Store) *PlanRepository { return &PlanRepository{s: s} }

func (r *PlanRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.DietPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}

	plan := rec.plan
	plan.Days = make([]domain.DietDay, len(rec.days))
	for i, d := range rec.days {
		day := d.day
		day.Meals = make([]*domain.Meal, 0, len(d.mealIDs))
		for _, mid := range d.mealIDs {
			if m, ok := r.s.loadMeal(mid); ok {
				day.Meals = append(day.Meals, m)
			}
		}
		plan.Days[i] = day
	}
	return &plan, nil
}

func (r *PlanRepository) ListIDsByMeal(_ context.Context, mealID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []uuid.UUID
	for id, rec := range r.s.plans {
		if planHasMeal(rec, mealID) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func planHasMeal(rec planRecord, mealID uuid.UUID) bool {
	for _, d := range rec.days {
		for _, id := range d.mealIDs {
			if id == mealID {
				return true
			}
		}
	}
	return false
}

func (r *PlanRepository) Save(_ context.Context, plan *domain.DietPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := planRecord{plan: *plan}
	rec.plan.Days = nil
	rec.days = make([]dayRecord, len(plan.Days))
	for i, d := range plan.Days {
		dr := dayRecord{day: d}
		dr.day.Meals = nil
		dr.day.PlanID = plan.ID
		for _, m := range d.Meals {
			if m != nil {
				dr.mealIDs = append(dr.mealIDs, m.ID)
			}
		}
		rec.days[i] = dr
	}
	r.s.plans[plan.ID] = rec
	return nil
}

func (r *PlanRepository) SaveTotals(_ context.Context, plan *domain.DietPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.plans[plan.ID]
	if !ok {
		return domain.ErrPlanNotFound
	}
	rec.plan.TotalCalories = plan.TotalCalories
	rec.plan.TotalProtein = plan.TotalProtein
	rec.plan.TotalCarbs = plan.TotalCarbs
	rec.plan.TotalFat = plan.TotalFat
	rec.plan.AvgCalories = plan.AvgCalories
	rec.plan.AvgProtein = plan.AvgProtein
	rec.plan.AvgCarbs = plan.AvgCarbs
	rec.plan.AvgFat = plan.AvgFat
	rec.plan.UpdatedAt = plan.UpdatedAt
	r.s.plans[plan.ID] = rec
	return nil
}

// IntakeRepository implements domain.IntakeRepository. FindForUpdate relies
// on TxManager for exclusion.
type IntakeRepository struct{ s *Store }

func NewIntakeRepository(s *Store) *IntakeRepository { return &IntakeRepository{s: s} }

func (r *IntakeRepository) Find(_ context.Context, userID uuid.UUID, date time.Time) (*domain.RecommendedDailyIntake, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rdi, ok := r.s.intakes[intakeKey{userID, domain.DateOf(date)}]
	if !ok {
		return nil, domain.ErrIntakeNotFound
	}
	rdi.Targets = copyTargets(rdi.Targets)
	return &rdi, nil
}

func (r *IntakeRepository) FindForUpdate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.RecommendedDailyIntake, error) {
	return r.Find(ctx, userID, date)
}

func (r *IntakeRepository) Create(_ context.Context, rdi *domain.RecommendedDailyIntake) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := intakeKey{rdi.UserID, domain.DateOf(rdi.Date)}
	if _, ok := r.s.intakes[key]; ok {
		return domain.ErrAlreadyExists
	}
	stored := *rdi
	stored.Date = key.date
	stored.Targets = copyTargets(rdi.Targets)
	r.s.intakes[key] = stored
	return nil
}

func (r *IntakeRepository) UpdateTargets(_ context.Context, rdi *domain.RecommendedDailyIntake) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := intakeKey{rdi.UserID, domain.DateOf(rdi.Date)}
	stored, ok := r.s.intakes[key]
	if !ok {
		return domain.ErrIntakeNotFound
	}
	if stored.Version != rdi.Version {
		return domain.ErrConcurrentUpdate
	}
	stored.Targets = copyTargets(rdi.Targets)
	stored.Version++
	stored.UpdatedAt = rdi.UpdatedAt
	r.s.intakes[key] = stored
	rdi.Version = stored.Version
	return nil
}

func (r *IntakeRepository) ListRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]domain.RecommendedDailyIntake, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	from, to = domain.DateOf(from), domain.DateOf(to)
	var out []domain.RecommendedDailyIntake
	for key, rdi := range r.s.intakes {
		if key.userID != userID || key.date.Before(from) || key.date.After(to) {
			continue
		}
		rdi.Targets = copyTargets(rdi.Targets)
		out = append(out, rdi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ConsumedMealRepository implements domain.ConsumedMealRepository.
type ConsumedMealRepository struct{ s *Store }

func NewConsumedMealRepository(s *Store) *ConsumedMealRepository {
	return &ConsumedMealRepository{s: s}
}

func (r *ConsumedMealRepository) Create(_ context.Context, meal *domain.ConsumedMeal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.consumed = append(r.s.consumed, *meal)
	return nil
}

func (r *ConsumedMealRepository) ListByUser(_ context.Context, userID uuid.UUID, from, to time.Time) ([]domain.ConsumedMeal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	from, to = domain.DateOf(from), domain.DateOf(to)
	var out []domain.ConsumedMeal
	for _, m := range r.s.consumed {
		if m.UserID != userID || m.ConsumedDate.Before(from) || m.ConsumedDate.After(to) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ConsumedTime.Before(out[j].ConsumedTime) })
	return out, nil
}
