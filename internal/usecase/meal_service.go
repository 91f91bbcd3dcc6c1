package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngredientInput names a catalog food and a quantity in grams.
type IngredientInput struct {
	FoodItemID    uuid.UUID       `json:"foodItemId"`
	QuantityGrams decimal.Decimal `json:"quantityGrams"`
}

// MealNutrients is the full breakdown of a meal next to its cached totals.
type MealNutrients struct {
	MealID    uuid.UUID          `json:"mealId"`
	Name      string             `json:"name"`
	Totals    domain.MacroTotals `json:"totals"`
	Nutrients domain.Breakdown   `json:"nutrients"`
}

// FoodNutrients is one food item's contribution to a meal.
type FoodNutrients struct {
	FoodItemID uuid.UUID        `json:"foodItemId"`
	Name       string           `json:"name"`
	Nutrients  domain.Breakdown `json:"nutrients"`
}

// MealService edits meal ingredient lists and serves meal nutrient views.
// Every edit refreshes the plans containing the meal in the same unit of work.
type MealService struct {
	meals  domain.MealRepository
	foods  domain.FoodRepository
	tx     domain.TxManager
	rollup *PlanRollup
	log    *slog.Logger
}

// NewMealService creates a MealService.
func NewMealService(
	log *slog.Logger,
	meals domain.MealRepository,
	foods domain.FoodRepository,
	tx domain.TxManager,
	rollup *PlanRollup,
) *MealService {
	return &MealService{
		meals:  meals,
		foods:  foods,
		tx:     tx,
		rollup: rollup,
		log:    log.With("service", "meal"),
	}
}

// Create stores a new meal built from inputs.
func (s *MealService) Create(ctx context.Context, name string, inputs []IngredientInput) (*domain.Meal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: meal name is required", domain.ErrInvalidRequest)
	}

	now := time.Now()
	meal := &domain.Meal{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ings, err := s.buildIngredients(ctx, inputs)
		if err != nil {
			return err
		}
		meal.ReplaceIngredients(ings)
		if err := s.meals.Save(ctx, meal); err != nil {
			return fmt.Errorf("save meal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "meal created",
		slog.String("meal_id", meal.ID.String()),
		slog.Int("ingredients", len(meal.Ingredients)),
	)
	return meal, nil
}

// AddIngredient appends one ingredient to the meal.
func (s *MealService) AddIngredient(ctx context.Context, mealID uuid.UUID, in IngredientInput) (*domain.Meal, error) {
	return s.mutate(ctx, mealID, func(ctx context.Context, meal *domain.Meal) error {
		ings, err := s.buildIngredients(ctx, []IngredientInput{in})
		if err != nil {
			return err
		}
		meal.AddIngredient(ings[0])
		return nil
	})
}

// RemoveIngredient drops one ingredient from the meal.
func (s *MealService) RemoveIngredient(ctx context.Context, mealID, ingredientID uuid.UUID) (*domain.Meal, error) {
	return s.mutate(ctx, mealID, func(_ context.Context, meal *domain.Meal) error {
		if !meal.RemoveIngredient(ingredientID) {
			return domain.ErrIngredientNotFound
		}
		return nil
	})
}

// ReplaceIngredients swaps the meal's whole ingredient list.
func (s *MealService) ReplaceIngredients(ctx context.Context, mealID uuid.UUID, inputs []IngredientInput) (*domain.Meal, error) {
	return s.mutate(ctx, mealID, func(ctx context.Context, meal *domain.Meal) error {
		ings, err := s.buildIngredients(ctx, inputs)
		if err != nil {
			return err
		}
		meal.ReplaceIngredients(ings)
		return nil
	})
}

// Nutrients returns the meal's full nutrient breakdown.
func (s *MealService) Nutrients(ctx context.Context, mealID uuid.UUID) (*MealNutrients, error) {
	meal, err := s.meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}
	return &MealNutrients{
		MealID:    meal.ID,
		Name:      meal.Name,
		Totals:    meal.CachedTotals(),
		Nutrients: domain.MealNutrients(meal.Ingredients),
	}, nil
}

// FoodNutrients returns each food item's contribution to the meal, ordered
// by food name.
func (s *MealService) FoodNutrients(ctx context.Context, mealID uuid.UUID) ([]FoodNutrients, error) {
	meal, err := s.meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}

	names := make(map[uuid.UUID]string)
	for _, ing := range meal.Ingredients {
		if ing.Food != nil {
			names[ing.Food.ID] = ing.Food.Name
		}
	}

	per := domain.PerFoodItemNutrients(meal.Ingredients)
	out := make([]FoodNutrients, 0, len(per))
	for id, b := range per {
		out = append(out, FoodNutrients{FoodItemID: id, Name: names[id], Nutrients: b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].FoodItemID.String() < out[j].FoodItemID.String()
	})
	return out, nil
}

// RefreshForFood recomputes the cached totals of every meal using the food
// item, and the plans containing those meals. It returns the meal count.
func (s *MealService) RefreshForFood(ctx context.Context, foodID uuid.UUID) (int, error) {
	var n int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ids, err := s.meals.ListIDsByFood(ctx, foodID)
		if err != nil {
			return fmt.Errorf("list meals for food: %w", err)
		}
		for _, id := range ids {
			_, err := s.mutate(ctx, id, func(_ context.Context, meal *domain.Meal) error {
				meal.Recompute()
				return nil
			})
			if err != nil {
				return err
			}
		}
		n = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// mutate loads the meal, applies fn, persists it and refreshes affected
// plans, all inside one unit of work.
func (s *MealService) mutate(ctx context.Context, mealID uuid.UUID, fn func(ctx context.Context, meal *domain.Meal) error) (*domain.Meal, error) {
	var meal *domain.Meal
	var plans int

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		meal, err = s.meals.GetByID(ctx, mealID)
		if err != nil {
			return fmt.Errorf("get meal: %w", err)
		}
		if err := fn(ctx, meal); err != nil {
			return err
		}
		meal.UpdatedAt = time.Now()
		if err := s.meals.Save(ctx, meal); err != nil {
			return fmt.Errorf("save meal: %w", err)
		}
		plans, err = s.rollup.RefreshForMeal(ctx, meal.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "meal updated",
		slog.String("meal_id", meal.ID.String()),
		slog.Int("ingredients", len(meal.Ingredients)),
		slog.Int("plans_refreshed", plans),
	)
	return meal, nil
}

func (s *MealService) buildIngredients(ctx context.Context, inputs []IngredientInput) ([]domain.MealIngredient, error) {
	ings := make([]domain.MealIngredient, 0, len(inputs))
	for _, in := range inputs {
		food, err := s.foods.GetByID(ctx, in.FoodItemID)
		if err != nil {
			return nil, fmt.Errorf("get food item %s: %w", in.FoodItemID, err)
		}
		ing, err := domain.NewIngredient(food, in.QuantityGrams)
		if err != nil {
			return nil, err
		}
		ings = append(ings, ing)
	}
	return ings, nil
}
