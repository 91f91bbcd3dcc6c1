package usecase

import (
	"context"
	"testing"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealService_Create(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	rice := env.addFood(t, "rice", fact(domain.NutrientEnergy, "130", "kcal"))

	meal, err := env.mealSvc.Create(ctx, " bowl ", []IngredientInput{{FoodItemID: rice.ID, QuantityGrams: dec("250")}})
	require.NoError(t, err)
	assert.Equal(t, "bowl", meal.Name)
	assertDec(t, "325", meal.TotalCalories)

	_, err = env.mealSvc.Create(ctx, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = env.mealSvc.Create(ctx, "ghost", []IngredientInput{{FoodItemID: uuid.New(), QuantityGrams: dec("1")}})
	assert.ErrorIs(t, err, domain.ErrFoodNotFound)
}

func TestMealService_Mutations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	oats := env.addFood(t, "oats",
		fact(domain.NutrientEnergy, "389", "kcal"),
		fact(domain.NutrientProtein, "16.9", "g"),
	)
	milk := env.addFood(t, "milk",
		fact(domain.NutrientEnergy, "61", "kcal"),
		fact(domain.NutrientProtein, "3.2", "g"),
	)
	meal := env.addMeal(t, "porridge")
	plan := env.addPlan(t, []*domain.Meal{meal}, []*domain.Meal{meal})

	t.Run("add refreshes meal and plans", func(t *testing.T) {
		got, err := env.mealSvc.AddIngredient(ctx, meal.ID, IngredientInput{FoodItemID: oats.ID, QuantityGrams: dec("50")})
		require.NoError(t, err)
		assertDec(t, "194.5", got.TotalCalories)

		stored, err := env.meals.GetByID(ctx, meal.ID)
		require.NoError(t, err)
		assertDec(t, "194.5", stored.TotalCalories)

		p, err := env.plans.GetByID(ctx, plan.ID)
		require.NoError(t, err)
		assertDec(t, "389", p.TotalCalories)
		assertDec(t, "194.5", p.AvgCalories.Decimal)
	})

	t.Run("replace swaps the list", func(t *testing.T) {
		got, err := env.mealSvc.ReplaceIngredients(ctx, meal.ID, []IngredientInput{
			{FoodItemID: oats.ID, QuantityGrams: dec("100")},
			{FoodItemID: milk.ID, QuantityGrams: dec("200")},
		})
		require.NoError(t, err)
		require.Len(t, got.Ingredients, 2)
		assertDec(t, "511", got.TotalCalories)
		assertDec(t, "23.3", got.TotalProtein)

		p, err := env.plans.GetByID(ctx, plan.ID)
		require.NoError(t, err)
		assertDec(t, "1022", p.TotalCalories)
	})

	t.Run("remove drops one ingredient", func(t *testing.T) {
		current, err := env.meals.GetByID(ctx, meal.ID)
		require.NoError(t, err)
		milkIngredient := current.Ingredients[1].ID

		got, err := env.mealSvc.RemoveIngredient(ctx, meal.ID, milkIngredient)
		require.NoError(t, err)
		assertDec(t, "389", got.TotalCalories)

		_, err = env.mealSvc.RemoveIngredient(ctx, meal.ID, milkIngredient)
		assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
	})

	t.Run("invalid quantity leaves the meal untouched", func(t *testing.T) {
		_, err := env.mealSvc.AddIngredient(ctx, meal.ID, IngredientInput{FoodItemID: milk.ID, QuantityGrams: dec("-1")})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		stored, err := env.meals.GetByID(ctx, meal.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Ingredients, 1)
	})

	t.Run("unknown meal", func(t *testing.T) {
		_, err := env.mealSvc.AddIngredient(ctx, uuid.New(), IngredientInput{FoodItemID: oats.ID, QuantityGrams: dec("1")})
		assert.ErrorIs(t, err, domain.ErrMealNotFound)
	})
}

func TestMealService_Nutrients(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	banana := env.addFood(t, "banana",
		fact(domain.NutrientEnergy, "89", "kcal"),
		fact("Potassium, K", "358", "mg"),
	)
	apple := env.addFood(t, "apple",
		fact(domain.NutrientEnergy, "52", "kcal"),
		fact("Potassium, K", "107", "mg"),
		fact("Vitamin C", "", "mg"),
	)
	meal := env.addMeal(t, "fruit", banana, apple, banana)

	got, err := env.mealSvc.Nutrients(ctx, meal.ID)
	require.NoError(t, err)
	assertDec(t, "230", got.Totals.Calories)
	assertDec(t, "823", got.Nutrients.Value("Potassium, K"))
	assert.Equal(t, "mg", got.Nutrients["Potassium, K"].Unit)
	_, hasVitaminC := got.Nutrients["Vitamin C"]
	assert.False(t, hasVitaminC)

	perFood, err := env.mealSvc.FoodNutrients(ctx, meal.ID)
	require.NoError(t, err)
	require.Len(t, perFood, 2)
	assert.Equal(t, "apple", perFood[0].Name)
	assert.Equal(t, "banana", perFood[1].Name)
	assertDec(t, "178", perFood[1].Nutrients.Value(domain.NutrientEnergy))

	_, err = env.mealSvc.Nutrients(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrMealNotFound)
}

func TestMealService_RefreshForFood(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	rice := env.addFood(t, "rice", fact(domain.NutrientEnergy, "130", "kcal"))
	other := env.energyMeal(t, "500")
	meal := env.addMeal(t, "rice bowl", rice)
	plan := env.addPlan(t, []*domain.Meal{meal, other})
	_, err := env.rollup.Refresh(ctx, plan.ID)
	require.NoError(t, err)

	rice.Nutrients[0].Value = decimal.NewNullDecimal(dec("150"))
	require.NoError(t, env.foods.Save(ctx, rice))

	n, err := env.mealSvc.RefreshForFood(ctx, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := env.meals.GetByID(ctx, meal.ID)
	require.NoError(t, err)
	assertDec(t, "150", got.TotalCalories)
	stored, err := env.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assertDec(t, "650", stored.TotalCalories)

	n, err = env.mealSvc.RefreshForFood(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, n)
}
