package usecase

import (
	"context"
	"testing"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) addPlan(t *testing.T, days ...[]*domain.Meal) *domain.DietPlan {
	t.Helper()
	plan := &domain.DietPlan{ID: uuid.New(), Name: "plan"}
	for i, meals := range days {
		plan.Days = append(plan.Days, domain.DietDay{
			ID:    uuid.New(),
			Label: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}[i%7],
			Meals: meals,
		})
	}
	require.NoError(t, e.plans.Save(context.Background(), plan))
	return plan
}

func TestPlanRollup_Refresh(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	breakfast := env.energyMeal(t, "600")
	lunch := env.energyMeal(t, "1400")
	dinner := env.energyMeal(t, "1600")
	plan := env.addPlan(t,
		[]*domain.Meal{breakfast, lunch},
		[]*domain.Meal{breakfast, dinner},
	)

	got, err := env.rollup.Refresh(ctx, plan.ID)
	require.NoError(t, err)
	assertDec(t, "4200", got.TotalCalories)
	require.True(t, got.AvgCalories.Valid)
	assertDec(t, "2100", got.AvgCalories.Decimal)

	stored, err := env.plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assertDec(t, "4200", stored.TotalCalories)
	assertDec(t, "2100", stored.AvgCalories.Decimal)

	_, err = env.rollup.Refresh(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestPlanRollup_EmptyPlan(t *testing.T) {
	env := newTestEnv(t)
	plan := env.addPlan(t)

	got, err := env.rollup.Refresh(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalCalories.IsZero())
	assert.False(t, got.AvgCalories.Valid)
	assert.False(t, got.AvgFat.Valid)
}

func TestPlanRollup_RefreshForMeal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	shared := env.energyMeal(t, "500")
	other := env.energyMeal(t, "900")
	withShared := env.addPlan(t, []*domain.Meal{shared})
	withoutShared := env.addPlan(t, []*domain.Meal{other})

	n, err := env.rollup.RefreshForMeal(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := env.plans.GetByID(ctx, withShared.ID)
	require.NoError(t, err)
	assertDec(t, "500", got.TotalCalories)

	untouched, err := env.plans.GetByID(ctx, withoutShared.ID)
	require.NoError(t, err)
	assert.True(t, untouched.TotalCalories.IsZero())
}

func TestPlanRollup_Summary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	food := env.addFood(t, "eggs",
		fact(domain.NutrientEnergy, "155", "kcal"),
		fact(domain.NutrientProtein, "13", "g"),
	)
	meal := env.addMeal(t, "omelette", food)
	plan := env.addPlan(t, []*domain.Meal{meal, meal}, nil)
	_, err := env.rollup.Refresh(ctx, plan.ID)
	require.NoError(t, err)

	summary, err := env.rollup.Summary(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, summary.Days, 2)

	assertDec(t, "310", summary.Totals.Calories)
	assertDec(t, "155", summary.Averages.Calories.Decimal)
	assertDec(t, "310", summary.Days[0].Totals.Calories)
	assertDec(t, "26", summary.Days[0].Nutrients.Value(domain.NutrientProtein))
	assert.True(t, summary.Days[1].Totals.Calories.IsZero())
	assert.Empty(t, summary.Days[1].Nutrients)
}

func TestPlanRollup_SavePlan(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	meal := env.energyMeal(t, "2000")
	planID := uuid.New()

	t.Run("new plan is stored with cached totals", func(t *testing.T) {
		saved, err := env.rollup.SavePlan(ctx, planID, PlanInput{
			Name: " Cut ",
			Days: []PlanDayInput{{Label: "Mon", MealIDs: []uuid.UUID{meal.ID}}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Cut", saved.Name)

		stored, err := env.plans.GetByID(ctx, planID)
		require.NoError(t, err)
		assertDec(t, "2000", stored.TotalCalories)
		require.True(t, stored.AvgCalories.Valid)
		assertDec(t, "2000", stored.AvgCalories.Decimal)
	})

	t.Run("replacing days recomputes and keeps plan metadata", func(t *testing.T) {
		before, err := env.plans.GetByID(ctx, planID)
		require.NoError(t, err)

		_, err = env.rollup.SavePlan(ctx, planID, PlanInput{
			Name: "Cut",
			Days: []PlanDayInput{
				{Label: "Mon", MealIDs: []uuid.UUID{meal.ID, meal.ID}},
				{Label: "Tue"},
			},
		})
		require.NoError(t, err)

		stored, err := env.plans.GetByID(ctx, planID)
		require.NoError(t, err)
		require.Len(t, stored.Days, 2)
		assertDec(t, "4000", stored.TotalCalories)
		assertDec(t, "2000", stored.AvgCalories.Decimal)
		assert.True(t, before.CreatedAt.Equal(stored.CreatedAt))
	})

	t.Run("empty plan has no averages", func(t *testing.T) {
		id := uuid.New()
		_, err := env.rollup.SavePlan(ctx, id, PlanInput{Name: "Empty"})
		require.NoError(t, err)
		stored, err := env.plans.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, stored.TotalCalories.IsZero())
		assert.False(t, stored.AvgCalories.Valid)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := env.rollup.SavePlan(ctx, uuid.New(), PlanInput{Name: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		id := uuid.New()
		_, err = env.rollup.SavePlan(ctx, id, PlanInput{
			Name: "Ghost",
			Days: []PlanDayInput{{MealIDs: []uuid.UUID{uuid.New()}}},
		})
		assert.ErrorIs(t, err, domain.ErrMealNotFound)
		_, err = env.plans.GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrPlanNotFound)
	})
}
