package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var consumeDay = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

func completeProfile() domain.UserProfile {
	return newProfile("80", "180", 30, domain.GenderMale, domain.ActivityModerate, domain.GoalMaintain)
}

func TestConsumptionLedger_GetOrCreateIntake(t *testing.T) {
	ctx := context.Background()

	t.Run("creates from profile then returns the same record", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())

		first, err := env.ledger.GetOrCreateIntake(ctx, userID, consumeDay.Add(9*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, consumeDay, first.Date)
		assertDec(t, "2759", first.Targets[domain.NutrientEnergy])

		second, err := env.ledger.GetOrCreateIntake(ctx, userID, consumeDay)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Targets, second.Targets)

		records, err := env.intakes.ListRange(ctx, userID, consumeDay, consumeDay)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("existing record is not recalculated", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())
		env.seedIntake(t, userID, consumeDay, map[string]decimal.Decimal{domain.NutrientEnergy: dec("42")})

		got, err := env.ledger.GetOrCreateIntake(ctx, userID, consumeDay)
		require.NoError(t, err)
		require.Len(t, got.Targets, 1)
		assertDec(t, "42", got.Targets[domain.NutrientEnergy])
	})

	t.Run("missing profile data creates nothing", func(t *testing.T) {
		env := newTestEnv(t)
		p := completeProfile()
		p.HeightCm = nil
		p.Goal = nil
		userID := env.addUser(t, p)

		_, err := env.ledger.GetOrCreateIntake(ctx, userID, consumeDay)
		var missing *domain.MissingProfileDataError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"height", "goal"}, missing.Fields)

		_, err = env.intakes.Find(ctx, userID, consumeDay)
		assert.ErrorIs(t, err, domain.ErrIntakeNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.ledger.GetOrCreateIntake(ctx, uuid.New(), consumeDay)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("concurrent creates yield one record", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())

		var wg sync.WaitGroup
		ids := make([]uuid.UUID, 8)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rdi, err := env.ledger.GetOrCreateIntake(ctx, userID, consumeDay)
				if assert.NoError(t, err) {
					ids[i] = rdi.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids[1:] {
			assert.Equal(t, ids[0], id)
		}
	})
}

func TestConsumptionLedger_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("sequential consumptions accumulate", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())
		env.seedIntake(t, userID, consumeDay, map[string]decimal.Decimal{domain.NutrientEnergy: dec("2000")})

		remaining, err := env.ledger.Consume(ctx, userID, env.energyMeal(t, "500").ID, consumeDay)
		require.NoError(t, err)
		assertDec(t, "1500", remaining[domain.NutrientEnergy])

		remaining, err = env.ledger.Consume(ctx, userID, env.energyMeal(t, "700").ID, consumeDay)
		require.NoError(t, err)
		assertDec(t, "800", remaining[domain.NutrientEnergy])

		stored, err := env.intakes.Find(ctx, userID, consumeDay)
		require.NoError(t, err)
		assertDec(t, "800", stored.Targets[domain.NutrientEnergy])
	})

	t.Run("remaining may go negative", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())
		env.seedIntake(t, userID, consumeDay, map[string]decimal.Decimal{domain.NutrientEnergy: dec("2000")})

		remaining, err := env.ledger.Consume(ctx, userID, env.energyMeal(t, "2500").ID, consumeDay)
		require.NoError(t, err)
		assertDec(t, "-500", remaining[domain.NutrientEnergy])
	})

	t.Run("short fat key is decremented", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())
		env.seedIntake(t, userID, consumeDay, map[string]decimal.Decimal{"Fat": dec("70")})
		food := env.addFood(t, "butter", fact(domain.NutrientFat, "81", "g"))

		remaining, err := env.ledger.Consume(ctx, userID, env.addMeal(t, "butter", food).ID, consumeDay)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assertDec(t, "-11", remaining["Fat"])
	})

	t.Run("only existing keys change", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())
		env.seedIntake(t, userID, consumeDay, map[string]decimal.Decimal{
			domain.NutrientEnergy:  dec("2000"),
			domain.NutrientProtein: dec("120"),
			"Calcium, Ca":          dec("1000"),
		})
		food := env.addFood(t, "lentils",
			fact(domain.NutrientEnergy, "350", "kcal"),
			fact(domain.NutrientProtein, "25", "g"),
			fact("Fiber, total dietary", "11", "g"),
			fact("Iron, Fe", "", "mg"),
		)
		meal := env.addMeal(t, "dal", food)

		remaining, err := env.ledger.Consume(ctx, userID, meal.ID, consumeDay)
		require.NoError(t, err)
		assert.Len(t, remaining, 3)
		assertDec(t, "1650", remaining[domain.NutrientEnergy])
		assertDec(t, "95", remaining[domain.NutrientProtein])
		assertDec(t, "1000", remaining["Calcium, Ca"])
		_, added := remaining["Fiber, total dietary"]
		assert.False(t, added)
	})

	t.Run("names are matched after normalization", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())
		env.seedIntake(t, userID, consumeDay, map[string]decimal.Decimal{
			"total sugars":               dec("50"),
			domain.NutrientCarbohydrates: dec("300"),
			"ENERGY":                     dec("2000"),
		})
		food := env.addFood(t, "juice",
			fact(" Total  Sugars ", "9", "g"),
			fact("Carbohydrate, by difference", "10", "g"),
			fact("energy", "45", "kcal"),
		)
		meal := env.addMeal(t, "breakfast", food)

		remaining, err := env.ledger.Consume(ctx, userID, meal.ID, consumeDay)
		require.NoError(t, err)
		assertDec(t, "41", remaining["total sugars"])
		assertDec(t, "290", remaining[domain.NutrientCarbohydrates])
		assertDec(t, "1955", remaining["ENERGY"])
	})

	t.Run("records a snapshot", func(t *testing.T) {
		env := newTestEnv(t)
		env.ledger.WithClock(fixedClock(2026, 10, 14))
		userID := env.addUser(t, completeProfile())
		env.seedIntake(t, userID, consumeDay, map[string]decimal.Decimal{domain.NutrientEnergy: dec("2000")})
		food := env.addFood(t, "yogurt",
			fact(domain.NutrientEnergy, "100", "kcal"),
			fact(domain.NutrientProtein, "10", "g"),
			fact("Carbohydrate, by difference", "4", "g"),
			fact(domain.NutrientFat, "5", "g"),
			fact("Sugars, total including NLEA", "4", "g"),
			fact(domain.NutrientSaturatedFat, "3", "g"),
			fact(domain.NutrientMonounsaturated, "1.2", "g"),
			fact(domain.NutrientPolyunsaturated, "0.3", "g"),
		)
		meal := env.addMeal(t, "snack", food)

		_, err := env.ledger.Consume(ctx, userID, meal.ID, consumeDay)
		require.NoError(t, err)

		history, err := env.ledger.History(ctx, userID, consumeDay, consumeDay)
		require.NoError(t, err)
		require.Len(t, history, 1)
		got := history[0]
		assert.Equal(t, meal.ID, got.MealID)
		assert.Equal(t, "snack", got.MealName)
		assert.Equal(t, consumeDay, got.ConsumedDate)
		assertDec(t, "100", got.TotalCalories)
		assertDec(t, "10", got.TotalProtein)
		assertDec(t, "4", got.TotalCarbs)
		assertDec(t, "5", got.TotalFat)
		assertDec(t, "4", got.TotalSugars)
		assertDec(t, "3", got.TotalSaturatedFat)
		assertDec(t, "1.5", got.TotalUnsaturatedFat)
	})

	t.Run("lookup failures", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())
		meal := env.energyMeal(t, "100")

		_, err := env.ledger.Consume(ctx, uuid.New(), meal.ID, consumeDay)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = env.ledger.Consume(ctx, userID, uuid.New(), consumeDay)
		assert.ErrorIs(t, err, domain.ErrMealNotFound)

		// consumption never creates the intake record
		_, err = env.ledger.Consume(ctx, userID, meal.ID, consumeDay)
		assert.ErrorIs(t, err, domain.ErrIntakeNotFound)
		_, err = env.intakes.Find(ctx, userID, consumeDay)
		assert.ErrorIs(t, err, domain.ErrIntakeNotFound)
	})

	t.Run("concurrent consumptions are not lost", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.addUser(t, completeProfile())
		env.seedIntake(t, userID, consumeDay, map[string]decimal.Decimal{domain.NutrientEnergy: dec("2000")})
		meal := env.energyMeal(t, "100")

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.ledger.Consume(ctx, userID, meal.ID, consumeDay)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored, err := env.intakes.Find(ctx, userID, consumeDay)
		require.NoError(t, err)
		assertDec(t, "1000", stored.Targets[domain.NutrientEnergy])

		history, err := env.ledger.History(ctx, userID, consumeDay, consumeDay)
		require.NoError(t, err)
		assert.Len(t, history, 10)
	})
}

func TestConsumptionLedger_Cumulative(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	// Wednesday
	env.ledger.WithClock(fixedClock(2026, 10, 14))
	userID := env.addUser(t, completeProfile())

	energy := func(v string) map[string]decimal.Decimal {
		return map[string]decimal.Decimal{domain.NutrientEnergy: dec(v)}
	}
	env.seedIntake(t, userID, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), energy("999")) // previous Sunday
	env.seedIntake(t, userID, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), energy("1500"))
	env.seedIntake(t, userID, time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), energy("1800"))
	env.seedIntake(t, userID, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), energy("-200"))
	env.seedIntake(t, userID, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), energy("5000"))
	// another user in the same week
	env.seedIntake(t, uuid.New(), time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), energy("7"))

	t.Run("week", func(t *testing.T) {
		got, err := env.ledger.Cumulative(ctx, userID, domain.ScopeWeek)
		require.NoError(t, err)
		assertDec(t, "3100", got[domain.NutrientEnergy])
	})

	t.Run("month", func(t *testing.T) {
		got, err := env.ledger.Cumulative(ctx, userID, domain.ScopeMonth)
		require.NoError(t, err)
		assertDec(t, "4099", got[domain.NutrientEnergy])
	})

	t.Run("no records gives empty map", func(t *testing.T) {
		got, err := env.ledger.Cumulative(ctx, uuid.New(), domain.ScopeWeek)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("reflects consumption", func(t *testing.T) {
		meal := env.energyMeal(t, "300")
		_, err := env.ledger.Consume(ctx, userID, meal.ID, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		got, err := env.ledger.Cumulative(ctx, userID, domain.ScopeWeek)
		require.NoError(t, err)
		assertDec(t, "2800", got[domain.NutrientEnergy])
	})
}

func TestConsumptionLedger_History(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ledger.History(context.Background(), uuid.New(), consumeDay, consumeDay.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSubtractBreakdown_DoesNotMutateInput(t *testing.T) {
	targets := map[string]decimal.Decimal{domain.NutrientEnergy: dec("2000")}
	out := subtractBreakdown(targets, domain.Breakdown{"Energy": {Value: dec("150"), Unit: "kcal"}})

	assertDec(t, "1850", out[domain.NutrientEnergy])
	assertDec(t, "2000", targets[domain.NutrientEnergy])
}
