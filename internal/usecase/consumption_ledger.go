package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumptionLedger owns the per-(user, date) intake records: it creates them
// lazily from the user's profile and decrements them as meals are consumed.
type ConsumptionLedger struct {
	users      domain.UserRepository
	meals      domain.MealRepository
	intakes    domain.IntakeRepository
	consumed   domain.ConsumedMealRepository
	tx         domain.TxManager
	calculator *IntakeCalculator
	now        func() time.Time
	log        *slog.Logger
}

// NewConsumptionLedger creates a ledger using the wall clock.
func NewConsumptionLedger(
	log *slog.Logger,
	users domain.UserRepository,
	meals domain.MealRepository,
	intakes domain.IntakeRepository,
	consumed domain.ConsumedMealRepository,
	tx domain.TxManager,
	calculator *IntakeCalculator,
) *ConsumptionLedger {
	return &ConsumptionLedger{
		users:      users,
		meals:      meals,
		intakes:    intakes,
		consumed:   consumed,
		tx:         tx,
		calculator: calculator,
		now:        time.Now,
		log:        log.With("service", "consumption_ledger"),
	}
}

// WithClock replaces the clock that decides "today" for cumulative views
// and stamps consumption times.
func (l *ConsumptionLedger) WithClock(now func() time.Time) *ConsumptionLedger {
	l.now = now
	return l
}

// Today is the ledger clock's current calendar date.
func (l *ConsumptionLedger) Today() time.Time {
	return domain.DateOf(l.now())
}

// GetOrCreateIntake returns the record for (userID, date), creating it from
// the user's profile on first use. An existing record is returned unchanged.
func (l *ConsumptionLedger) GetOrCreateIntake(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.RecommendedDailyIntake, error) {
	date = domain.DateOf(date)

	existing, err := l.intakes.Find(ctx, userID, date)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find intake: %w", err)
	}

	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	targets, err := l.calculator.Calculate(user.Profile)
	if err != nil {
		return nil, err
	}

	now := l.now()
	rdi := &domain.RecommendedDailyIntake{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Targets:   targets,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := l.intakes.Create(ctx, rdi); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// lost the race to a concurrent create; the winner's record stands
			l.log.DebugContext(ctx, "intake created concurrently, re-reading",
				slog.String("user_id", userID.String()),
				slog.String("date", date.Format(time.DateOnly)),
			)
			return l.intakes.Find(ctx, userID, date)
		}
		return nil, fmt.Errorf("create intake: %w", err)
	}

	l.log.InfoContext(ctx, "intake created",
		slog.String("user_id", userID.String()),
		slog.String("date", date.Format(time.DateOnly)),
	)
	return rdi, nil
}

// Consume subtracts the meal's nutrients from the user's intake record for
// date and appends a ConsumedMeal snapshot. Only nutrients already present
// in the record are touched; results may go negative. The record must exist.
func (l *ConsumptionLedger) Consume(ctx context.Context, userID, mealID uuid.UUID, date time.Time) (map[string]decimal.Decimal, error) {
	date = domain.DateOf(date)
	var remaining map[string]decimal.Decimal

	err := l.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := l.users.GetByID(ctx, userID); err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		meal, err := l.meals.GetByID(ctx, mealID)
		if err != nil {
			return fmt.Errorf("get meal: %w", err)
		}

		rdi, err := l.intakes.FindForUpdate(ctx, userID, date)
		if err != nil {
			return fmt.Errorf("find intake: %w", err)
		}

		breakdown := domain.MealNutrients(meal.Ingredients)
		rdi.Targets = subtractBreakdown(rdi.Targets, breakdown)
		rdi.UpdatedAt = l.now()

		if err := l.intakes.UpdateTargets(ctx, rdi); err != nil {
			return fmt.Errorf("update intake: %w", err)
		}

		snapshot := newConsumedMeal(rdi, meal, breakdown, l.now())
		if err := l.consumed.Create(ctx, snapshot); err != nil {
			return fmt.Errorf("record consumed meal: %w", err)
		}

		remaining = rdi.Targets
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.InfoContext(ctx, "meal consumed",
		slog.String("user_id", userID.String()),
		slog.String("meal_id", mealID.String()),
		slog.String("date", date.Format(time.DateOnly)),
	)
	return copyTargets(remaining), nil
}

// Cumulative sums the current target values of every intake record in the
// week (Monday to Sunday) or calendar month containing today. Dates without
// a record are skipped.
func (l *ConsumptionLedger) Cumulative(ctx context.Context, userID uuid.UUID, scope domain.Scope) (map[string]decimal.Decimal, error) {
	from, to := scope.Range(l.now())

	records, err := l.intakes.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}

	sum := make(map[string]decimal.Decimal)
	for _, rdi := range records {
		for name, v := range rdi.Targets {
			sum[name] = sum[name].Add(v)
		}
	}
	return sum, nil
}

// History lists the user's consumption snapshots dated within [from, to].
func (l *ConsumptionLedger) History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.ConsumedMeal, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s before start %s",
			domain.ErrInvalidRequest, to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	meals, err := l.consumed.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list consumed meals: %w", err)
	}
	return meals, nil
}

// subtractBreakdown returns targets with every nutrient of b that matches
// an existing key subtracted. Keys are never added.
func subtractBreakdown(targets map[string]decimal.Decimal, b domain.Breakdown) map[string]decimal.Decimal {
	consumed := make(map[string]decimal.Decimal, len(b))
	for name, amount := range b {
		key := domain.NutrientKey(name)
		consumed[key] = consumed[key].Add(amount.Value)
	}

	out := make(map[string]decimal.Decimal, len(targets))
	for name, target := range targets {
		if v, ok := consumed[domain.NutrientKey(name)]; ok {
			target = target.Sub(v)
		}
		out[name] = target
	}
	return out
}

func newConsumedMeal(rdi *domain.RecommendedDailyIntake, meal *domain.Meal, b domain.Breakdown, at time.Time) *domain.ConsumedMeal {
	totals := domain.MealTotals(meal.Ingredients)

	return &domain.ConsumedMeal{
		ID:                  uuid.New(),
		IntakeID:            rdi.ID,
		UserID:              rdi.UserID,
		MealID:              meal.ID,
		MealName:            meal.Name,
		TotalCalories:       totals.Calories,
		TotalProtein:        totals.Protein,
		TotalCarbs:          totals.Carbs,
		TotalFat:            totals.Fat,
		TotalSugars:         sumByKey(b, domain.NutrientSugars),
		TotalSaturatedFat:   b.Value(domain.NutrientSaturatedFat),
		TotalUnsaturatedFat: b.Value(domain.NutrientMonounsaturated).Add(b.Value(domain.NutrientPolyunsaturated)),
		ConsumedDate:        rdi.Date,
		ConsumedTime:        at,
	}
}

// sumByKey adds every entry of b sharing name's matching key.
func sumByKey(b domain.Breakdown, name string) decimal.Decimal {
	key := domain.NutrientKey(name)
	sum := decimal.Zero
	for name, a := range b {
		if domain.NutrientKey(name) == key {
			sum = sum.Add(a.Value)
		}
	}
	return sum
}

func copyTargets(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
