package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/google/uuid"
)

// DaySummary is the on-demand rollup of one plan day.
type DaySummary struct {
	DayID     uuid.UUID          `json:"dayId"`
	Date      time.Time          `json:"date"`
	Label     string             `json:"label"`
	Totals    domain.MacroTotals `json:"totals"`
	Nutrients domain.Breakdown   `json:"nutrients"`
}

// PlanSummary is a plan's cached figures next to its per-day breakdown.
type PlanSummary struct {
	PlanID   uuid.UUID            `json:"planId"`
	Name     string               `json:"name"`
	Totals   domain.MacroTotals   `json:"totals"`
	Averages domain.MacroAverages `json:"averages"`
	Days     []DaySummary         `json:"days"`
}

// PlanDayInput is one day of a plan composition. Meals are referenced by
// ID and may repeat.
type PlanDayInput struct {
	Date    *time.Time  `json:"date"`
	Label   string      `json:"label"`
	MealIDs []uuid.UUID `json:"mealIds"`
}

// PlanInput is the full composition of a plan.
type PlanInput struct {
	Name string         `json:"name"`
	Days []PlanDayInput `json:"days"`
}

// PlanRollup keeps the cached totals and averages of diet plans in step
// with their days and meals.
type PlanRollup struct {
	plans domain.PlanRepository
	meals domain.MealRepository
	tx    domain.TxManager
	log   *slog.Logger
}

// NewPlanRollup creates a PlanRollup.
func NewPlanRollup(log *slog.Logger, plans domain.PlanRepository, meals domain.MealRepository, tx domain.TxManager) *PlanRollup {
	return &PlanRollup{
		plans: plans,
		meals: meals,
		tx:    tx,
		log:   log.With("service", "plan_rollup"),
	}
}

// RecomputeTotals rewrites plan's cached fields from its current days.
func (r *PlanRollup) RecomputeTotals(plan *domain.DietPlan) {
	plan.RecomputeTotals()
}

// SavePlan creates the plan or replaces its name and days, recomputing the
// cached fields before anything is written.
func (r *PlanRollup) SavePlan(ctx context.Context, planID uuid.UUID, in PlanInput) (*domain.DietPlan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: plan name is required", domain.ErrInvalidRequest)
	}

	var plan *domain.DietPlan
	created := false
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := r.plans.GetByID(ctx, planID)
		switch {
		case errors.Is(err, domain.ErrPlanNotFound):
			created = true
			plan = &domain.DietPlan{ID: planID, CreatedAt: time.Now()}
		case err != nil:
			return fmt.Errorf("get plan: %w", err)
		default:
			plan = existing
		}

		days, err := r.buildDays(ctx, planID, in.Days)
		if err != nil {
			return err
		}
		plan.Name = name
		plan.Days = days
		r.RecomputeTotals(plan)
		plan.UpdatedAt = time.Now()

		if err := r.plans.Save(ctx, plan); err != nil {
			return fmt.Errorf("save plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.InfoContext(ctx, "plan saved",
		slog.String("plan_id", plan.ID.String()),
		slog.Bool("created", created),
		slog.Int("days", len(plan.Days)),
	)
	return plan, nil
}

func (r *PlanRollup) buildDays(ctx context.Context, planID uuid.UUID, inputs []PlanDayInput) ([]domain.DietDay, error) {
	loaded := make(map[uuid.UUID]*domain.Meal)
	days := make([]domain.DietDay, 0, len(inputs))
	for _, in := range inputs {
		day := domain.DietDay{ID: uuid.New(), PlanID: planID, Label: strings.TrimSpace(in.Label)}
		if in.Date != nil {
			day.Date = domain.DateOf(*in.Date)
		}
		for _, id := range in.MealIDs {
			meal, ok := loaded[id]
			if !ok {
				var err error
				meal, err = r.meals.GetByID(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("get meal %s: %w", id, err)
				}
				loaded[id] = meal
			}
			day.Meals = append(day.Meals, meal)
		}
		days = append(days, day)
	}
	return days, nil
}

// Refresh loads a plan, recomputes it and persists the cached fields.
func (r *PlanRollup) Refresh(ctx context.Context, planID uuid.UUID) (*domain.DietPlan, error) {
	var plan *domain.DietPlan
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = r.refresh(ctx, planID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// RefreshForMeal refreshes every plan that lists the meal on any day and
// returns how many were refreshed.
func (r *PlanRollup) RefreshForMeal(ctx context.Context, mealID uuid.UUID) (int, error) {
	var n int
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		ids, err := r.plans.ListIDsByMeal(ctx, mealID)
		if err != nil {
			return fmt.Errorf("list plans for meal: %w", err)
		}
		for _, id := range ids {
			if _, err := r.refresh(ctx, id); err != nil {
				return err
			}
		}
		n = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if n > 0 {
		r.log.DebugContext(ctx, "plans refreshed for meal",
			slog.String("meal_id", mealID.String()),
			slog.Int("plans", n),
		)
	}
	return n, nil
}

// Summary returns the plan's cached figures with per-day totals and
// nutrient breakdowns computed on demand.
func (r *PlanRollup) Summary(ctx context.Context, planID uuid.UUID) (*PlanSummary, error) {
	plan, err := r.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	days := make([]DaySummary, 0, len(plan.Days))
	for _, d := range plan.Days {
		days = append(days, DaySummary{
			DayID:     d.ID,
			Date:      d.Date,
			Label:     d.Label,
			Totals:    d.Totals(),
			Nutrients: domain.DayNutrients(d.Meals),
		})
	}

	return &PlanSummary{
		PlanID: plan.ID,
		Name:   plan.Name,
		Totals: domain.MacroTotals{
			Calories: plan.TotalCalories,
			Protein:  plan.TotalProtein,
			Carbs:    plan.TotalCarbs,
			Fat:      plan.TotalFat,
		},
		Averages: domain.MacroAverages{
			Calories: plan.AvgCalories,
			Protein:  plan.AvgProtein,
			Carbs:    plan.AvgCarbs,
			Fat:      plan.AvgFat,
		},
		Days: days,
	}, nil
}

func (r *PlanRollup) refresh(ctx context.Context, planID uuid.UUID) (*domain.DietPlan, error) {
	plan, err := r.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	r.RecomputeTotals(plan)
	plan.UpdatedAt = time.Now()
	if err := r.plans.SaveTotals(ctx, plan); err != nil {
		return nil, fmt.Errorf("save plan totals: %w", err)
	}
	return plan, nil
}
