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
	"github.com/shopspring/decimal"
)

// ProfileInput is a partial profile update. Nil fields keep the stored value.
type ProfileInput struct {
	Email         *string
	WeightKg      *decimal.Decimal
	HeightCm      *decimal.Decimal
	Age           *int
	Gender        *string
	ActivityLevel *string
	Goal          *string
}

// UserService manages user profiles and previews their intake targets.
type UserService struct {
	users      domain.UserRepository
	calculator *IntakeCalculator
	log        *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(log *slog.Logger, users domain.UserRepository, calculator *IntakeCalculator) *UserService {
	return &UserService{
		users:      users,
		calculator: calculator,
		log:        log.With("service", "user"),
	}
}

// Get returns a user with its profile.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SaveProfile applies in to the user, creating the user when it does not
// exist yet. Intake records already created are not recalculated.
func (s *UserService) SaveProfile(ctx context.Context, id uuid.UUID, in ProfileInput) (*domain.User, error) {
	now := time.Now()
	u, err := s.users.GetByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u = &domain.User{ID: id, CreatedAt: now}
	case err != nil:
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := applyProfile(u, in); err != nil {
		return nil, err
	}
	u.UpdatedAt = now

	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.log.InfoContext(ctx, "profile saved",
		slog.String("user_id", id.String()),
		slog.Int("missing_fields", len(u.Profile.MissingFields())),
	)
	return u, nil
}

// PreviewTargets calculates the targets a new intake record would get
// today without storing anything.
func (s *UserService) PreviewTargets(ctx context.Context, id uuid.UUID) (map[string]decimal.Decimal, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.calculator.Calculate(u.Profile)
}

func applyProfile(u *domain.User, in ProfileInput) error {
	p := u.Profile
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.WeightKg != nil {
		if !in.WeightKg.IsPositive() {
			return fmt.Errorf("%w: weight must be positive", domain.ErrInvalidProfile)
		}
		w := *in.WeightKg
		p.WeightKg = &w
	}
	if in.HeightCm != nil {
		if !in.HeightCm.IsPositive() {
			return fmt.Errorf("%w: height must be positive", domain.ErrInvalidProfile)
		}
		h := *in.HeightCm
		p.HeightCm = &h
	}
	if in.Age != nil {
		if *in.Age <= 0 {
			return fmt.Errorf("%w: age must be positive", domain.ErrInvalidProfile)
		}
		a := *in.Age
		p.Age = &a
	}
	if in.Gender != nil {
		g, err := domain.ParseGender(*in.Gender)
		if err != nil {
			return err
		}
		p.Gender = &g
	}
	if in.ActivityLevel != nil {
		a, err := domain.ParseActivityLevel(*in.ActivityLevel)
		if err != nil {
			return err
		}
		p.ActivityLevel = &a
	}
	if in.Goal != nil {
		g, err := domain.ParseGoal(*in.Goal)
		if err != nil {
			return err
		}
		p.Goal = &g
	}
	u.Profile = p
	return nil
}
