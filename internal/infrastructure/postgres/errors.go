package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dietledger/backend/internal/domain"
	"gorm.io/gorm"
)

// mapError converts gorm errors into domain errors. notFound is the
// entity-specific miss returned for gorm.ErrRecordNotFound.
func mapError(err error, op string, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	return fmt.Errorf("%s: %w", op, err)
}
