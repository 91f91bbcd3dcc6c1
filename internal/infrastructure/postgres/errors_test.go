package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dietledger/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		wantIs error
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.ErrMealNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), domain.ErrMealNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
		{"foreign key", gorm.ErrForeignKeyViolated, domain.ErrNotFound},
		{"deadline", context.DeadlineExceeded, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, "get meal", domain.ErrMealNotFound), tt.wantIs)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, mapError(nil, "get meal", domain.ErrMealNotFound))
	})

	t.Run("other errors keep the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := mapError(cause, "get meal", domain.ErrMealNotFound)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "get meal")
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}
