package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is the parent of every lookup miss below
	ErrNotFound = errors.New("not found")

	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrMealNotFound   = fmt.Errorf("meal %w", ErrNotFound)
	ErrFoodNotFound   = fmt.Errorf("food item %w", ErrNotFound)
	ErrPlanNotFound   = fmt.Errorf("diet plan %w", ErrNotFound)
	ErrIntakeNotFound = fmt.Errorf("intake record %w", ErrNotFound)

	ErrIngredientNotFound = fmt.Errorf("meal ingredient %w", ErrNotFound)

	// ErrMissingProfileData is returned when biometrics required for an
	// intake target are absent
	ErrMissingProfileData = errors.New("missing profile data")

	// ErrInvalidProfile is returned for unknown gender, activity or goal values
	ErrInvalidProfile = errors.New("invalid profile data")

	// ErrAlreadyExists is returned when a unique record would be duplicated
	ErrAlreadyExists = errors.New("already exists")

	// ErrConcurrentUpdate is returned when an intake record changed between
	// read and write; the caller should retry with a fresh read
	ErrConcurrentUpdate = errors.New("concurrent update conflict")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when USDA has no matching food
	ErrProductNotFound = errors.New("product not found in USDA database")

	// ErrUSDAAPIFailure is returned when USDA API request fails
	ErrUSDAAPIFailure = errors.New("USDA API request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// MissingProfileDataError names every absent profile field.
type MissingProfileDataError struct {
	Fields []string
}

func (e *MissingProfileDataError) Error() string {
	return fmt.Sprintf("missing profile data: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingProfileDataError) Unwrap() error { return ErrMissingProfileData }
