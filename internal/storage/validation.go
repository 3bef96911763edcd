package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Veraticus/dinah/internal/common"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateInput checks the validate tags of an input struct. Amount failures
// are reported as common.ErrInvalidAmount.
func (s *SQLiteStorage) validateInput(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() == "Amount" || fe.Field() == "InitialBalance" {
				return fmt.Errorf("%w: %s", common.ErrInvalidAmount, fe.Error())
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func newUUID() string {
	return uuid.NewString()
}
