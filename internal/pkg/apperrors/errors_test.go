package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "RETRIEVE_ALL_FAILED",
				Message: "Failed to retrieve loans: connection refused",
			},
			expected: "[RETRIEVE_ALL_FAILED] Failed to retrieve loans: connection refused",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "Loan not found",
			},
			expected: "Loan not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDatabaseError(cause, "failed to fetch loans")

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DB_ERROR", appErr.Code)
	assert.True(t, errors.Is(err, ErrDatabase))
	assert.True(t, errors.Is(err, cause))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("id", "must not be empty")

	var vErr *ValidationError
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "id", vErr.Field)
	assert.Equal(t, "validation failed for field 'id': must not be empty", vErr.Error())
}

func TestNewAppErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewAppError("X", "msg", cause)

	assert.ErrorIs(t, err, cause)
}
