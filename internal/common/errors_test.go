package common

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrors_SurviveWrapping(t *testing.T) {
	tests := []struct {
		err   error
		check func(error) bool
		name  string
	}{
		{name: "validation", err: NewValidationError("amount must be greater than %d", 0), check: IsValidation},
		{name: "not found", err: NewNotFoundError("transaction", "missing"), check: IsNotFound},
		{name: "duplicate", err: NewDuplicateError("category", "name", "Makanan"), check: IsDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(wrapped))
		})
	}
}

func TestTypedErrors_Messages(t *testing.T) {
	assert.Equal(t, "transaction with ID abc not found", NewNotFoundError("transaction", "abc").Error())
	assert.Equal(t, `category with name "Makanan" already exists`, NewDuplicateError("category", "name", "Makanan").Error())

	inner := errors.New("unexpected end of JSON input")
	verr := &ValidationError{Message: "invalid JSON format", Err: inner}
	assert.Equal(t, "invalid JSON format: unexpected end of JSON input", verr.Error())
	assert.ErrorIs(t, verr, inner)
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not save", ErrQuotaExceeded)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "could not save")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewHandler_RejectsUnknownFormat(t *testing.T) {
	_, err := NewHandler(nil, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
