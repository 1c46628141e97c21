package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", Validation("name is required"), KindValidation},
		{"not found", NotFound("author %d not found", 3), KindNotFound},
		{"conflict", Conflict("already exists"), KindConflict},
		{"wrapped conflict", fmt.Errorf("create author: %w", Conflict("dup")), KindConflict},
		{"untyped", errors.New("connection refused"), KindStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("book %d not found", 7))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage(cause, "create book")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "author 3 not found", MessageOf(NotFound("author %d not found", 3)))
	assert.Equal(t, "internal server error", MessageOf(Storage(errors.New("boom"), "find")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("boom")))
}
