package errors_test

import (
	apperrors "civicdesk/backend/internal/errors"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "complaint abc not found", apperrors.NewNotFoundError("complaint", "abc").Error())
	assert.Equal(t, "precondition violated (rate.already_rated): complaint was already rated",
		apperrors.NewPreconditionError("rate.already_rated", "complaint was already rated").Error())
	assert.Equal(t, "invalid argument rating: must be between 1 and 5",
		apperrors.NewInvalidArgumentError("rating", "must be between 1 and 5").Error())
	assert.Equal(t, "conflicting update on complaint c1", apperrors.NewConflictError("c1", nil).Error())
	assert.Equal(t, "conflicting update on complaint c1: lock held",
		apperrors.NewConflictError("c1", stderrors.New("lock held")).Error())
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"not found", apperrors.NewNotFoundError("officer", "7"), "not_found"},
		{"precondition", apperrors.NewPreconditionError("assign.requires_validated", "x"), "precondition"},
		{"invalid", apperrors.NewInvalidArgumentError("priority", "unknown"), "invalid_argument"},
		{"conflict", apperrors.NewConflictError("c1", nil), "conflict"},
		{"plain", stderrors.New("db down"), "internal"},
		{"nil", nil, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, apperrors.Kind(tt.err))
			if tt.err != nil {
				wrapped := fmt.Errorf("assign: %w", tt.err)
				assert.Equal(t, tt.kind, apperrors.Kind(wrapped), "kind must survive wrapping")
			}
		})
	}
}

func TestRule(t *testing.T) {
	err := fmt.Errorf("rate: %w", apperrors.NewPreconditionError("rate.already_rated", "twice"))
	assert.Equal(t, "rate.already_rated", apperrors.Rule(err))
	assert.Empty(t, apperrors.Rule(stderrors.New("other")))
}

func TestConflictUnwrap(t *testing.T) {
	cause := stderrors.New("version mismatch")
	err := apperrors.NewConflictError("c1", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, apperrors.IsConflict(err))
	assert.False(t, apperrors.IsNotFound(err))
}
