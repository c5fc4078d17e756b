package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	validation := NewValidationError("email", "invalid format")
	conflict := NewConflictError("sale %s already processed", "abc")

	assert.True(t, IsValidation(validation))
	assert.False(t, IsConflict(validation))

	assert.True(t, IsConflict(conflict))
	assert.False(t, IsValidation(conflict))

	assert.False(t, IsValidation(errors.New("plain")))
	assert.False(t, IsConflict(nil))
}

func TestErrorClassificationThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("transaction aborted: %w", NewConflictError("already paid"))
	assert.True(t, IsConflict(wrapped))
}

func TestValidationErrorMessage(t *testing.T) {
	withField := NewValidationError("tiers", "overlap")
	assert.Equal(t, "validation failed on tiers: overlap", withField.Error())

	noField := NewValidationError("", "bad payload")
	assert.Equal(t, "validation failed: bad payload", noField.Error())
}
