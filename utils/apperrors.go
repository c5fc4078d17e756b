// utils/apperrors.go
package utils

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input caught before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports a read-check failure inside a transaction, such as
// "sale already processed" or "a pending request already exists". The
// transaction is aborted and the user has to re-trigger the operation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a conflict error.
func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IntegrityWarning records a data-integrity gap (broken referrer link, missing
// tier configuration) that the core treats as a no-op rather than a failure.
// Warnings are collected for logging, never returned as hard errors.
type IntegrityWarning struct {
	Message string
}

func (e *IntegrityWarning) Error() string {
	return e.Message
}

// NewIntegrityWarning creates an integrity warning.
func NewIntegrityWarning(format string, args ...interface{}) *IntegrityWarning {
	return &IntegrityWarning{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
