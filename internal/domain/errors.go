package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransient    = errors.New("transient upstream failure")
	ErrValidation   = errors.New("validation error")
	ErrUnconfigured = errors.New("content api endpoint not configured")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// PartialDataError signals that the content API returned usable data
// alongside a non-empty error list. Callers are expected to render the
// data and surface the messages as a non-fatal warning.
type PartialDataError struct {
	Messages []string
}

func (e *PartialDataError) Error() string {
	return "partial data: " + strings.Join(e.Messages, ", ")
}
