// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrContentMissing is returned when a content collection is empty or absent.
	// Callers are expected to degrade to a built-in fallback item.
	ErrContentMissing = errors.New("content missing")

	// ErrInvalidInput is returned when user-provided input (an answer, a slot
	// value) cannot be interpreted. The caller should re-prompt.
	ErrInvalidInput = errors.New("invalid input")
)

// ContentMissingError reports which content collection had nothing to offer.
type ContentMissingError struct {
	Collection string
}

// Error implements the error interface.
func (e *ContentMissingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrContentMissing.Error(), e.Collection)
}

// Is makes ContentMissingError match ErrContentMissing.
func (e *ContentMissingError) Is(target error) bool {
	return target == ErrContentMissing
}

// NewContentMissingError creates a ContentMissingError for the named collection.
func NewContentMissingError(collection string) *ContentMissingError {
	return &ContentMissingError{Collection: collection}
}

// InvalidInputError describes a malformed answer or slot value.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidInput.Error(), e.Field, e.Value, e.Reason)
}

// Is makes InvalidInputError match ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInvalidInputError creates an InvalidInputError.
func NewInvalidInputError(field, value, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}
