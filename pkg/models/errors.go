package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the control plane core. Components return these
// directly (or wrapped with %w); callers discriminate with errors.Is and
// decide how to surface them. No component retries or downgrades an error.
var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrDeploymentNotFound = errors.New("deployment not found")
	ErrAlreadyExists      = errors.New("deployment already exists")
	ErrInvalidToken       = errors.New("invalid or expired node token")
	ErrNodeMismatch       = errors.New("token is bound to a different node")
)

// ValidationError reports malformed or incomplete input to an operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
