package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("action not allowed")
	ErrDuplicateRequest  = errors.New("a connection already exists between this student and tutor")
	ErrInvalidTransition = errors.New("connection has already been answered")
	ErrCodeMismatch      = errors.New("review code is incorrect")
	ErrDuplicateReview   = errors.New("a review has already been submitted for this connection")

	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ErrConnectionNotAccepted is a forbidden action: reviews need an accepted connection.
var ErrConnectionNotAccepted = fmt.Errorf("%w: connection has not been accepted", ErrForbidden)

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}
