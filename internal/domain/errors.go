package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is usually wrapped by a *ValidationError naming the field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password violates the password policy.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrPasswordMismatch is returned when a password and its confirmation differ.
	ErrPasswordMismatch = errors.New("password fields didn't match")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError. When err is nil the error
// wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PasswordPolicyError lists every password rule a candidate password broke.
type PasswordPolicyError struct {
	Violations []string
}

func (e *PasswordPolicyError) Error() string {
	return "invalid password: " + strings.Join(e.Violations, " ")
}

// Unwrap lets callers match the error with errors.Is(err, ErrInvalidPassword).
func (e *PasswordPolicyError) Unwrap() error {
	return ErrInvalidPassword
}

// FieldErrors collects the field-level messages carried by err, keyed by
// field name. It understands *ValidationError, *PasswordPolicyError and
// errors joined with errors.Join. Anything else yields nil.
func FieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}
	fields := make(map[string][]string)
	collectFieldErrors(err, fields)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func collectFieldErrors(err error, fields map[string][]string) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collectFieldErrors(e, fields)
		}
		return
	}

	var policyErr *PasswordPolicyError
	if errors.As(err, &policyErr) {
		fields["password"] = append(fields["password"], policyErr.Violations...)
		return
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		fields[valErr.Field] = append(fields[valErr.Field], valErr.Message)
	}
}
