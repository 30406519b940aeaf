/*
errors.go - Error types for honor calculation

ERROR CATEGORIES:
  1. Validation errors - negative or fractional counts from the caller
  2. Missing-rate errors - the active setting lacks a rate its own
     declared system requires (upstream configuration problem; the
     calculator refuses to guess a default)
  3. Unsupported-system errors - reserved/unknown system values

A calculation either fully succeeds or fails atomically; there is no
partial breakdown and nothing transient to retry.
*/
package honor

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingRate       = errors.New("required rate not configured")
	ErrUnsupportedSystem = errors.New("unsupported payment system")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a malformed count.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// MissingRateError names the rate field the selected system requires.
type MissingRateError struct {
	System System
	Field  string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("payment system %q requires rate %q", e.System, e.Field)
}

func (e *MissingRateError) Unwrap() error { return ErrMissingRate }

// UnsupportedPaymentSystemError reports a system with no formula.
type UnsupportedPaymentSystemError struct {
	System System
}

func (e *UnsupportedPaymentSystemError) Error() string {
	return fmt.Sprintf("payment system %q has no calculation formula", e.System)
}

func (e *UnsupportedPaymentSystemError) Unwrap() error { return ErrUnsupportedSystem }

// IsClientError returns true if the error is due to invalid caller input
// or configuration rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingRate) ||
		errors.Is(err, ErrUnsupportedSystem)
}
