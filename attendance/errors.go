/*
errors.go - Error types for the attendance resolver

ERROR CATEGORIES:
  1. Validation errors - malformed caller input (unparseable arrival)
  2. Future-activity errors - resolution requested for a session that
     has not started; callers must block upstream, the resolver refuses
     to guess

Scheduling ambiguity (unknown date class, missing start/end times) is
NOT an error - those are defined fallback paths in resolver.go.
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrFutureActivity is returned when status resolution is attempted
	// for an activity dated after today. Enforcement of the scan block
	// is a caller responsibility; reaching the resolver is a bug there.
	ErrFutureActivity = errors.New("activity has not started yet")

	// ErrInvalidInput is the root of all validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports malformed or out-of-range caller input.
// Never retried internally; always surfaced synchronously.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IsClientError returns true if the error is due to invalid caller input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrFutureActivity)
}
