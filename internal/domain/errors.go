package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking. They form the error taxonomy of
// the workflow core; every failure surfaced by an application service wraps
// exactly one of them.
var (
	// ErrNotFound signals that a referenced project, sprint, issue, or
	// membership does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals malformed input: bad dates, empty titles,
	// cross-project sprint/issue mismatches.
	ErrValidation = errors.New("validation error")

	// ErrAccessDenied signals that the acting user's membership role does
	// not permit the operation. The operation has no side effects.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition signals an illegal sprint status change.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrConflict signals a state collision: a second active sprint, a
	// duplicate issue key, or a concurrent modification. Callers are
	// expected to resubmit; the core never retries internally.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable signals a downstream dependency failure.
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MsgRequired is the validation message for mandatory fields.
const MsgRequired = "is required"
