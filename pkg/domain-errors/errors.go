// Package domainerrors provides coded errors for the engine's domain layer.
//
// Stores return sentinel errors (pkg/platform/sentinel) describing
// infrastructure facts; services translate them into coded errors here, and
// the HTTP layer owns the code-to-status mapping. Codes are stable strings so
// they can travel in API error envelopes.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and retry decisions.
type Code string

const (
	// CodeValidation marks malformed input. Caller-correctable, raised
	// before any write.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks a single field that failed parsing (IDs, enums).
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks an unreadable or structurally wrong request body.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness or ownership precondition failure.
	// Never retried automatically.
	CodeConflict Code = "conflict"
	// CodeInvalidState marks an action invalid for the entity's current
	// lifecycle state.
	CodeInvalidState Code = "invalid_state"
	// CodeInvariantViolation marks a domain invariant breach detected during
	// construction or transition.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeUnauthorized marks a missing or invalid identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an identity that is present but not allowed.
	CodeForbidden Code = "forbidden"
	// CodeUnavailable marks a transient store or collaborator failure.
	// Safe to retry with backoff.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks an unexpected failure.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(cause error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	for errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}
		err = coded.cause
		coded = nil
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}
