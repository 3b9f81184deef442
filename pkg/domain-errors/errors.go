// Package domainerrors provides coded errors for the service layer.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them into coded errors so handlers can map outcomes to HTTP statuses and
// callers can branch on failure class without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks caller-input validation failures (missing username,
	// missing rejection reason, empty note text). Never retried.
	CodeValidation Code = "validation"

	// CodeInvalidInput marks malformed identifiers or payloads at the trust
	// boundary.
	CodeInvalidInput Code = "invalid_input"

	// CodeInvalidCandidateState marks contradictory applicability and instance
	// type on an upsert request.
	CodeInvalidCandidateState Code = "invalid_candidate_state"

	// CodeIllegalUpdate marks a mutation attempted on a reported (frozen)
	// candidate.
	CodeIllegalUpdate Code = "illegal_update"

	// CodeIllegalState marks an approval mutation outside an open reporting
	// period.
	CodeIllegalState Code = "illegal_state"

	// CodeUnauthorized marks an operation by a user who does not own the
	// resource (note deletion by a non-author).
	CodeUnauthorized Code = "unauthorized"

	// CodeNotFound marks a missing candidate, note or period.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a version conflict that survived the bounded retry
	// loop. Transient; the caller may retry the whole request.
	CodeConflict Code = "conflict"

	// CodeInternal marks unexpected infrastructure failures.
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
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around a cause. The cause stays reachable via
// errors.Is/errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is is shorthand for HasCode, matching the call shape used at handler level.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code carried by err, or CodeInternal if err is
// not a coded error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
