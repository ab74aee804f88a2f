// Package domainerrors provides coded domain errors. Services return these so
// transports can map failures to responses without string matching, and tests
// can assert on the failure kind rather than message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation covers malformed domain input: empty or oversized
	// strings, out-of-range numeric bounds, unrecognized enum values.
	CodeValidation Code = "validation"
	// CodeInvalidInput covers values rejected while parsing at a trust
	// boundary, before they become domain input.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest covers transport-level request problems (bad JSON,
	// missing fields).
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized covers missing or unverifiable caller identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden covers callers lacking a required role, e.g. a pool
	// update from anyone but the creator.
	CodeForbidden Code = "forbidden"
	// CodeNotFound covers absent pools, proposals, escrows, tallies, and
	// verification records.
	CodeNotFound Code = "not_found"
	// CodeConflict covers duplicate pool names, double escrow release, and
	// other already-in-that-state failures.
	CodeConflict Code = "conflict"
	// CodeCapacity covers configured ceilings: the pool-count maximum and
	// the bounded signer set.
	CodeCapacity Code = "capacity"
	// CodeTransferFailed covers the value-transfer collaborator declining
	// an operation. The enclosing operation aborts with no state change.
	CodeTransferFailed Code = "transfer_failed"
	// CodeNotReady covers operations requested before their gating
	// condition holds, e.g. vote resolution while the window is open.
	CodeNotReady Code = "not_ready"
	// CodeInvariantViolation covers illegal state transitions that should
	// be unreachable through validated paths.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal covers unexpected infrastructure failures.
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

// New constructs a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err returns
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or any error in its chain carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for readable test assertions.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the code carried by err, or CodeInternal when err carries
// none. Transports use it to pick a response status.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
