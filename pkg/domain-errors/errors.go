// Package domainerrors defines the coded error type shared by all services.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// those into coded errors so handlers can map them to HTTP statuses without
// string matching. The code set is closed: every branch that produces an error
// picks exactly one code, and the transport layer maps codes exhaustively.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code tags an error with its domain meaning.
type Code string

const (
	// CodeInvalidInput marks malformed or missing caller input.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks a reference to an entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness violation (duplicate claim or payment).
	// The losing side of a concurrent write surfaces this; retry is the
	// caller's decision.
	CodeConflict Code = "conflict"
	// CodeGuardBlocked marks an admission guard refusal (vigency closed,
	// arrears present). A distinguished conflict subtype: the request was
	// well-formed but the account or calendar state forbids it.
	CodeGuardBlocked Code = "guard_blocked"
	// CodeInvalidTransition marks a state-machine violation.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeUnauthorized marks a missing or unverifiable caller identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal marks upstream storage or infrastructure failure. The
	// message is never shown to callers.
	CodeInternal Code = "internal"
)

// Error carries a code, a human-readable reason, and optional structured
// fields (e.g. arrears count) for callers that need more than the message.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]any
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New builds a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// WithField returns a copy of the error carrying an extra structured field.
func (e *Error) WithField(key string, value any) *Error {
	fields := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &Error{Code: e.Code, Message: e.Message, Fields: fields, wrapped: e.wrapped}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
