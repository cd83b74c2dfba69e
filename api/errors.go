// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the pollwake library.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrRegistration indicates the polling engine refused to register a wake
	// source, typically due to descriptor or watch limits. Fatal to the
	// constructing operation, not to the process; retry policy is the caller's.
	ErrRegistration = fmt.Errorf("wake source registration refused")

	// ErrWait indicates a failure inside the engine's wait call. Surfaced to
	// the event-loop owner and propagated up.
	ErrWait = fmt.Errorf("poll wait failed")

	// ErrConcurrentWait indicates a second waiter was registered against a
	// notifier that already has one armed. This is a contract violation by the
	// caller, never a transient runtime condition.
	ErrConcurrentWait = fmt.Errorf("notifier already has an armed waiter")

	// ErrClosed indicates use of a ping, notifier, or bridge after teardown.
	ErrClosed = fmt.Errorf("wake primitive is closed")

	// ErrNotSupported indicates the platform lacks the requested wake backend
	// or reactor implementation.
	ErrNotSupported = fmt.Errorf("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeRegistration
	ErrCodeWait
	ErrCodeConcurrentWait
	ErrCodeClosed
	ErrCodeNotSupported
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Unwrap maps structured codes back onto the sentinel errors so callers can
// test with errors.Is against either form.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeRegistration:
		return ErrRegistration
	case ErrCodeWait:
		return ErrWait
	case ErrCodeConcurrentWait:
		return ErrConcurrentWait
	case ErrCodeClosed:
		return ErrClosed
	case ErrCodeNotSupported:
		return ErrNotSupported
	}
	return nil
}
