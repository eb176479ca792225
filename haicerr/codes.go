// Package haicerr defines the typed error taxonomy for metric computation.
//
// Only structural violations surface as errors; every other anomaly in the
// input degrades to a warning or note carried alongside the result.
package haicerr

import (
	"errors"
	"fmt"
)

// Code identifies a fatal error class.
type Code string

const (
	// CodeInputShape indicates the top-level input container is malformed
	// (decisions is not a list, or an artifact is missing its decisions).
	CodeInputShape Code = "INPUT_SHAPE"
	// CodeInvalidWindow indicates a malformed or contradictory window spec.
	CodeInvalidWindow Code = "INVALID_WINDOW"
	// CodeTimeFormat indicates an unparseable time value.
	CodeTimeFormat Code = "TIME_FORMAT"
	// CodeUnknownProfile indicates a profile outside {core, full}.
	CodeUnknownProfile Code = "UNKNOWN_PROFILE"
)

// Error is a structured error carrying a taxonomy code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(cause error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
