// Package apperror carries the closed error taxonomy of the API. Services
// return these; handlers map them to HTTP status codes without inspecting
// message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the failure class.
type Kind int

const (
	KindValidation Kind = iota // malformed or missing input
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindAlreadyFinalized // request/order already in a terminal state
	KindConflict         // unique-constraint style violation
	KindInternal
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func Unauthenticated(format string, args ...interface{}) *Error {
	return newf(KindUnauthenticated, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newf(KindForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func AlreadyFinalized(format string, args ...interface{}) *Error {
	return newf(KindAlreadyFinalized, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// Internal wraps an unexpected failure. The wrapped error is kept for
// server-side logs; clients only see the message.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the Kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Status maps an error to its HTTP status code. Validation, finalized-state
// and conflict failures all surface as 400 by API convention.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindAlreadyFinalized, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message: classified errors pass through,
// unexpected ones collapse to a generic string.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}
