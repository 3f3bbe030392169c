// Package errors provides coded domain errors for timeline reconciliation.
//
// Usage:
//
//	// In parsers - return typed errors
//	if !match {
//	    return errors.MalformedIdentifierf("unexpected path format: %s", path).WithDetails(map[string]string{"path": path})
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrEmptyMarkerSet) {
//	    log.Warn("part has no chapter markers, skipping")
//	}
//
//	// Or switch on the Code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeUnknownPart, errors.CodeMissingSpineData:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeMalformedIdentifier Code = "MALFORMED_IDENTIFIER"
	CodeInvalidTimestamp    Code = "INVALID_TIMESTAMP"
	CodeUnknownPart         Code = "UNKNOWN_PART"
	CodeMissingSpineData    Code = "MISSING_SPINE_DATA"
	CodeEmptyMarkerSet      Code = "EMPTY_MARKER_SET"
	CodeValidation          Code = "VALIDATION"
	CodeNotFound            Code = "NOT_FOUND"
	CodeTooManyRequests     Code = "TOO_MANY_REQUESTS"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeMalformedIdentifier, CodeInvalidTimestamp, CodeUnknownPart,
		CodeMissingSpineData, CodeEmptyMarkerSet:
		return http.StatusUnprocessableEntity
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrMalformedIdentifier = &Error{Code: CodeMalformedIdentifier, Message: "malformed chapter identifier"}
	ErrInvalidTimestamp    = &Error{Code: CodeInvalidTimestamp, Message: "invalid marker timestamp"}
	ErrUnknownPart         = &Error{Code: CodeUnknownPart, Message: "unknown part"}
	ErrMissingSpineData    = &Error{Code: CodeMissingSpineData, Message: "missing spine data"}
	ErrEmptyMarkerSet      = &Error{Code: CodeEmptyMarkerSet, Message: "empty marker set"}
	ErrValidation          = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrTooManyRequests     = &Error{Code: CodeTooManyRequests, Message: "too many requests"}
	ErrInternal            = &Error{Code: CodeInternal, Message: "internal error"}
)

// MalformedIdentifierf creates a malformed identifier error with formatted message.
func MalformedIdentifierf(format string, args ...any) *Error {
	return &Error{Code: CodeMalformedIdentifier, Message: fmt.Sprintf(format, args...)}
}

// InvalidTimestampf creates an invalid timestamp error with formatted message.
func InvalidTimestampf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidTimestamp, Message: fmt.Sprintf(format, args...)}
}

// UnknownPartf creates an unknown part error with formatted message.
func UnknownPartf(format string, args ...any) *Error {
	return &Error{Code: CodeUnknownPart, Message: fmt.Sprintf(format, args...)}
}

// MissingSpineDataf creates a missing spine data error with formatted message.
func MissingSpineDataf(format string, args ...any) *Error {
	return &Error{Code: CodeMissingSpineData, Message: fmt.Sprintf(format, args...)}
}

// EmptyMarkerSet creates an empty marker set error.
func EmptyMarkerSet(msg string) *Error {
	return &Error{Code: CodeEmptyMarkerSet, Message: msg}
}

// EmptyMarkerSetf creates an empty marker set error with formatted message.
func EmptyMarkerSetf(format string, args ...any) *Error {
	return &Error{Code: CodeEmptyMarkerSet, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
