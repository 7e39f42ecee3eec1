// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details, plus a
// mapping from internal error kinds to HTTP status codes for the read API.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Store / data model
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeDuplicateProxy   ErrorCode = "DUPLICATE_PROXY"
	CodeInvalidProxy     ErrorCode = "INVALID_PROXY"
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Validator / crawl
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeAdapterFailed    ErrorCode = "ADAPTER_FAILED"
	CodeTimeout          ErrorCode = "TIMEOUT"

	// Scheduler / coordination
	CodeTaskFailed     ErrorCode = "TASK_FAILED"
	CodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	// General
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeUnimplemented ErrorCode = "UNIMPLEMENTED"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is the application's structured error type.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to the HTTP status code the read API
// should respond with.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument, CodeInvalidProxy:
		return http.StatusBadRequest
	case CodeDuplicateProxy:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeStoreUnavailable, CodeCacheUnavailable:
		return http.StatusServiceUnavailable
	case CodeUnimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityError}
}

func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field, Details: make(map[string]any), Severity: SeverityError}
}

func NewWarning(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityWarning}
}

func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]any), Severity: SeverityError}
}

func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error, defaulting to CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatusFor returns the HTTP status code an arbitrary error should map
// to for the read API, defaulting to 500 for non-*Error values.
func HTTPStatusFor(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func IsWarning(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityWarning
	}
	return false
}

// Predefined errors for common scenarios.
var (
	ErrProxyNotFound  = New(CodeNotFound, "proxy not found")
	ErrDuplicateProxy = New(CodeDuplicateProxy, "proxy already exists")
	ErrInvalidAddress = New(CodeInvalidProxy, "invalid ip/port/protocol")
)
