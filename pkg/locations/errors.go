package locations

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents the class of a locations error
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota
	ConfigurationErrorCode
	UnsupportedTypeErrorCode
	EmptyPathErrorCode
	HydrationErrorCode
	DecodeErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case UnsupportedTypeErrorCode:
		return "UnsupportedTypeError"
	case EmptyPathErrorCode:
		return "EmptyPathError"
	case HydrationErrorCode:
		return "HydrationError"
	case DecodeErrorCode:
		return "DecodeError"
	default:
		return "UnknownError"
	}
}

// Sentinel errors, matched with errors.Is.
var (
	ErrUnsupportedType = errors.New("unsupported field type")
	ErrEmptyPath       = errors.New("composed route path is empty")
	ErrInvalidValue    = errors.New("invalid value")
	ErrNoValue         = errors.New("no value")
)

// Error describes a failure tied to a location and optionally one of its fields.
type Error struct {
	Code     ErrorCode
	Location string
	Field    string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	if e.Location != "" {
		b.WriteString(" in ")
		b.WriteString(e.Location)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsConfigurationError reports whether err is a registration-time failure.
func IsConfigurationError(err error) bool {
	var le *Error
	if !errors.As(err, &le) {
		return false
	}
	switch le.Code {
	case ConfigurationErrorCode, UnsupportedTypeErrorCode, EmptyPathErrorCode:
		return true
	}
	return false
}

func newError(code ErrorCode, location, field string, cause error, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Location: location,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
	}
}

// HTTPError lets a handler pick the status code written by an adapter when
// the error reaches the router.
type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// NewHTTPError creates a new HTTPError with the given status code and message
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// NewHTTPErrorWithDetails creates a new HTTPError carrying extra details
func NewHTTPErrorWithDetails(code int, message string, details any) *HTTPError {
	return &HTTPError{Code: code, Message: message, Details: details}
}
