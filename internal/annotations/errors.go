package annotations

import (
	"fmt"
	"strings"
)

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	SchemaErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case SchemaErrorCode:
		return "SchemaError"
	default:
		return "UnknownError"
	}
}

// AnnotationError reports a malformed annotation at its source position.
type AnnotationError struct {
	Code    ErrorCode
	Loc     SourceLocation
	Message string
	Hint    string
}

func (e *AnnotationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", e.Loc, e.Code, e.Message)
	if e.Hint != "" {
		fmt.Fprintf(&b, " (%s)", e.Hint)
	}
	return b.String()
}

func syntaxError(loc SourceLocation, format string, args ...any) *AnnotationError {
	return &AnnotationError{Code: SyntaxErrorCode, Loc: loc, Message: fmt.Sprintf(format, args...)}
}

func schemaError(loc SourceLocation, hint, format string, args ...any) *AnnotationError {
	return &AnnotationError{Code: SchemaErrorCode, Loc: loc, Message: fmt.Sprintf(format, args...), Hint: hint}
}
