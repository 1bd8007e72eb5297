package common

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable discriminator returned to callers. The transport
// maps it verbatim into the error payload, so values here are part of the
// tool contract.
type ErrorKind string

const (
	KindUnknownTool       ErrorKind = "unknown_tool"
	KindInvalidArgument   ErrorKind = "invalid_argument"
	KindInvalidRepository ErrorKind = "invalid_repository"
	KindAccessDenied      ErrorKind = "access_denied"
	KindExecutionTimeout  ErrorKind = "execution_timeout"
	KindRepositoryBusy    ErrorKind = "repository_busy"
	KindParseError        ErrorKind = "parse_error"
	KindInternalError     ErrorKind = "internal_error"
)

type ToolError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// NewToolError builds a caller-facing error. Message must already be safe to
// surface: no host paths outside the repository root, no raw stderr.
func NewToolError(kind ErrorKind, format string, args ...interface{}) *ToolError {
	return &ToolError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func WrapToolError(kind ErrorKind, cause error, format string, args ...interface{}) *ToolError {
	return &ToolError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// KindOf extracts the kind from an error chain, defaulting to
// internal_error for anything that is not a ToolError.
func KindOf(err error) ErrorKind {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindInternalError
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func IsInvalidRepository(err error) bool {
	return IsKind(err, KindInvalidRepository)
}

func IsAccessDenied(err error) bool {
	return IsKind(err, KindAccessDenied)
}
