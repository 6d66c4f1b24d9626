package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies analysis failures with a stable tag the boundary
// layer maps to transport status codes. Every kind is fatal to the current
// request only, never to the process.
type ErrorKind string

const (
	ErrInvalidInput     ErrorKind = "invalid_input"
	ErrPayloadTooLarge  ErrorKind = "payload_too_large"
	ErrUnreachable      ErrorKind = "unreachable"
	ErrTimeout          ErrorKind = "timeout"
	ErrNoResourcesFound ErrorKind = "no_resources_found"
	ErrAuthFailure      ErrorKind = "auth_failure"
	ErrInternal         ErrorKind = "internal"
)

// AnalysisError carries a kind and a human-readable message. Messages must
// describe what was attempted and why it failed, and must never contain
// credential values.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error { return e.cause }

// NewError creates an AnalysisError with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an AnalysisError preserving the underlying cause.
func WrapError(kind ErrorKind, cause error, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the ErrorKind from err, or ErrInternal when err is not an
// AnalysisError.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ErrInternal
}
