// Package errors provides the error types shared by the guard checks.
//
// Policy violations are never errors; they are collected and reported.
// The types here cover environment problems and abnormal aborts
// (for example a metadata document that does not parse).
//
// Import Path: github.com/reflaxe-ocaml/guards/internal/pkg/errors
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	ErrNotRepository     = errors.New("not a version-controlled repository")
	ErrMalformedDocument = errors.New("malformed document")
	ErrUnknownCheck      = errors.New("unknown check")
	ErrUnknownBackend    = errors.New("unknown enumerator backend")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// GuardError is a structured error carrying a machine-readable code and,
// when relevant, the repository path it concerns.
type GuardError struct {
	// Code is a machine-readable error code (e.g., "METADATA_PARSE_FAILED").
	Code string

	// Message is a human-readable error message.
	Message string

	// Path is the repository-relative path involved, if any.
	Path string

	// Err is the wrapped underlying error.
	Err error
}

// Error implements the error interface.
func (e *GuardError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *GuardError) Unwrap() error {
	return e.Err
}

// New creates a new GuardError.
func New(code, message string) *GuardError {
	return &GuardError{Code: code, Message: message}
}

// Wrap wraps an existing error into a GuardError.
func Wrap(err error, code, message string) *GuardError {
	return &GuardError{Code: code, Message: message, Err: err}
}

// WithPath attaches the repository path to the error.
func (e *GuardError) WithPath(path string) *GuardError {
	if e == nil {
		return e
	}
	e.Path = path
	return e
}

// IsGuardError checks if an error is a GuardError and returns it.
func IsGuardError(err error) (*GuardError, bool) {
	var guardErr *GuardError
	if errors.As(err, &guardErr) {
		return guardErr, true
	}
	return nil, false
}
