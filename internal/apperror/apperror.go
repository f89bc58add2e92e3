// Package apperror defines the application's error taxonomy.
//
// Services return these domain errors; the HTTP layer maps them to status
// codes in exactly one place (handler/response.go). The sentinels below are
// meant to be checked with errors.Is against a wrapped chain.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failure")
	ErrConflict     = errors.New("conflict")
	ErrExhausted    = errors.New("quota exhausted")
	ErrUpstream     = errors.New("upstream unavailable")
)

// AppError carries a sentinel cause plus a human-readable message. Field is
// set for validation errors so the client can highlight the offending input.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Exhausted signals a spent quota. Handlers map it to 429.
func Exhausted(message string) *AppError {
	return &AppError{
		Err:     ErrExhausted,
		Message: message,
	}
}

// Upstream signals an unreachable external collaborator (database on a
// write path, or the language-model API). Handlers map it to 503.
func Upstream(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}

// IsNotFound reports whether err wraps ErrNotFound. Services branch on it
// when a missing row is an expected outcome rather than a failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
