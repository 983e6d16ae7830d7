package services

import (
	"errors"
	"fmt"

	"github.com/SigNoz/storefront-go-app/internal/validation"
)

// Error kinds. Match with errors.Is; anything else is an internal failure.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a business error with a caller facing message
type Error struct {
	Kind    error
	Message string
	Fields  validation.Errors
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidState(format string, args ...any) error {
	return &Error{Kind: ErrInvalidState, Message: fmt.Sprintf(format, args...)}
}

func invalidInput(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...any) error {
	return &Error{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// validationFailed converts a validator result into an InvalidInput error
func validationFailed(err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &Error{Kind: ErrInvalidInput, Message: "Validation failed", Fields: fields}
	}
	return err
}
