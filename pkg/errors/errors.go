// Package errors provides the error taxonomy shared by the catalog client,
// the wishlist store and the command line.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New is an alias for the standard library errors.New.
var New = errors.New

// Is, As and Unwrap re-export the standard helpers so callers only need one import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEntry indicates that a book is already in the wishlist
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrCanceled indicates that a request was superseded or canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrCorruptState indicates that persisted state exists but cannot be decoded
	ErrCorruptState = errors.New("corrupt persisted state")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")
)

// TransportError is a network failure or a non-2xx response from the catalog.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog request failed (status %d): %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		return fmt.Sprintf("catalog request failed: %v", e.Err)
	}
	return "catalog request failed"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is maps a 404 onto ErrNotFound.
func (e *TransportError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// NewTransportError creates a TransportError for a failed request.
func NewTransportError(url string, statusCode int, err error) *TransportError {
	return &TransportError{URL: url, StatusCode: statusCode, Err: err}
}

// ValidationError represents a malformed record at the network boundary.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// DuplicateEntryError reports which book was already present.
type DuplicateEntryError struct {
	ID    int
	Title string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("book %d is already in the wishlist", e.ID)
}

func (e *DuplicateEntryError) Is(target error) bool {
	return target == ErrDuplicateEntry
}
