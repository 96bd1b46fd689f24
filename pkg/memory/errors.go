package memory

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that no record exists with the requested id.
	ErrNotFound = errors.New("decision memory not found")

	// ErrEmptyFields indicates a create was attempted with all five slots blank.
	ErrEmptyFields = errors.New("all decision fields are empty")

	// ErrUnknownField indicates a field name outside the five decision slots.
	ErrUnknownField = errors.New("unknown decision field")
)

// StoreError wraps errors with operation context.
//
// It records which store operation failed, making error messages more
// informative for debugging.
//
// Example:
//
//	err := &StoreError{
//	    Op:  "Create",
//	    Err: ErrEmptyFields,
//	}
//	// Error() returns: "memory: Create: all decision fields are empty"
type StoreError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "memory: <Op>: <Err>"
func (e *StoreError) Error() string {
	return fmt.Sprintf("memory: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with StoreError.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewStoreError("Create", err)
//	}
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{
		Op:  op,
		Err: err,
	}
}
