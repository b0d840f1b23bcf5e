package finance

import (
	"errors"
	"fmt"
)

var (
	// ErrStudentNotFound is returned when an invoice references a student that
	// is absent from the current snapshot.
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvoiceNotFound is returned when a notice is requested for an unknown
	// invoice id.
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// Error carries the invoice and student a finance operation was working on.
type Error struct {
	// Op is the operation that failed (e.g., "Reconcile", "BuildNotice").
	Op string

	InvoiceID string
	StudentID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StudentID != "" {
		return fmt.Sprintf("finance: %s invoice %s (student %s): %v", e.Op, e.InvoiceID, e.StudentID, e.Err)
	}
	return fmt.Sprintf("finance: %s invoice %s: %v", e.Op, e.InvoiceID, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}
