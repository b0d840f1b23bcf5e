package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedSource is returned when the configured ledger source is
	// not one of file, sqlite or sheets.
	ErrUnsupportedSource = errors.New("unsupported ledger source")

	// ErrInvalidRow is returned when a sheet row cannot be parsed.
	ErrInvalidRow = errors.New("invalid ledger row")
)

// RowError describes a sheet row that could not be parsed.
type RowError struct {
	Sheet  string
	Row    int
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: field '%s': %s (value: %q)", e.Sheet, e.Row, e.Field, e.Reason, e.Value)
}

// Is reports RowError as ErrInvalidRow.
func (e *RowError) Is(target error) bool {
	return target == ErrInvalidRow
}
