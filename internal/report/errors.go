package report

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSort is returned for an unknown debt report sort key.
	ErrInvalidSort = errors.New("invalid sort key")

	// ErrInvalidMonth is returned when a report month is not YYYY-MM.
	ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")
)

// SortError reports the rejected sort key.
type SortError struct {
	Value string
}

func (e *SortError) Error() string {
	return fmt.Sprintf("%v: %q (use name or balance)", ErrInvalidSort, e.Value)
}

func (e *SortError) Is(target error) bool {
	return target == ErrInvalidSort
}
