package rangelist

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a nil range, a nil entry, or an
	// operation on an empty list.
	ErrInvalidArgument = errors.New("rangelist: invalid argument")

	// ErrOutOfRange indicates an index outside the list bounds.
	ErrOutOfRange = errors.New("rangelist: index out of range")

	// ErrNotFound indicates that the entry or range is not in the list. It
	// is an invalid-argument condition.
	ErrNotFound = fmt.Errorf("%w: not found in list", ErrInvalidArgument)

	// ErrInvalidState indicates a cursor removal without a preceding Next.
	ErrInvalidState = errors.New("rangelist: invalid cursor state")

	// ErrExhausted indicates a Next call on a cursor with no more entries.
	ErrExhausted = errors.New("rangelist: cursor exhausted")

	// ErrDetached indicates a cursor whose list has been replaced or
	// mutated from outside the cursor.
	ErrDetached = errors.New("rangelist: cursor detached from list")
)
