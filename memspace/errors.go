package memspace

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a non-positive capacity or length.
	ErrInvalidArgument = errors.New("memspace: invalid argument")

	// ErrNothingAllocated indicates a Free call while no range is
	// allocated.
	ErrNothingAllocated = fmt.Errorf("%w: nothing is allocated", ErrInvalidArgument)

	// ErrUnknownAddress indicates a Free call with an address that is not
	// the base of an allocated range. Only reported in strict-free mode.
	ErrUnknownAddress = errors.New("memspace: address is not allocated")

	// ErrCorrupted indicates that the free and allocated lists no longer
	// tile the address space.
	ErrCorrupted = errors.New("memspace: corrupted memory space")
)
