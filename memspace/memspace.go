// Package memspace simulates manual memory management over a fixed address
// space of abstract words.
//
// A Space keeps two lists of ranges, one free and one allocated. Malloc
// takes the first free range that is large enough, splitting it from the
// front when it is larger than requested. Free moves an allocated range back
// to the free list without merging it. Defrag sorts the free list and
// coalesces adjacent ranges.
//
//	s, err := memspace.New(100)
//	if err != nil {
//	    return err
//	}
//
//	addr, err := s.Malloc(17)
//	if err != nil {
//	    return err
//	}
//	if addr == memspace.NoAddress {
//	    // no free range is large enough
//	}
//
//	err = s.Free(addr)
//	s.Defrag()
//
// A Space is not safe for concurrent use. Callers that share one must hold
// a lock around every call.
package memspace

import (
	"fmt"

	"github.com/sarchlab/memspace/hooking"
	"github.com/sarchlab/memspace/rangelist"
	"go.uber.org/zap"
)

// NoAddress is returned by Malloc when no free range can hold the request.
const NoAddress = -1

// A Space is a managed memory space.
type Space struct {
	hooking.HookableBase

	name       string
	capacity   int
	autoDefrag bool
	strictFree bool

	free      *rangelist.List
	allocated *rangelist.List
}

// Name returns the name of the memory space.
func (s *Space) Name() string {
	return s.name
}

// Capacity returns the number of words managed.
func (s *Space) Capacity() int {
	return s.capacity
}

// AutoDefrag reports whether Free defragments after each release.
func (s *Space) AutoDefrag() bool {
	return s.autoDefrag
}

// StrictFree reports whether Free rejects unknown addresses.
func (s *Space) StrictFree() bool {
	return s.strictFree
}

// Malloc allocates length words and returns the base address of the new
// range, or NoAddress if no free range is large enough. Running out of space
// is not an error.
func (s *Space) Malloc(length int) (int, error) {
	if length <= 0 {
		return NoAddress, fmt.Errorf("%w: length %d", ErrInvalidArgument, length)
	}

	cursor := s.free.Cursor()
	for cursor.HasNext() {
		block := mustNext(cursor)

		switch {
		case block.Length == length:
			if err := cursor.RemoveCurrent(); err != nil {
				panic(err)
			}

			mustAppend(s.allocated, block)
			s.invoke(HookPosMalloc, Event{Address: block.Base, Length: length})

			return block.Base, nil

		case block.Length > length:
			newBlock := rangelist.NewRange(block.Base, length)
			mustAppend(s.allocated, newBlock)

			block.Base += length
			block.Length -= length

			s.invoke(HookPosMalloc, Event{Address: newBlock.Base, Length: length})

			return newBlock.Base, nil
		}
	}

	s.invoke(HookPosMallocFail, Event{Address: NoAddress, Length: length})

	return NoAddress, nil
}

// Free releases the allocated range whose base address is address. The
// range is appended to the free list as is; it is not merged until Defrag.
//
// An address that matches no allocated range is ignored, unless the space
// was built with WithStrictFree.
func (s *Space) Free(address int) error {
	if s.allocated.Size() == 0 {
		return fmt.Errorf("%w: free(%d)", ErrNothingAllocated, address)
	}

	cursor := s.allocated.Cursor()
	for cursor.HasNext() {
		block := mustNext(cursor)
		if block.Base != address {
			continue
		}

		if err := cursor.RemoveCurrent(); err != nil {
			panic(err)
		}

		mustAppend(s.free, block)
		s.invoke(HookPosFree, Event{Address: block.Base, Length: block.Length})

		if s.autoDefrag {
			s.Defrag()
		}

		return nil
	}

	s.invoke(HookPosFreeMiss, Event{Address: address})

	if s.strictFree {
		return fmt.Errorf("%w: free(%d)", ErrUnknownAddress, address)
	}

	return nil
}

// Defrag sorts the free list by base address and merges every pair of
// adjacent ranges. The free list is replaced by a new list; cursors on the
// old one become detached. The allocated list is never touched.
func (s *Space) Defrag() {
	if s.free.Size() == 0 {
		return
	}

	s.free.SortByBase()

	merged := rangelist.New()
	absorbed := 0

	cursor := s.free.Cursor()
	previous := mustNext(cursor)

	for cursor.HasNext() {
		current := mustNext(cursor)

		if previous.Adjacent(current) {
			previous.Length += current.Length
			absorbed++

			continue
		}

		mustAppend(merged, previous)
		previous = current
	}

	mustAppend(merged, previous)

	s.free.Detach()
	s.free = merged

	Logger().Debug("defragmented",
		zap.String("space", s.name),
		zap.Int("absorbed", absorbed),
		zap.Int("free_ranges", merged.Size()))

	s.invoke(HookPosDefrag, Event{
		Address: NoAddress,
		Length:  merged.TotalLength(),
		Merged:  absorbed,
	})
}

// FreeRanges returns a copy of the free list in list order.
func (s *Space) FreeRanges() []rangelist.Range {
	return s.free.Ranges()
}

// AllocatedRanges returns a copy of the allocated list in list order.
func (s *Space) AllocatedRanges() []rangelist.Range {
	return s.allocated.Ranges()
}

// FreeSize returns the total length of all free ranges.
func (s *Space) FreeSize() int {
	return s.free.TotalLength()
}

// AllocatedSize returns the total length of all allocated ranges.
func (s *Space) AllocatedSize() int {
	return s.allocated.TotalLength()
}

// LargestFree returns the length of the largest free range, which bounds
// the largest request Malloc can satisfy.
func (s *Space) LargestFree() int {
	largest := 0
	for e := s.free.Front(); e != nil; e = e.Next() {
		if e.Range().Length > largest {
			largest = e.Range().Length
		}
	}

	return largest
}

// Fragmentation returns 1 - LargestFree/FreeSize, or 0 with no free space.
func (s *Space) Fragmentation() float64 {
	free := s.FreeSize()
	if free == 0 {
		return 0
	}

	return 1 - float64(s.LargestFree())/float64(free)
}

// Stats summarizes both lists.
func (s *Space) Stats() Stats {
	return Stats{
		FreeSize:       s.FreeSize(),
		AllocatedSize:  s.AllocatedSize(),
		FreeCount:      s.free.Size(),
		AllocatedCount: s.allocated.Size(),
	}
}

// String renders the free list, a newline, then the allocated list.
func (s *Space) String() string {
	return s.free.String() + "\n" + s.allocated.String()
}

func (s *Space) invoke(pos *hooking.HookPos, event Event) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   event,
		Detail: s.Stats(),
	})
}

func mustAppend(l *rangelist.List, r *rangelist.Range) {
	if err := l.AppendLast(r); err != nil {
		panic(err)
	}
}

func mustNext(c *rangelist.Cursor) *rangelist.Range {
	r, err := c.Next()
	if err != nil {
		panic(err)
	}

	return r
}
