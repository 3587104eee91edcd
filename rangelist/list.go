package rangelist

import (
	"fmt"
	"strings"
)

// An Entry is a node of a List. It holds one range and a link to the entry
// that follows it. Entries are created and owned by their list.
type Entry struct {
	rng  *Range
	next *Entry
	list *List
}

// Range returns the range held by the entry.
func (e *Entry) Range() *Range {
	return e.rng
}

// Next returns the following entry, or nil if e is the last entry or has
// been removed.
func (e *Entry) Next() *Entry {
	if e.list == nil {
		return nil
	}

	return e.next
}

func (e *Entry) String() string {
	return e.rng.String()
}

// A List is an ordered sequence of ranges. Order is insertion order unless
// SortByBase has been called.
//
// A List is not safe for concurrent use.
type List struct {
	first *Entry
	last  *Entry
	size  int

	// epoch changes with every structural mutation so that cursors can
	// tell when the list moved under them.
	epoch    uint64
	detached bool
}

// New creates an empty list.
func New() *List {
	return &List{}
}

// Size returns the number of entries.
func (l *List) Size() int {
	return l.size
}

// Front returns the first entry, or nil if the list is empty.
func (l *List) Front() *Entry {
	return l.first
}

// Back returns the last entry, or nil if the list is empty.
func (l *List) Back() *Entry {
	return l.last
}

func (l *List) indexMustBeValid(index, limit int) error {
	if index < 0 || index >= limit {
		return fmt.Errorf("%w: index %d, size %d", ErrOutOfRange, index, l.size)
	}

	return nil
}

func (l *List) entryAt(index int) *Entry {
	e := l.first
	for i := 0; i < index; i++ {
		e = e.next
	}

	return e
}

// EntryAt returns the entry at the given 0-based position.
func (l *List) EntryAt(index int) (*Entry, error) {
	if err := l.indexMustBeValid(index, l.size); err != nil {
		return nil, err
	}

	return l.entryAt(index), nil
}

// At returns the range at the given 0-based position.
func (l *List) At(index int) (*Range, error) {
	e, err := l.EntryAt(index)
	if err != nil {
		return nil, err
	}

	return e.rng, nil
}

// Insert places r before the entry currently at index. Inserting at 0 or at
// Size() takes constant time; any other position walks to its predecessor.
func (l *List) Insert(index int, r *Range) error {
	if r == nil {
		return fmt.Errorf("%w: nil range", ErrInvalidArgument)
	}

	if err := l.indexMustBeValid(index, l.size+1); err != nil {
		return err
	}

	e := &Entry{rng: r, list: l}

	switch {
	case index == 0:
		e.next = l.first
		l.first = e
		if l.size == 0 {
			l.last = e
		}
	case index == l.size:
		l.last.next = e
		l.last = e
	default:
		prev := l.entryAt(index - 1)
		e.next = prev.next
		prev.next = e
	}

	l.size++
	l.epoch++

	return nil
}

// AppendLast adds r after the last entry.
func (l *List) AppendLast(r *Range) error {
	return l.Insert(l.size, r)
}

// AppendFirst adds r before the first entry.
func (l *List) AppendFirst(r *Range) error {
	return l.Insert(0, r)
}

// IndexOf returns the position of the first range equal to r by value, or
// -1 if there is none.
func (l *List) IndexOf(r *Range) (int, error) {
	if r == nil {
		return -1, fmt.Errorf("%w: nil range", ErrInvalidArgument)
	}

	i := 0
	for e := l.first; e != nil; e = e.next {
		if e.rng.Equal(r) {
			return i, nil
		}
		i++
	}

	return -1, nil
}

// RemoveEntry removes the given entry. The entry is matched by identity,
// never by value, so two equal ranges can not be confused.
func (l *List) RemoveEntry(target *Entry) error {
	if target == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidArgument)
	}

	if l.size == 0 {
		return fmt.Errorf("%w: remove from empty list", ErrInvalidArgument)
	}

	if target == l.first {
		l.unlink(nil, target)
		return nil
	}

	for prev := l.first; prev.next != nil; prev = prev.next {
		if prev.next == target {
			l.unlink(prev, target)
			return nil
		}
	}

	return fmt.Errorf("%w: entry %s", ErrNotFound, target)
}

// RemoveAt removes the entry at the given position.
func (l *List) RemoveAt(index int) error {
	e, err := l.EntryAt(index)
	if err != nil {
		return err
	}

	return l.RemoveEntry(e)
}

// RemoveValue removes the first entry whose range equals r by value.
func (l *List) RemoveValue(r *Range) error {
	if r == nil {
		return fmt.Errorf("%w: nil range", ErrInvalidArgument)
	}

	var prev *Entry
	for e := l.first; e != nil; e = e.next {
		if e.rng.Equal(r) {
			l.unlink(prev, e)
			return nil
		}
		prev = e
	}

	return fmt.Errorf("%w: range %s", ErrNotFound, r)
}

// unlink removes e, whose predecessor is prev (nil when e is first).
func (l *List) unlink(prev, e *Entry) {
	if prev == nil {
		l.first = e.next
	} else {
		prev.next = e.next
	}

	if l.last == e {
		l.last = prev
	}

	e.next = nil
	e.list = nil

	l.size--
	l.epoch++
}

// Cursor returns a new cursor positioned at the first entry.
func (l *List) Cursor() *Cursor {
	return &Cursor{
		list:    l,
		epoch:   l.epoch,
		current: l.first,
	}
}

// SortByBase orders the list by ascending base address. Ranges are swapped
// between entries; the entries themselves stay in place. Entries with equal
// base addresses keep their relative order.
func (l *List) SortByBase() {
	if l.size <= 1 {
		return
	}

	swapped := true
	for swapped {
		swapped = false

		for e := l.first; e.next != nil; e = e.next {
			if e.rng.Base > e.next.rng.Base {
				e.rng, e.next.rng = e.next.rng, e.rng
				swapped = true
			}
		}
	}

	l.epoch++
}

// Detach marks the list as replaced. Cursors created from it, before or
// after, report ErrDetached.
func (l *List) Detach() {
	l.detached = true
	l.epoch++
}

// Detached reports whether Detach has been called.
func (l *List) Detached() bool {
	return l.detached
}

// Ranges returns a copy of every range in list order.
func (l *List) Ranges() []Range {
	ranges := make([]Range, 0, l.size)
	for e := l.first; e != nil; e = e.next {
		ranges = append(ranges, *e.rng)
	}

	return ranges
}

// TotalLength returns the sum of all range lengths.
func (l *List) TotalLength() int {
	total := 0
	for e := l.first; e != nil; e = e.next {
		total += e.rng.Length
	}

	return total
}

// String renders the list as "(b,l) -> (b,l)".
func (l *List) String() string {
	sb := strings.Builder{}

	for e := l.first; e != nil; e = e.next {
		sb.WriteString(e.rng.String())

		if e.next != nil {
			sb.WriteString(" -> ")
		}
	}

	return sb.String()
}
