// Package rangelist provides a singly linked list of address ranges and a
// forward cursor over it. The list is the bookkeeping structure that
// memspace builds its free and allocated lists on.
package rangelist

import "fmt"

// Range is a contiguous span [Base, Base+Length) of an abstract address
// space. A list stores ranges by pointer, so the owner may rewrite Base and
// Length in place when splitting or merging.
type Range struct {
	Base   int `json:"base"`
	Length int `json:"length"`
}

// NewRange creates a range starting at base and spanning length words.
func NewRange(base, length int) *Range {
	return &Range{Base: base, Length: length}
}

// GetBase returns the base address.
func (r *Range) GetBase() int {
	return r.Base
}

// SetBase rewrites the base address.
func (r *Range) SetBase(base int) {
	r.Base = base
}

// GetLength returns the number of words covered.
func (r *Range) GetLength() int {
	return r.Length
}

// SetLength rewrites the length.
func (r *Range) SetLength(length int) {
	r.Length = length
}

// End returns the first address after the range.
func (r *Range) End() int {
	return r.Base + r.Length
}

// Equal reports whether two ranges have the same base and length.
func (r *Range) Equal(other *Range) bool {
	if r == nil || other == nil {
		return r == other
	}

	return r.Base == other.Base && r.Length == other.Length
}

// Adjacent reports whether other starts exactly where r ends.
func (r *Range) Adjacent(other *Range) bool {
	return r.End() == other.Base
}

// Overlaps reports whether the two ranges share at least one address.
func (r *Range) Overlaps(other *Range) bool {
	return r.Base < other.End() && other.Base < r.End()
}

func (r *Range) String() string {
	return fmt.Sprintf("(%d,%d)", r.Base, r.Length)
}
