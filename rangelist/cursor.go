package rangelist

import "fmt"

// A Cursor walks a list forward, one entry at a time, and can remove the
// entry it just returned. A cursor is invalidated by any structural change
// to its list that it did not make itself.
type Cursor struct {
	list  *List
	epoch uint64

	// current is the entry the next call to Next will return.
	current *Entry

	// returned is the entry most recently returned by Next. It is nil
	// before the first Next and right after RemoveCurrent.
	returned *Entry

	// prev is the live entry preceding returned.
	prev *Entry
}

func (c *Cursor) detached() bool {
	return c.list.detached || c.epoch != c.list.epoch
}

// HasNext reports whether Next can return another range.
func (c *Cursor) HasNext() bool {
	return c.current != nil && !c.detached()
}

// Next returns the range at the cursor and advances the cursor.
func (c *Cursor) Next() (*Range, error) {
	if c.detached() {
		return nil, ErrDetached
	}

	if c.current == nil {
		return nil, ErrExhausted
	}

	if c.returned != nil {
		c.prev = c.returned
	}

	c.returned = c.current
	c.current = c.current.next

	return c.returned.rng, nil
}

// Entry returns the entry most recently returned by Next, or nil.
func (c *Cursor) Entry() *Entry {
	return c.returned
}

// RemoveCurrent removes the entry most recently returned by Next. A
// following Next returns the entry that came after the removed one.
func (c *Cursor) RemoveCurrent() error {
	if c.detached() {
		return ErrDetached
	}

	if c.returned == nil {
		return fmt.Errorf("%w: remove before next", ErrInvalidState)
	}

	c.list.unlink(c.prev, c.returned)
	c.epoch = c.list.epoch
	c.returned = nil

	return nil
}
