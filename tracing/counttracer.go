package tracing

import (
	"sync"

	"github.com/sarchlab/memspace/memspace"
)

// CountTracer counts records by kind and sums the words that moved.
type CountTracer struct {
	lock sync.Mutex

	names          []string
	counts         map[string]uint64
	wordsAllocated uint64
	wordsFreed     uint64
}

// NewCountTracer creates a CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		counts: make(map[string]uint64),
	}
}

// Trace counts the record.
func (t *CountTracer) Trace(r Record) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.counts[r.What]; !ok {
		t.names = append(t.names, r.What)
	}

	t.counts[r.What]++

	switch r.What {
	case memspace.HookPosMalloc.Name:
		t.wordsAllocated += uint64(r.Length)
	case memspace.HookPosFree.Name:
		t.wordsFreed += uint64(r.Length)
	}
}

// Names returns the kinds of records seen, in order of first appearance.
func (t *CountTracer) Names() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.names))
	copy(names, t.names)

	return names
}

// Count returns how many records of the given kind were seen.
func (t *CountTracer) Count(what string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.counts[what]
}

// WordsAllocated returns the total length of successful allocations.
func (t *CountTracer) WordsAllocated() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.wordsAllocated
}

// WordsFreed returns the total length of released ranges.
func (t *CountTracer) WordsFreed() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.wordsFreed
}
