// Package idgen generates IDs for trace records.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewSequential returns a generator that yields "1", "2", "3", ... It is
// safe for concurrent use and deterministic within one process.
func NewSequential() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewXID returns a generator of globally unique xid strings. The IDs are
// not deterministic.
func NewXID() IDGenerator {
	return xidGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
