// Package tracing turns memory space hook events into trace records and
// hands them to tracers that log, count, or store them.
package tracing

import (
	"sync/atomic"

	"github.com/sarchlab/memspace/hooking"
	"github.com/sarchlab/memspace/idgen"
	"github.com/sarchlab/memspace/memspace"
)

// Record describes one operation on a memory space and the state of the
// space right after it. All fields are scalars so that a Record can be
// stored as a table row.
type Record struct {
	ID             string
	Seq            uint64
	Space          string
	What           string
	Address        int
	Length         int
	Merged         int
	FreeSize       int
	AllocatedSize  int
	FreeCount      int
	AllocatedCount int
}

// A Tracer receives trace records.
type Tracer interface {
	Trace(r Record)
}

// A TraceHook converts memspace hook contexts into records.
type TraceHook struct {
	tracer Tracer
	idGen  idgen.IDGenerator
	seq    atomic.Uint64
}

// NewTraceHook creates a hook that forwards to tracer, naming each record
// with an ID from idGen.
func NewTraceHook(tracer Tracer, idGen idgen.IDGenerator) *TraceHook {
	return &TraceHook{
		tracer: tracer,
		idGen:  idGen,
	}
}

// CollectTrace attaches tracer to domain. Records get globally unique IDs.
func CollectTrace(domain hooking.Hookable, tracer Tracer) *TraceHook {
	h := NewTraceHook(tracer, idgen.NewXID())
	domain.AcceptHook(h)

	return h
}

// Func implements hooking.Hook. Contexts not produced by a memory space
// are ignored.
func (h *TraceHook) Func(ctx hooking.HookCtx) {
	event, ok := ctx.Item.(memspace.Event)
	if !ok {
		return
	}

	stats, _ := ctx.Detail.(memspace.Stats)

	r := Record{
		ID:             h.idGen.Generate(),
		Seq:            h.seq.Add(1),
		What:           ctx.Pos.Name,
		Address:        event.Address,
		Length:         event.Length,
		Merged:         event.Merged,
		FreeSize:       stats.FreeSize,
		AllocatedSize:  stats.AllocatedSize,
		FreeCount:      stats.FreeCount,
		AllocatedCount: stats.AllocatedCount,
	}

	if ctx.Domain != nil {
		r.Space = ctx.Domain.Name()
	}

	h.tracer.Trace(r)
}
