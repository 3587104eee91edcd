package cmd

import (
	"fmt"
	"io"

	"github.com/sarchlab/memspace/datarecording"
	"github.com/sarchlab/memspace/memspace"
	"github.com/sarchlab/memspace/tracing"
	"go.uber.org/zap"
)

// A session is one memory space together with the tracers attached to it.
type session struct {
	space    *memspace.Space
	counter  *tracing.CountTracer
	recorder datarecording.DataRecorder
}

func newSession(cfg *config, name string, capacity int) (*session, error) {
	b := memspace.MakeBuilder().
		WithName(name).
		WithCapacity(capacity)

	if cfg.AutoDefrag {
		b = b.WithAutoDefrag()
	}

	if cfg.StrictFree {
		b = b.WithStrictFree()
	}

	space, err := b.Build()
	if err != nil {
		return nil, err
	}

	s := &session{
		space:   space,
		counter: tracing.NewCountTracer(),
	}

	tracing.CollectTrace(space, s.counter)

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if logger.Core().Enabled(zap.InfoLevel) {
		tracing.CollectTrace(space, tracing.NewLogTracer(logger))
	}

	if cfg.TraceDB != "" {
		s.recorder = datarecording.New(cfg.TraceDB)
		tracing.CollectTrace(space, tracing.NewDBTracer(s.recorder))
	}

	return s, nil
}

// summarize writes the event counts of the session.
func (s *session) summarize(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"%s: %d malloc, %d failed, %d free, %d missed, %d defrag; "+
			"%d words allocated, %d words freed\n",
		s.space.Name(),
		s.counter.Count(memspace.HookPosMalloc.Name),
		s.counter.Count(memspace.HookPosMallocFail.Name),
		s.counter.Count(memspace.HookPosFree.Name),
		s.counter.Count(memspace.HookPosFreeMiss.Name),
		s.counter.Count(memspace.HookPosDefrag.Name),
		s.counter.WordsAllocated(),
		s.counter.WordsFreed(),
	)

	return err
}

func (s *session) close() error {
	if s.recorder == nil {
		return nil
	}

	return s.recorder.Close()
}
