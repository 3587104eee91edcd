package tracing

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sarchlab/memspace/memspace"
)

// LogTracer writes every record to a zap logger. Failed allocations and
// frees of unknown addresses are logged at Info, everything else at Debug.
type LogTracer struct {
	logger *zap.Logger
}

// NewLogTracer creates a LogTracer.
func NewLogTracer(logger *zap.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

func levelOf(what string) zapcore.Level {
	switch what {
	case memspace.HookPosMallocFail.Name, memspace.HookPosFreeMiss.Name:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Trace logs the record.
func (t *LogTracer) Trace(r Record) {
	ce := t.logger.Check(levelOf(r.What), r.What)
	if ce == nil {
		return
	}

	ce.Write(
		zap.String("id", r.ID),
		zap.Uint64("seq", r.Seq),
		zap.String("space", r.Space),
		zap.Int("address", r.Address),
		zap.Int("length", r.Length),
		zap.Int("merged", r.Merged),
		zap.Int("free_size", r.FreeSize),
		zap.Int("allocated_size", r.AllocatedSize),
		zap.Int("free_count", r.FreeCount),
	)
}
