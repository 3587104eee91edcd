package memspace

import (
	"fmt"

	"github.com/sarchlab/memspace/hooking"
	"github.com/sarchlab/memspace/rangelist"
	"go.uber.org/zap"
)

// Builder can be used to build a memory space.
type Builder struct {
	name       string
	capacity   int
	autoDefrag bool
	strictFree bool
	hooks      []hooking.Hook
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		name: "MemorySpace",
	}
}

// WithName sets the name of the memory space.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithCapacity sets the number of words managed by the memory space.
func (b Builder) WithCapacity(capacity int) Builder {
	b.capacity = capacity
	return b
}

// WithAutoDefrag makes every successful Free call Defrag afterwards.
func (b Builder) WithAutoDefrag() Builder {
	b.autoDefrag = true
	return b
}

// WithStrictFree makes Free report ErrUnknownAddress instead of silently
// ignoring an address that is not allocated.
func (b Builder) WithStrictFree() Builder {
	b.strictFree = true
	return b
}

// WithHook registers a hook on the memory space as soon as it is built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.name == "" {
		panic("memory space name must not be empty")
	}
}

// Build builds the memory space. The free list starts as a single range
// covering [0, capacity).
func (b Builder) Build() (*Space, error) {
	b.parametersMustBeValid()

	if b.capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidArgument, b.capacity)
	}

	s := &Space{
		name:       b.name,
		capacity:   b.capacity,
		autoDefrag: b.autoDefrag,
		strictFree: b.strictFree,
		free:       rangelist.New(),
		allocated:  rangelist.New(),
	}

	mustAppend(s.free, rangelist.NewRange(0, b.capacity))

	for _, h := range b.hooks {
		s.AcceptHook(h)
	}

	Logger().Debug("memory space built",
		zap.String("space", s.name),
		zap.Int("capacity", s.capacity),
		zap.Bool("auto_defrag", s.autoDefrag),
		zap.Bool("strict_free", s.strictFree))

	return s, nil
}

// New builds a memory space of the given capacity with default parameters.
func New(capacity int) (*Space, error) {
	return MakeBuilder().WithCapacity(capacity).Build()
}
