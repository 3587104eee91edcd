package memspace

import "github.com/sarchlab/memspace/rangelist"

// State is a point-in-time snapshot of a memory space. It holds copies, so
// it stays valid after the space changes.
type State struct {
	Name          string            `json:"name"`
	Capacity      int               `json:"capacity"`
	AutoDefrag    bool              `json:"auto_defrag"`
	StrictFree    bool              `json:"strict_free"`
	Free          []rangelist.Range `json:"free"`
	Allocated     []rangelist.Range `json:"allocated"`
	FreeSize      int               `json:"free_size"`
	AllocatedSize int               `json:"allocated_size"`
	LargestFree   int               `json:"largest_free"`
	Fragmentation float64           `json:"fragmentation"`
}

// State takes a snapshot of the memory space.
func (s *Space) State() State {
	return State{
		Name:          s.name,
		Capacity:      s.capacity,
		AutoDefrag:    s.autoDefrag,
		StrictFree:    s.strictFree,
		Free:          s.FreeRanges(),
		Allocated:     s.AllocatedRanges(),
		FreeSize:      s.FreeSize(),
		AllocatedSize: s.AllocatedSize(),
		LargestFree:   s.LargestFree(),
		Fragmentation: s.Fragmentation(),
	}
}
