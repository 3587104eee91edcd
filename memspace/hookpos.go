package memspace

import "github.com/sarchlab/memspace/hooking"

// HookPosMalloc marks a successful allocation.
var HookPosMalloc = &hooking.HookPos{Name: "Malloc"}

// HookPosMallocFail marks an allocation that found no fitting free range.
var HookPosMallocFail = &hooking.HookPos{Name: "MallocFail"}

// HookPosFree marks a range moving back to the free list.
var HookPosFree = &hooking.HookPos{Name: "Free"}

// HookPosFreeMiss marks a Free call whose address matched no allocated
// range.
var HookPosFreeMiss = &hooking.HookPos{Name: "FreeMiss"}

// HookPosDefrag marks the end of a defragmentation pass.
var HookPosDefrag = &hooking.HookPos{Name: "Defrag"}

// Event is the Item of every memspace hook context.
type Event struct {
	// Address is the base address involved, or NoAddress.
	Address int

	// Length is the requested or freed length. For defrag it is the
	// total free length.
	Length int

	// Merged is the number of free ranges absorbed by a defrag pass.
	Merged int
}

// Stats is the Detail of every memspace hook context. It describes the space
// right after the operation.
type Stats struct {
	FreeSize       int
	AllocatedSize  int
	FreeCount      int
	AllocatedCount int
}
