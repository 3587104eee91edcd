package memspace

import (
	"fmt"
	"sort"

	"github.com/sarchlab/memspace/rangelist"
)

// CheckInvariants verifies that the free and allocated ranges are all
// non-empty, lie inside [0, capacity), never overlap, and together add up
// to the capacity.
func (s *Space) CheckInvariants() error {
	all := make([]rangelist.Range, 0, s.free.Size()+s.allocated.Size())
	all = append(all, s.FreeRanges()...)
	all = append(all, s.AllocatedRanges()...)

	total := 0
	for i := range all {
		r := &all[i]

		if r.Length <= 0 {
			return fmt.Errorf("%w: range %s has no length", ErrCorrupted, r)
		}

		if r.Base < 0 || r.End() > s.capacity {
			return fmt.Errorf("%w: range %s outside [0,%d)",
				ErrCorrupted, r, s.capacity)
		}

		total += r.Length
	}

	if total != s.capacity {
		return fmt.Errorf("%w: ranges cover %d words, capacity is %d",
			ErrCorrupted, total, s.capacity)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Base < all[j].Base })

	for i := 1; i < len(all); i++ {
		if all[i-1].Overlaps(&all[i]) {
			return fmt.Errorf("%w: ranges %s and %s overlap",
				ErrCorrupted, &all[i-1], &all[i])
		}
	}

	return nil
}
