// file: pkg/diskimg/allocation.go

package diskimg

import "fmt"

// BlockState is the allocation state of a 1K unit
type BlockState int

const (
	BlockFree BlockState = iota
	BlockUsed
)

// AllocationMap is the volume bitmap. Unit n is bit 7-n%8 of byte n/8.
type AllocationMap struct {
	data []byte
}

// NewAllocationMap wraps an existing bitmap
func NewAllocationMap(data []byte) *AllocationMap {
	return &AllocationMap{data: data}
}

// Bytes returns the raw bitmap
func (am *AllocationMap) Bytes() []byte {
	if am == nil {
		return nil
	}
	return am.data
}

// MaxBlocks returns the number of units the bitmap can describe
func (am *AllocationMap) MaxBlocks() int {
	if am == nil {
		return 0
	}
	return len(am.data) * 8
}

func bitPos(n int) (int, byte) {
	return n / 8, 0x80 >> uint(n%8)
}

func (am *AllocationMap) used(n int) bool {
	i, mask := bitPos(n)
	return am.data[i]&mask != 0
}

func (am *AllocationMap) set(n int, s BlockState) {
	i, mask := bitPos(n)
	if s == BlockUsed {
		am.data[i] |= mask
	} else {
		am.data[i] &^= mask
	}
}

func (am *AllocationMap) check(n int) error {
	if am == nil || len(am.data) == 0 {
		return ErrNoAllocationMap
	}
	if n < 0 || n >= am.MaxBlocks() {
		return fmt.Errorf("block %d: %w", n, ErrOutOfRange)
	}
	return nil
}

// BlockState returns the state of unit n
func (am *AllocationMap) BlockState(n int) (BlockState, error) {
	if err := am.check(n); err != nil {
		return BlockFree, err
	}
	if am.used(n) {
		return BlockUsed, nil
	}
	return BlockFree, nil
}

// SetBlockState sets the state of unit n
func (am *AllocationMap) SetBlockState(n int, s BlockState) error {
	if err := am.check(n); err != nil {
		return err
	}
	am.set(n, s)
	return nil
}

// forEachFreeRun calls fn for every maximal run of free units in ascending order
func (am *AllocationMap) forEachFreeRun(fn func(start, length int) bool) {
	total := am.MaxBlocks()
	for i := 0; i < total; {
		if am.used(i) {
			i++
			continue
		}
		start := i
		for i < total && !am.used(i) {
			i++
		}
		if !fn(start, i-start) {
			return
		}
	}
}

// LargestFreeRun returns the length of the longest run of free units
func (am *AllocationMap) LargestFreeRun() int {
	largest := 0
	am.forEachFreeRun(func(_, length int) bool {
		if length > largest {
			largest = length
		}
		return true
	})
	return largest
}

// CountFree returns the number of free units
func (am *AllocationMap) CountFree() int {
	free := 0
	am.forEachFreeRun(func(_, length int) bool {
		free += length
		return true
	})
	return free
}

// Allocate finds the smallest free run of at least n units, marks the first
// n of them used and returns the first unit. Equal-sized runs resolve to the
// lowest start.
func (am *AllocationMap) Allocate(n int) (int, error) {
	if am == nil || len(am.data) == 0 {
		return -1, ErrNoAllocationMap
	}
	if n <= 0 || n > am.MaxBlocks() {
		return -1, fmt.Errorf("allocate %d blocks: %w", n, ErrInvalidArgument)
	}

	best, bestLen := -1, 0
	am.forEachFreeRun(func(start, length int) bool {
		if length >= n && (best < 0 || length < bestLen) {
			best, bestLen = start, length
		}
		return bestLen != n
	})
	if best < 0 {
		return -1, fmt.Errorf("allocate %d blocks: %w", n, ErrNoSpace)
	}

	for i := best; i < best+n; i++ {
		am.set(i, BlockUsed)
	}
	return best, nil
}

// Deallocate frees n units starting at start. Every unit in the range must
// be in use, otherwise the map is left untouched.
func (am *AllocationMap) Deallocate(start, n int) error {
	if am == nil || len(am.data) == 0 {
		return ErrNoAllocationMap
	}
	if n <= 0 {
		return fmt.Errorf("deallocate %d blocks: %w", n, ErrInvalidArgument)
	}
	if start < 0 || start+n > am.MaxBlocks() || start+n < start {
		return fmt.Errorf("deallocate %d+%d: %w", start, n, ErrOutOfRange)
	}

	for i := start; i < start+n; i++ {
		if !am.used(i) {
			return fmt.Errorf("deallocate block %d: %w", i, ErrDoubleFree)
		}
	}
	for i := start; i < start+n; i++ {
		am.set(i, BlockFree)
	}
	return nil
}
