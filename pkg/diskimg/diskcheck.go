// file: pkg/diskimg/diskcheck.go

package diskimg

import (
	"fmt"
	"sort"
)

// Problem is one inconsistency found by Check
type Problem struct {
	File    string // empty for volume-level problems
	Unit    int    // -1 when the problem is not about a single unit
	Message string
}

func (p Problem) String() string {
	switch {
	case p.File != "" && p.Unit >= 0:
		return fmt.Sprintf("%s: unit %d: %s", p.File, p.Unit, p.Message)
	case p.File != "":
		return fmt.Sprintf("%s: %s", p.File, p.Message)
	case p.Unit >= 0:
		return fmt.Sprintf("unit %d: %s", p.Unit, p.Message)
	}
	return p.Message
}

// CheckReport lists everything Check found
type CheckReport struct {
	FilesChecked int
	TotalBlocks  int
	MapFree      int
	HeaderFree   int
	Problems     []Problem
}

// OK reports whether no problems were found
func (r *CheckReport) OK() bool {
	return len(r.Problems) == 0
}

func (r *CheckReport) add(file string, unit int, format string, args ...interface{}) {
	r.Problems = append(r.Problems, Problem{File: file, Unit: unit, Message: fmt.Sprintf(format, args...)})
}

// systemUnits returns the units holding the boot sector, header, map and directory
func (l *Layout) systemUnits() map[int]bool {
	units := map[int]bool{0: true}
	for i := 0; i < l.FSBlock.AdditionalMapSectors(); i++ {
		units[(2+i)/SectorsPerBlock] = true
	}
	start := int(l.DirectoryStartSector())
	for i := 0; i < int(l.FSBlock.DirSectorsMax); i++ {
		units[(start+i)/SectorsPerBlock] = true
	}
	return units
}

// checkEntry verifies the fields of one entry that can be checked without
// the rest of the directory
func checkEntry(r *CheckReport, dev SectorDevice, e *DirectoryEntry, name string, total int) {
	if int(e.BlockCount) > total {
		r.add(name, -1, "block count %d exceeds %d blocks on the volume", e.BlockCount, total)
	}
	if e.BlockCount > 0 && int(e.StartSector)/SectorsPerBlock >= total {
		r.add(name, -1, "start sector %d is beyond the volume", e.StartSector)
	}
	if !e.IsSequential() || e.StartSector == 0 {
		return
	}

	w := newChainWalker(dev, e.StartSector, int(e.BlockCount)*SectorsPerBlock)
	sectors := 0
	var last uint16
	for {
		lba, ok, err := w.next()
		if err != nil {
			r.add(name, -1, "chain: %v", err)
			return
		}
		if !ok {
			break
		}
		sectors++
		last = lba
	}
	if last != e.FFD2 {
		r.add(name, -1, "chain ends at sector %d, entry records %d", last, e.FFD2)
	}
	if sectors != int(e.RecordCount) {
		r.add(name, -1, "chain has %d sectors, entry records %d", sectors, e.RecordCount)
	}
}

// Check compares the allocation map and header against what the directory
// actually uses. Only entries matching pattern get per-file checks; every
// valid entry counts toward unit ownership.
func (l *Layout) Check(dev SectorDevice, pattern string) (*CheckReport, error) {
	if l == nil || dev == nil {
		return nil, fmt.Errorf("check: %w", ErrInvalidArgument)
	}
	if l.AllocMap == nil {
		return nil, fmt.Errorf("check: %w", ErrNoAllocationMap)
	}

	total := l.FSBlock.TotalBlocks()
	if capacity := l.AllocMap.MaxBlocks(); total > capacity {
		total = capacity
	}
	r := &CheckReport{
		TotalBlocks: total,
		HeaderFree:  int(l.FSBlock.FreeBlocks),
	}
	for u := 0; u < total; u++ {
		if s, _ := l.AllocMap.BlockState(u); s == BlockFree {
			r.MapFree++
		}
	}

	owners := make(map[int][]string)
	for u := range l.systemUnits() {
		owners[u] = append(owners[u], "(system)")
	}

	selected := make(map[int]bool)
	for _, i := range l.Matching(pattern, AnyOwner) {
		selected[i] = true
	}

	for i := range l.Directory {
		e := &l.Directory[i]
		if !e.IsValid() {
			continue
		}
		name := entryLabel(e)
		if selected[i] {
			r.FilesChecked++
			checkEntry(r, dev, e, name, total)
		}

		units, err := entryUnits(dev, e)
		if err != nil && selected[i] && !e.IsSequential() {
			r.add(name, -1, "%v", err)
		}
		for _, u := range units {
			owners[u] = append(owners[u], name)
			if !selected[i] {
				continue
			}
			if u >= l.AllocMap.MaxBlocks() {
				r.add(name, u, "beyond the allocation map")
				continue
			}
			if s, _ := l.AllocMap.BlockState(u); s == BlockFree {
				r.add(name, u, "used by the file but free in the allocation map")
			}
		}
	}

	shared := make([]int, 0)
	for u, names := range owners {
		if len(names) > 1 {
			shared = append(shared, u)
		}
	}
	sort.Ints(shared)
	for _, u := range shared {
		r.add("", u, "claimed by %v", owners[u])
	}

	for u := 0; u < total; u++ {
		if s, _ := l.AllocMap.BlockState(u); s == BlockUsed && len(owners[u]) == 0 {
			r.add("", u, "marked used but not owned by any file")
		}
	}

	if r.HeaderFree != r.MapFree {
		r.add("", -1, "header records %d free blocks, allocation map has %d", r.HeaderFree, r.MapFree)
	}
	return r, nil
}
