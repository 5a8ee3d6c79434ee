// file: pkg/diskimg/filealloc.go

package diskimg

type unitRun struct {
	start, n int
}

// unitTx records the units allocated during one write so that every failure
// exit can return them, together with the header free count.
type unitTx struct {
	layout    *Layout
	runs      []unitRun
	savedFree uint16
	committed bool
}

func (l *Layout) beginUnits() *unitTx {
	return &unitTx{layout: l, savedFree: l.FSBlock.FreeBlocks}
}

// allocate takes n contiguous units from the map and charges them to the header
func (tx *unitTx) allocate(n int) (int, error) {
	start, err := tx.layout.AllocMap.Allocate(n)
	if err != nil {
		return -1, err
	}
	tx.runs = append(tx.runs, unitRun{start, n})

	fb := &tx.layout.FSBlock
	if int(fb.FreeBlocks) >= n {
		fb.FreeBlocks -= uint16(n)
	} else {
		fb.FreeBlocks = 0
	}
	return start, nil
}

// units returns how many units have been allocated so far
func (tx *unitTx) units() int {
	total := 0
	for _, r := range tx.runs {
		total += r.n
	}
	return total
}

func (tx *unitTx) commit() {
	tx.committed = true
}

// rollback frees everything allocated since beginUnits unless commit was called
func (tx *unitTx) rollback() {
	if tx.committed {
		return
	}
	for i := len(tx.runs) - 1; i >= 0; i-- {
		tx.layout.AllocMap.Deallocate(tx.runs[i].start, tx.runs[i].n)
	}
	tx.runs = nil
	tx.layout.FSBlock.FreeBlocks = tx.savedFree
}
