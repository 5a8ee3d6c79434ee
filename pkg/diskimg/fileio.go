// file: pkg/diskimg/fileio.go

package diskimg

import (
	"encoding/binary"
	"fmt"
)

// maxChainSectors bounds chain walks that have no block count to check against
const maxChainSectors = 65535

// chainWalker follows the sector links of a sequential file. It fails once
// more than limit sectors have been visited.
type chainWalker struct {
	dev     SectorDevice
	link    uint16
	limit   int
	visited int
	buf     [SectorSize]byte
}

func newChainWalker(dev SectorDevice, start uint16, limit int) *chainWalker {
	return &chainWalker{dev: dev, link: start, limit: limit}
}

// next reads the next sector of the chain. It returns false when the
// previous sector's link was zero. On a read failure the sector that could
// not be read is still returned.
func (w *chainWalker) next() (uint16, bool, error) {
	if w.link == 0 {
		return 0, false, nil
	}
	w.visited++
	if w.visited > w.limit {
		return 0, false, fmt.Errorf("chain exceeds %d sectors: %w", w.limit, ErrCorruptChain)
	}

	lba := w.link
	if err := readFull(w.dev, uint32(lba), w.buf[:]); err != nil {
		return lba, false, err
	}
	w.link = binary.LittleEndian.Uint16(w.buf[SeqDataPerSector:])
	return lba, true, nil
}

// payload returns the data part of the sector last read
func (w *chainWalker) payload() []byte {
	return w.buf[:SeqDataPerSector]
}

// ended reports whether the sector last read terminated the chain
func (w *chainWalker) ended() bool {
	return w.link == 0
}

// chainUnits returns the distinct 1K units a sequential file's chain occupies,
// in the order they are first reached. A sector that cannot be read still
// counts toward its unit.
func chainUnits(dev SectorDevice, e *DirectoryEntry) ([]int, error) {
	seen := make(map[int]bool)
	var units []int

	w := newChainWalker(dev, e.StartSector, maxChainSectors)
	for {
		lba, ok, err := w.next()
		if lba != 0 {
			if u := int(lba) / SectorsPerBlock; !seen[u] {
				seen[u] = true
				units = append(units, u)
			}
		}
		if err != nil {
			return units, err
		}
		if !ok {
			return units, nil
		}
	}
}

// entryUnits returns every 1K unit an entry occupies
func entryUnits(dev SectorDevice, e *DirectoryEntry) ([]int, error) {
	if e.BlockCount == 0 || e.StartSector == 0 {
		return nil, nil
	}
	if e.IsSequential() {
		return chainUnits(dev, e)
	}
	first := int(e.StartSector) / SectorsPerBlock
	units := make([]int, e.BlockCount)
	for i := range units {
		units[i] = first + i
	}
	return units, nil
}

func putLink(sector []byte, link uint16) {
	binary.LittleEndian.PutUint16(sector[SeqDataPerSector:], link)
}
