// file: pkg/diskimg/initdisk.go

package diskimg

import (
	"fmt"
	"strings"
	"time"

	"github.com/ha1tch/oasis/internal"
)

// formatPattern fills every sector of a freshly formatted image
const formatPattern = 0xE5

// InitOptions describes a new volume
type InitOptions struct {
	Label           string
	Heads           int
	Cylinders       int
	SectorsPerTrack int
	DirEntries      int
	WriteProtect    bool
	Format          bool      // fill every sector with 0xE5 before building the filesystem
	Now             time.Time // volume timestamp; zero means the current time
}

// DefaultInitOptions returns the geometry of a single-sided 8" floppy
func DefaultInitOptions() *InitOptions {
	return &InitOptions{
		Heads:           1,
		Cylinders:       77,
		SectorsPerTrack: 13,
		DirEntries:      32,
	}
}

// mapSectorsFor returns the additional map sectors a volume of blocks units needs
func mapSectorsFor(blocks int) (int, error) {
	need := (blocks + 7) / 8
	if need <= MapBytesInSector1 {
		return 0, nil
	}
	extra := (need - MapBytesInSector1 + SectorSize - 1) / SectorSize
	if extra > MaxAdditionalMapSectors {
		return 0, fmt.Errorf("%d blocks need %d additional map sectors: %w", blocks, extra, ErrInvalidLayout)
	}
	return extra, nil
}

// reserveSystemUnits clears the map, then marks the units holding the header,
// map and directory as used along with every bit past the last unit. It
// returns the number of free units on the volume.
func (l *Layout) reserveSystemUnits() int {
	data := l.AllocMap.Bytes()
	for i := range data {
		data[i] = 0
	}

	total := l.FSBlock.TotalBlocks()
	mark := func(unit int) {
		if unit < total {
			_ = l.AllocMap.SetBlockState(unit, BlockUsed)
		}
	}

	mark(0)
	for i := 0; i < l.FSBlock.AdditionalMapSectors(); i++ {
		mark(int(internal.BlockOf(uint32(2 + i))))
	}
	start := l.DirectoryStartSector()
	for i := 0; i < int(l.FSBlock.DirSectorsMax); i++ {
		mark(int(internal.BlockOf(start + uint32(i))))
	}
	for u := total; u < l.AllocMap.MaxBlocks(); u++ {
		_ = l.AllocMap.SetBlockState(u, BlockUsed)
	}

	return l.AllocMap.CountFree()
}

func labelField(label string) [NameLen]byte {
	var b [NameLen]byte
	copy(b[:], padField(strings.ToUpper(label), NameLen))
	return b
}

// Initialize builds an empty filesystem on dev and returns its layout
func Initialize(dev SectorDevice, opts *InitOptions) (*Layout, error) {
	if dev == nil {
		return nil, fmt.Errorf("initialize: %w", ErrInvalidArgument)
	}
	if opts == nil {
		opts = DefaultInitOptions()
	}
	if err := validateGeometry(opts); err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	dirSectors := (opts.DirEntries + EntriesPerSector - 1) / EntriesPerSector
	if dirSectors > 255 {
		dirSectors = 255
	}

	l := &Layout{}
	fb := &l.FSBlock
	fb.Label = labelField(opts.Label)
	fb.Timestamp = EncodeTimestamp(now)
	fb.NumHeads = uint8(opts.Heads << 4)
	fb.NumCylinders = uint8(opts.Cylinders)
	fb.NumSectors = uint8(opts.SectorsPerTrack)
	fb.DirSectorsMax = uint8(dirSectors)

	total := fb.TotalBlocks()
	if total == 0 {
		return nil, fmt.Errorf("initialize: geometry holds no whole blocks: %w", ErrInvalidArgument)
	}
	if total > MaxFilesystemBlocks {
		return nil, fmt.Errorf("initialize: %d blocks exceeds %d: %w", total, MaxFilesystemBlocks, ErrInvalidLayout)
	}

	extra, err := mapSectorsFor(total)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	fb.FSFlags = uint8(extra)
	if opts.WriteProtect {
		fb.FSFlags |= FSFlagWriteProtect
	}

	if int(l.DirectoryStartSector())+dirSectors > fb.TotalSectors() {
		return nil, fmt.Errorf("initialize: directory does not fit on the volume: %w", ErrInvalidArgument)
	}

	l.AllocMap = NewAllocationMap(make([]byte, MapBytesInSector1+extra*SectorSize))
	fb.FreeBlocks = uint16(l.reserveSystemUnits())
	l.Directory = make([]DirectoryEntry, dirSectors*EntriesPerSector)

	if opts.Format {
		if err := formatSectors(dev, fb.TotalSectors()); err != nil {
			return nil, fmt.Errorf("initialize: %w", err)
		}
	}

	if err := writeFull(dev, 0, l.Boot[:]); err != nil {
		return nil, fmt.Errorf("failed to write boot sector: %w", err)
	}
	if err := l.Flush(dev); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return l, nil
}

// formatSectors fills sectors 0..n-1 with the format pattern one track-sized
// run at a time
func formatSectors(dev SectorDevice, n int) error {
	const run = 32
	buf := make([]byte, run*SectorSize)
	for i := range buf {
		buf[i] = formatPattern
	}
	for lba := 0; lba < n; lba += run {
		count := run
		if lba+count > n {
			count = n - lba
		}
		if err := writeFull(dev, uint32(lba), buf[:count*SectorSize]); err != nil {
			return fmt.Errorf("format: %w", err)
		}
	}
	return nil
}

// Clear empties the directory and releases every file's units, keeping the
// geometry and label. The result is written to dev.
func (l *Layout) Clear(dev SectorDevice) error {
	if l == nil || dev == nil || l.AllocMap == nil {
		return fmt.Errorf("clear: %w", ErrInvalidArgument)
	}
	l.FSBlock.FreeBlocks = uint16(l.reserveSystemUnits())
	for i := range l.Directory {
		l.Directory[i] = DirectoryEntry{}
	}
	if err := l.Flush(dev); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// SetLabel changes the volume label and stamps the header with now
func (l *Layout) SetLabel(dev SectorDevice, label string, now time.Time) error {
	if l == nil || dev == nil {
		return fmt.Errorf("set label: %w", ErrInvalidArgument)
	}
	if len(label) > NameLen {
		return &ValidationError{Field: "Label", Message: fmt.Sprintf("%q longer than %d characters", label, NameLen), Err: ErrInvalidArgument}
	}
	l.FSBlock.Label = labelField(label)
	l.FSBlock.Timestamp = EncodeTimestamp(now)
	return l.WriteFilesystemBlock(dev)
}

// SetWriteProtect sets or clears the volume write-protect flag
func (l *Layout) SetWriteProtect(dev SectorDevice, on bool) error {
	if l == nil || dev == nil {
		return fmt.Errorf("set write protect: %w", ErrInvalidArgument)
	}
	if on {
		l.FSBlock.FSFlags |= FSFlagWriteProtect
	} else {
		l.FSBlock.FSFlags &^= FSFlagWriteProtect
	}
	return l.WriteFilesystemBlock(dev)
}
