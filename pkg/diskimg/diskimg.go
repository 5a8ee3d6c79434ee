// file: pkg/diskimg/diskimg.go

package diskimg

import (
	"encoding/binary"
	"fmt"

	"github.com/ha1tch/oasis/internal"
)

const (
	SectorSize       = internal.SectorSize
	SectorsPerBlock  = internal.SectorsPerBlock
	BlockSize        = internal.BlockSize
	SeqDataPerSector = SectorSize - 2 // payload of a chained sector; the link takes the rest

	MaxFilesystemBlocks     = 16384
	MaxMapBytes             = MaxFilesystemBlocks / 8
	FilesystemBlockSize     = 32
	MapBytesInSector1       = SectorSize - FilesystemBlockSize
	MaxAdditionalMapSectors = 7

	fsFlagsMapSectorsMask uint8 = 0x07
	FSFlagWriteProtect    uint8 = 0x80
)

// SectorDevice is the sector-addressed storage a volume lives on
type SectorDevice interface {
	ReadSectors(lba uint32, buf []byte) (int, error)
	WriteSectors(lba uint32, buf []byte) (int, error)
	TotalSectors() uint32
}

// FilesystemBlock is the volume header stored at the start of sector 1
type FilesystemBlock struct {
	Label           [NameLen]byte
	Timestamp       Timestamp
	BackupVolume    [NameLen]byte
	BackupTimestamp Timestamp
	Flags           uint8
	NumHeads        uint8 // heads in the high nibble, drive number in the low nibble
	NumCylinders    uint8
	NumSectors      uint8 // sectors per track
	DirSectorsMax   uint8
	Reserved        uint16
	FreeBlocks      uint16
	FSFlags         uint8 // bit 7 write protect, bits 2-0 additional map sectors
}

func (fb *FilesystemBlock) encode(b []byte) {
	copy(b[0:8], fb.Label[:])
	copy(b[8:11], fb.Timestamp[:])
	copy(b[11:19], fb.BackupVolume[:])
	copy(b[19:22], fb.BackupTimestamp[:])
	b[22] = fb.Flags
	b[23] = fb.NumHeads
	b[24] = fb.NumCylinders
	b[25] = fb.NumSectors
	b[26] = fb.DirSectorsMax
	binary.LittleEndian.PutUint16(b[27:], fb.Reserved)
	binary.LittleEndian.PutUint16(b[29:], fb.FreeBlocks)
	b[31] = fb.FSFlags
}

func (fb *FilesystemBlock) decode(b []byte) {
	copy(fb.Label[:], b[0:8])
	copy(fb.Timestamp[:], b[8:11])
	copy(fb.BackupVolume[:], b[11:19])
	copy(fb.BackupTimestamp[:], b[19:22])
	fb.Flags = b[22]
	fb.NumHeads = b[23]
	fb.NumCylinders = b[24]
	fb.NumSectors = b[25]
	fb.DirSectorsMax = b[26]
	fb.Reserved = binary.LittleEndian.Uint16(b[27:])
	fb.FreeBlocks = binary.LittleEndian.Uint16(b[29:])
	fb.FSFlags = b[31]
}

// LabelString returns the volume label without padding
func (fb *FilesystemBlock) LabelString() string {
	return trimField(fb.Label[:])
}

// Heads returns the number of heads
func (fb *FilesystemBlock) Heads() int {
	return int(fb.NumHeads >> 4)
}

// AdditionalMapSectors returns how many sectors after sector 1 hold the allocation map
func (fb *FilesystemBlock) AdditionalMapSectors() int {
	return int(fb.FSFlags & fsFlagsMapSectorsMask)
}

// WriteProtected reports whether the volume is marked write protected
func (fb *FilesystemBlock) WriteProtected() bool {
	return fb.FSFlags&FSFlagWriteProtect != 0
}

// TotalSectors returns the sector count implied by the geometry
func (fb *FilesystemBlock) TotalSectors() int {
	return internal.TotalSectors(fb.Heads(), int(fb.NumCylinders), int(fb.NumSectors))
}

// TotalBlocks returns the number of 1K units implied by the geometry
func (fb *FilesystemBlock) TotalBlocks() int {
	return fb.TotalSectors() / SectorsPerBlock
}

// Layout is an in-memory snapshot of a volume's metadata. It is loaded once,
// mutated in place and written back explicitly.
type Layout struct {
	Boot      [SectorSize]byte
	FSBlock   FilesystemBlock
	AllocMap  *AllocationMap
	Directory []DirectoryEntry
}

func readFull(dev SectorDevice, lba uint32, buf []byte) error {
	n, err := dev.ReadSectors(lba, buf)
	if err != nil {
		return fmt.Errorf("read sector %d: %w", lba, err)
	}
	if n != len(buf)/SectorSize {
		return fmt.Errorf("read sector %d: got %d of %d sectors: %w", lba, n, len(buf)/SectorSize, ErrShortRead)
	}
	return nil
}

func writeFull(dev SectorDevice, lba uint32, buf []byte) error {
	n, err := dev.WriteSectors(lba, buf)
	if err != nil {
		return fmt.Errorf("write sector %d: %w", lba, err)
	}
	if n != len(buf)/SectorSize {
		return fmt.Errorf("write sector %d: wrote %d of %d sectors: %w", lba, n, len(buf)/SectorSize, ErrShortWrite)
	}
	return nil
}

// Load reads the boot sector, volume header, allocation map and directory
func Load(dev SectorDevice) (*Layout, error) {
	if dev == nil {
		return nil, fmt.Errorf("load: %w", ErrInvalidArgument)
	}

	l := &Layout{}
	if err := readFull(dev, 0, l.Boot[:]); err != nil {
		return nil, fmt.Errorf("failed to read boot sector: %w", err)
	}

	sector := make([]byte, SectorSize)
	if err := readFull(dev, 1, sector); err != nil {
		return nil, fmt.Errorf("failed to read filesystem block: %w", err)
	}
	l.FSBlock.decode(sector)

	if err := l.validateHeader(); err != nil {
		return nil, err
	}

	extra := l.FSBlock.AdditionalMapSectors()
	mapData := make([]byte, MapBytesInSector1+extra*SectorSize)
	copy(mapData, sector[FilesystemBlockSize:])
	if extra > 0 {
		if err := readFull(dev, 2, mapData[MapBytesInSector1:]); err != nil {
			return nil, fmt.Errorf("failed to read allocation map: %w", err)
		}
	}
	l.AllocMap = NewAllocationMap(mapData)

	dirSectors := int(l.FSBlock.DirSectorsMax)
	l.Directory = make([]DirectoryEntry, dirSectors*EntriesPerSector)
	if dirSectors > 0 {
		raw := make([]byte, dirSectors*SectorSize)
		if err := readFull(dev, l.DirectoryStartSector(), raw); err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		for i := range l.Directory {
			l.Directory[i].decode(raw[i*DirEntrySize:])
		}
	}

	return l, nil
}

// Cleanup releases the map and directory. It is safe to call more than once.
func (l *Layout) Cleanup() {
	if l == nil {
		return
	}
	l.AllocMap = nil
	l.Directory = nil
}

// DirectoryStartSector returns the first directory sector
func (l *Layout) DirectoryStartSector() uint32 {
	return 2 + uint32(l.FSBlock.AdditionalMapSectors())
}

// WriteFilesystemBlock writes sector 1: the header and the first part of the map
func (l *Layout) WriteFilesystemBlock(dev SectorDevice) error {
	sector := make([]byte, SectorSize)
	l.FSBlock.encode(sector)
	copy(sector[FilesystemBlockSize:], l.AllocMap.Bytes())
	if err := writeFull(dev, 1, sector); err != nil {
		return fmt.Errorf("failed to write filesystem block: %w", err)
	}
	return nil
}

// WriteAllocationMap writes the map sectors that follow sector 1
func (l *Layout) WriteAllocationMap(dev SectorDevice) error {
	extra := l.FSBlock.AdditionalMapSectors()
	if extra == 0 {
		return nil
	}
	buf := make([]byte, extra*SectorSize)
	if data := l.AllocMap.Bytes(); len(data) > MapBytesInSector1 {
		copy(buf, data[MapBytesInSector1:])
	}
	if err := writeFull(dev, 2, buf); err != nil {
		return fmt.Errorf("failed to write allocation map: %w", err)
	}
	return nil
}

// WriteDirectory writes every directory sector
func (l *Layout) WriteDirectory(dev SectorDevice) error {
	if len(l.Directory) == 0 {
		return nil
	}
	sectors := (len(l.Directory) + EntriesPerSector - 1) / EntriesPerSector
	raw := make([]byte, sectors*SectorSize)
	for i := range l.Directory {
		l.Directory[i].encode(raw[i*DirEntrySize:])
	}
	if err := writeFull(dev, l.DirectoryStartSector(), raw); err != nil {
		return fmt.Errorf("failed to write directory: %w", err)
	}
	return nil
}

// Flush writes the header, allocation map and directory
func (l *Layout) Flush(dev SectorDevice) error {
	if err := l.WriteFilesystemBlock(dev); err != nil {
		return err
	}
	if err := l.WriteAllocationMap(dev); err != nil {
		return err
	}
	return l.WriteDirectory(dev)
}

// Info summarizes a volume
type Info struct {
	Label           string
	Timestamp       Timestamp
	BackupVolume    string
	BackupTimestamp Timestamp
	Flags           uint8
	Heads           int
	Drive           int
	Cylinders       int
	SectorsPerTrack int
	TotalSectors    int
	TotalBlocks     int
	DirSectors      int
	DirEntries      int
	FreeBlocks      int // from the header
	MapBytes        int
	MapMaxBlocks    int
	MapFreeBlocks   int // counted in the map
	LargestFreeRun  int
	ExtraMapSectors int
	WriteProtected  bool
}

// Info returns a summary of the header and the allocation map
func (l *Layout) Info() Info {
	fb := &l.FSBlock
	return Info{
		Label:           fb.LabelString(),
		Timestamp:       fb.Timestamp,
		BackupVolume:    trimField(fb.BackupVolume[:]),
		BackupTimestamp: fb.BackupTimestamp,
		Flags:           fb.Flags,
		Heads:           fb.Heads(),
		Drive:           int(fb.NumHeads & 0x0F),
		Cylinders:       int(fb.NumCylinders),
		SectorsPerTrack: int(fb.NumSectors),
		TotalSectors:    fb.TotalSectors(),
		TotalBlocks:     fb.TotalBlocks(),
		DirSectors:      int(fb.DirSectorsMax),
		DirEntries:      int(fb.DirSectorsMax) * EntriesPerSector,
		FreeBlocks:      int(fb.FreeBlocks),
		MapBytes:        len(l.AllocMap.Bytes()),
		MapMaxBlocks:    l.AllocMap.MaxBlocks(),
		MapFreeBlocks:   l.AllocMap.CountFree(),
		LargestFreeRun:  l.AllocMap.LargestFreeRun(),
		ExtraMapSectors: fb.AdditionalMapSectors(),
		WriteProtected:  fb.WriteProtected(),
	}
}
