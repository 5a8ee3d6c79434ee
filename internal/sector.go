// file: internal/sector.go

package internal

const (
	SectorSize      = 256
	SectorsPerBlock = 4
	BlockSize       = SectorSize * SectorsPerBlock
)

// TotalSectors returns the number of sectors described by a geometry, or 0 if any dimension is zero.
func TotalSectors(heads, cylinders, sectorsPerTrack int) int {
	if heads <= 0 || cylinders <= 0 || sectorsPerTrack <= 0 {
		return 0
	}
	return heads * cylinders * sectorsPerTrack
}

// BlockOf returns the 1K allocation unit that holds the given sector.
func BlockOf(lba uint32) uint32 {
	return lba / SectorsPerBlock
}

// FirstSector returns the first sector of a 1K allocation unit.
func FirstSector(block uint32) uint32 {
	return block * SectorsPerBlock
}

// BlocksFor returns the number of 1K units needed to hold n bytes.
func BlocksFor(n int) int {
	return (n + BlockSize - 1) / BlockSize
}
