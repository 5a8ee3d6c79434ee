// file: pkg/sectorio/memory.go

package sectorio

// Memory is an in-memory disk image with the same sector semantics as Stream
type Memory struct {
	data     []byte
	ReadOnly bool
}

// NewMemory creates a zero-filled image of the given number of sectors
func NewMemory(sectors int) *Memory {
	return &Memory{data: make([]byte, sectors*SectorSize)}
}

// FromBytes creates an image from a copy of b, dropping any trailing partial sector
func FromBytes(b []byte) *Memory {
	n := len(b) / SectorSize * SectorSize
	data := make([]byte, n)
	copy(data, b[:n])
	return &Memory{data: data}
}

// Bytes returns the image contents
func (m *Memory) Bytes() []byte {
	return m.data
}

// TotalSectors returns the number of sectors in the image
func (m *Memory) TotalSectors() uint32 {
	if m == nil {
		return 0
	}
	return uint32(len(m.data) / SectorSize)
}

// ReadSectors reads whole sectors starting at lba, clamped to the image size
func (m *Memory) ReadSectors(lba uint32, buf []byte) (int, error) {
	if m == nil {
		return -1, ErrNotOpen
	}
	count, err := sectorCount(buf)
	if err != nil {
		return -1, err
	}
	total := m.TotalSectors()
	if count == 0 || lba >= total {
		return 0, nil
	}
	if avail := total - lba; count > avail {
		count = avail
	}
	off := int(lba) * SectorSize
	copy(buf, m.data[off:off+int(count)*SectorSize])
	return int(count), nil
}

// WriteSectors writes whole sectors starting at lba, growing the image if needed
func (m *Memory) WriteSectors(lba uint32, buf []byte) (int, error) {
	if m == nil {
		return -1, ErrNotOpen
	}
	if m.ReadOnly {
		return -1, ErrReadOnly
	}
	count, err := sectorCount(buf)
	if err != nil {
		return -1, err
	}
	if count == 0 {
		return 0, nil
	}
	end := (int(lba) + int(count)) * SectorSize
	if end > len(m.data) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[int(lba)*SectorSize:end], buf)
	return int(count), nil
}
