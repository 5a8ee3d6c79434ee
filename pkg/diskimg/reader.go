// file: pkg/diskimg/reader.go

package diskimg

import "fmt"

// ReadSequential copies the payload of a sequential file's chain into out
// and returns the number of bytes copied. The walk fails with ErrCorruptChain
// if the chain is longer than BlockCount*4 sectors, or if it ends on a sector
// other than the one recorded in FFD2.
func ReadSequential(dev SectorDevice, e *DirectoryEntry, out []byte) (int, error) {
	if dev == nil || e == nil {
		return -1, fmt.Errorf("read sequential: %w", ErrInvalidArgument)
	}
	if !e.IsSequential() {
		return -1, fmt.Errorf("read sequential: format %#02x: %w", e.FileFormat, ErrInvalidArgument)
	}
	if e.StartSector == 0 {
		return 0, nil
	}

	w := newChainWalker(dev, e.StartSector, int(e.BlockCount)*SectorsPerBlock)
	total := 0
	var last uint16

	for {
		lba, ok, err := w.next()
		if err != nil {
			return -1, fmt.Errorf("read %s.%s: %w", e.FileName(), e.FileType(), err)
		}
		if !ok {
			break
		}
		last = lba

		remaining := len(out) - total
		total += copy(out[total:], w.payload())
		if remaining <= SeqDataPerSector {
			break
		}
	}

	if w.ended() && last != e.FFD2 {
		return -1, fmt.Errorf("read %s.%s: chain ends at sector %d, entry records %d: %w",
			e.FileName(), e.FileType(), last, e.FFD2, ErrCorruptChain)
	}
	return total, nil
}

// logicalSize returns the meaningful length of a contiguous file
func logicalSize(e *DirectoryEntry, extent int) int {
	var size int
	switch e.Format() {
	case FormatDirect:
		size = int(e.RecordCount) * int(e.FFD1)
	case FormatIndexed, FormatKeyed:
		size = int(e.RecordCount) * int(e.FFD1&0x1FF)
	case FormatRelocatable:
		size = int(e.FFD2)
	default:
		size = extent
	}
	if size == 0 || size > extent {
		return extent
	}
	return size
}

// ReadData returns the content of a file. Deleted, empty and zero-block
// entries read as empty. Sequential files are returned up to the end of the
// data in their final sector; contiguous files are trimmed to the size their
// format parameters describe.
func ReadData(dev SectorDevice, e *DirectoryEntry) ([]byte, error) {
	if dev == nil || e == nil {
		return nil, fmt.Errorf("read data: %w", ErrInvalidArgument)
	}
	if !e.IsValid() || e.BlockCount == 0 {
		return []byte{}, nil
	}

	if e.IsSequential() {
		buf := make([]byte, int(e.BlockCount)*BlockSize)
		n, err := ReadSequential(dev, e, buf)
		if err != nil {
			return nil, err
		}
		return trimFinalSector(buf[:n]), nil
	}

	buf := make([]byte, int(e.BlockCount)*BlockSize)
	if err := readFull(dev, uint32(e.StartSector), buf); err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", e.FileName(), e.FileType(), err)
	}
	return buf[:logicalSize(e, len(buf))], nil
}

// trimFinalSector drops the zero padding written after the last byte of a
// sequential file. Only the final sector's payload is examined.
func trimFinalSector(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	floor := (len(data) - 1) / SeqDataPerSector * SeqDataPerSector
	end := len(data)
	for end > floor && data[end-1] == 0 {
		end--
	}
	return data[:end]
}
