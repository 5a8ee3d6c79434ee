// file: pkg/diskimg/writer.go

package diskimg

import (
	"fmt"
	"math"

	"github.com/ha1tch/oasis/internal"
)

// WriteData allocates space for data, writes it and fills in the location
// and size fields of e. On failure every unit taken by this call is freed,
// the header free count is restored and e is left unchanged.
func WriteData(l *Layout, dev SectorDevice, e *DirectoryEntry, data []byte) (err error) {
	if l == nil || dev == nil || e == nil {
		return fmt.Errorf("write data: %w", ErrInvalidArgument)
	}
	if l.AllocMap == nil {
		return fmt.Errorf("write data: %w", ErrNoAllocationMap)
	}

	work := *e
	if len(data) == 0 {
		work.StartSector = 0
		work.BlockCount = 0
		work.RecordCount = 0
		if work.IsSequential() {
			work.FFD2 = 0
		}
		*e = work
		return nil
	}

	tx := l.beginUnits()
	defer func() {
		if err != nil {
			tx.rollback()
		}
	}()

	if work.IsSequential() {
		err = writeSequential(tx, dev, &work, data)
	} else {
		err = writeContiguous(tx, dev, &work, data)
	}
	if err != nil {
		return fmt.Errorf("write %s.%s: %w", work.FileName(), work.FileType(), err)
	}

	tx.commit()
	*e = work
	return nil
}

func writeContiguous(tx *unitTx, dev SectorDevice, e *DirectoryEntry, data []byte) error {
	blocks := internal.BlocksFor(len(data))
	if blocks > math.MaxUint16 || blocks > MaxFilesystemBlocks {
		return fmt.Errorf("%d blocks needed: %w", blocks, ErrFileTooLarge)
	}

	start, err := tx.allocate(blocks)
	if err != nil {
		return err
	}
	lba := internal.FirstSector(uint32(start))
	if lba > math.MaxUint16 {
		return fmt.Errorf("start sector %d: %w", lba, ErrOutOfRange)
	}

	buf := make([]byte, blocks*BlockSize)
	copy(buf, data)
	if err := writeFull(dev, lba, buf); err != nil {
		return err
	}

	e.StartSector = uint16(lba)
	e.BlockCount = uint16(blocks)
	return nil
}

func writeSequential(tx *unitTx, dev SectorDevice, e *DirectoryEntry, data []byte) error {
	e.StartSector = 0
	e.RecordCount = 0
	e.BlockCount = 0

	unit, usedInUnit := -1, 0
	var prev uint32
	sector := make([]byte, SectorSize)

	for len(data) > 0 {
		if unit < 0 || usedInUnit == SectorsPerBlock {
			if n := tx.units(); n >= math.MaxUint16 || n >= MaxFilesystemBlocks {
				return fmt.Errorf("%d blocks needed: %w", n+1, ErrFileTooLarge)
			}
			start, err := tx.allocate(1)
			if err != nil {
				return err
			}
			unit, usedInUnit = start, 0
		}

		lba := internal.FirstSector(uint32(unit)) + uint32(usedInUnit)
		if lba > math.MaxUint16 {
			return fmt.Errorf("sector %d: %w", lba, ErrOutOfRange)
		}
		usedInUnit++

		for i := range sector {
			sector[i] = 0
		}
		n := copy(sector[:SeqDataPerSector], data)
		putLink(sector, 0)
		if err := writeFull(dev, lba, sector); err != nil {
			return err
		}

		if prev != 0 {
			if err := linkSector(dev, prev, uint16(lba)); err != nil {
				return err
			}
		} else {
			e.StartSector = uint16(lba)
		}

		data = data[n:]
		e.FFD2 = uint16(lba)
		e.RecordCount++
		prev = lba
	}

	e.BlockCount = uint16(tx.units())
	return nil
}

// linkSector rewrites the link field of sector lba to point at next
func linkSector(dev SectorDevice, lba uint32, next uint16) error {
	buf := make([]byte, SectorSize)
	if err := readFull(dev, lba, buf); err != nil {
		return fmt.Errorf("re-read sector %d for link: %w", lba, err)
	}
	putLink(buf, next)
	return writeFull(dev, lba, buf)
}
