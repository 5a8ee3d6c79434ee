// file: pkg/sectorio/sectorio.go

// Package sectorio provides sector-addressed access to raw OASIS disk images.
package sectorio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// SectorSize is the size in bytes of every sector on an OASIS volume
const SectorSize = 256

// Mode selects how an image is opened
type Mode int

const (
	// ReadOnly opens an existing image for reading
	ReadOnly Mode = iota
	// ReadWrite opens an existing image for reading and writing
	ReadWrite
)

var (
	ErrNotOpen     = errors.New("sector stream is not open")
	ErrReadOnly    = errors.New("sector stream is read-only")
	ErrShortBuffer = errors.New("buffer is not a whole number of sectors")
	ErrOutOfRange  = errors.New("sector address out of range")
)

// Stream is an open raw disk image
type Stream struct {
	path         string
	file         *os.File
	mode         Mode
	totalSectors uint32
}

// Open opens an existing raw image
func Open(path string, mode Mode) (*Stream, error) {
	flag := os.O_RDONLY
	if mode == ReadWrite {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	return &Stream{
		path:         path,
		file:         f,
		mode:         mode,
		totalSectors: uint32(info.Size() / SectorSize),
	}, nil
}

// Create creates a new empty raw image, truncating any existing file
func Create(path string) (*Stream, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}
	return &Stream{path: path, file: f, mode: ReadWrite}, nil
}

// Path returns the host path of the image
func (s *Stream) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close releases the underlying file. Closing twice is a no-op.
func (s *Stream) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.totalSectors = 0
	return err
}

// TotalSectors returns the number of whole sectors in the image
func (s *Stream) TotalSectors() uint32 {
	if s == nil {
		return 0
	}
	return s.totalSectors
}

func sectorCount(buf []byte) (uint32, error) {
	if len(buf)%SectorSize != 0 {
		return 0, ErrShortBuffer
	}
	return uint32(len(buf) / SectorSize), nil
}

// ReadSectors reads len(buf)/SectorSize sectors starting at lba.
// The read is clamped to the end of the image and never returns a partial sector.
func (s *Stream) ReadSectors(lba uint32, buf []byte) (int, error) {
	if s == nil || s.file == nil {
		return -1, ErrNotOpen
	}
	count, err := sectorCount(buf)
	if err != nil {
		return -1, err
	}
	if count == 0 || lba >= s.totalSectors {
		return 0, nil
	}
	if avail := s.totalSectors - lba; count > avail {
		count = avail
	}

	n, err := s.file.ReadAt(buf[:count*SectorSize], int64(lba)*SectorSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return -1, fmt.Errorf("read sector %d: %w", lba, err)
	}
	return n / SectorSize, nil
}

// WriteSectors writes len(buf)/SectorSize sectors starting at lba, growing
// the image if needed. On failure the previous contents of the range and
// the previous image size are restored and -1 is returned.
func (s *Stream) WriteSectors(lba uint32, buf []byte) (int, error) {
	if s == nil || s.file == nil {
		return -1, ErrNotOpen
	}
	if s.mode != ReadWrite {
		return -1, ErrReadOnly
	}
	count, err := sectorCount(buf)
	if err != nil {
		return -1, err
	}
	if count == 0 {
		return 0, nil
	}
	if uint64(lba)+uint64(count) > math.MaxUint32 {
		return -1, ErrOutOfRange
	}

	off := int64(lba) * SectorSize
	oldSize := int64(s.totalSectors) * SectorSize

	var saved []byte
	if off < oldSize {
		saved = make([]byte, min64(int64(len(buf)), oldSize-off))
		if _, err := s.file.ReadAt(saved, off); err != nil && !errors.Is(err, io.EOF) {
			return -1, fmt.Errorf("read sector %d before write: %w", lba, err)
		}
	}

	if _, err := s.file.WriteAt(buf, off); err != nil {
		s.restore(off, saved, oldSize)
		return -1, fmt.Errorf("write sector %d: %w", lba, err)
	}
	if err := s.file.Sync(); err != nil {
		s.restore(off, saved, oldSize)
		return -1, fmt.Errorf("flush sector %d: %w", lba, err)
	}

	if end := lba + count; end > s.totalSectors {
		s.totalSectors = end
	}
	return int(count), nil
}

func (s *Stream) restore(off int64, saved []byte, oldSize int64) {
	if len(saved) > 0 {
		s.file.WriteAt(saved, off)
	}
	if info, err := s.file.Stat(); err == nil && info.Size() > oldSize {
		s.file.Truncate(oldSize)
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
