// file: pkg/diskimg/directory.go

package diskimg

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	NameLen          = 8
	TypeLen          = 8
	DirEntrySize     = 32
	EntriesPerSector = SectorSize / DirEntrySize
)

// File format codes held in the low five bits of the format byte
const (
	FormatEmpty       uint8 = 0x00
	FormatRelocatable uint8 = 0x01
	FormatAbsolute    uint8 = 0x02
	FormatSequential  uint8 = 0x04
	FormatDirect      uint8 = 0x08
	FormatIndexed     uint8 = 0x10
	FormatKeyed       uint8 = 0x18
	FormatDeleted     uint8 = 0xFF

	FormatMask uint8 = 0x1F
)

// Attribute flags held in the high three bits of the format byte
const (
	AttrReadProtect   uint8 = 0x20
	AttrWriteProtect  uint8 = 0x40
	AttrDeleteProtect uint8 = 0x80

	AttrMask uint8 = 0xE0
)

// DirectoryEntry is a directory entry block (DEB)
type DirectoryEntry struct {
	FileFormat  uint8
	Name        [NameLen]byte
	Type        [TypeLen]byte
	RecordCount uint16 // sectors in the chain for sequential files
	BlockCount  uint16 // 1K units occupied
	StartSector uint16
	FFD1        uint16 // record length, longest line, or key<<9|record length
	Timestamp   Timestamp
	OwnerID     uint8
	SharedFrom  uint8
	FFD2        uint16 // last sector, load address, or program length
}

// Format returns the file format code without attribute bits
func (e *DirectoryEntry) Format() uint8 {
	return e.FileFormat & FormatMask
}

// Attributes returns the protection bits
func (e *DirectoryEntry) Attributes() uint8 {
	return e.FileFormat & AttrMask
}

// IsSequential reports whether the file is stored as a sector chain
func (e *DirectoryEntry) IsSequential() bool {
	return e.Format() == FormatSequential
}

// IsValid reports whether the entry describes a live file of a known format
func (e *DirectoryEntry) IsValid() bool {
	if e == nil || e.FileFormat == FormatEmpty || e.FileFormat == FormatDeleted {
		return false
	}
	switch e.Format() {
	case FormatRelocatable, FormatAbsolute, FormatSequential,
		FormatDirect, FormatIndexed, FormatKeyed:
		return true
	}
	return false
}

// FileName returns the name with padding removed
func (e *DirectoryEntry) FileName() string {
	return trimField(e.Name[:])
}

// FileType returns the type with padding removed
func (e *DirectoryEntry) FileType() string {
	return trimField(e.Type[:])
}

// SetName stores name and type uppercased and space padded
func (e *DirectoryEntry) SetName(name, typ string) error {
	if len(name) > NameLen {
		return &ValidationError{Field: "Name", Message: fmt.Sprintf("%q longer than %d characters", name, NameLen), Err: ErrInvalidFilename}
	}
	if len(typ) > TypeLen {
		return &ValidationError{Field: "Type", Message: fmt.Sprintf("%q longer than %d characters", typ, TypeLen), Err: ErrInvalidFilename}
	}
	copy(e.Name[:], padField(strings.ToUpper(name), NameLen))
	copy(e.Type[:], padField(strings.ToUpper(typ), TypeLen))
	return nil
}

func padField(s string, n int) string {
	return s + strings.Repeat(" ", n-len(s))
}

// markDeleted turns the entry into a reusable deleted slot
func (e *DirectoryEntry) markDeleted() {
	*e = DirectoryEntry{FileFormat: FormatDeleted}
	copy(e.Name[:], padField("", NameLen))
	copy(e.Type[:], padField("", TypeLen))
}

// MarshalBinary encodes the entry in its 32-byte on-disk form
func (e *DirectoryEntry) MarshalBinary() ([]byte, error) {
	b := make([]byte, DirEntrySize)
	e.encode(b)
	return b, nil
}

// UnmarshalBinary decodes a 32-byte on-disk entry
func (e *DirectoryEntry) UnmarshalBinary(b []byte) error {
	if len(b) < DirEntrySize {
		return fmt.Errorf("directory entry needs %d bytes, got %d: %w", DirEntrySize, len(b), ErrInvalidArgument)
	}
	e.decode(b)
	return nil
}

func (e *DirectoryEntry) encode(b []byte) {
	b[0] = e.FileFormat
	copy(b[1:9], e.Name[:])
	copy(b[9:17], e.Type[:])
	binary.LittleEndian.PutUint16(b[17:], e.RecordCount)
	binary.LittleEndian.PutUint16(b[19:], e.BlockCount)
	binary.LittleEndian.PutUint16(b[21:], e.StartSector)
	binary.LittleEndian.PutUint16(b[23:], e.FFD1)
	copy(b[25:28], e.Timestamp[:])
	b[28] = e.OwnerID
	b[29] = e.SharedFrom
	binary.LittleEndian.PutUint16(b[30:], e.FFD2)
}

func (e *DirectoryEntry) decode(b []byte) {
	e.FileFormat = b[0]
	copy(e.Name[:], b[1:9])
	copy(e.Type[:], b[9:17])
	e.RecordCount = binary.LittleEndian.Uint16(b[17:])
	e.BlockCount = binary.LittleEndian.Uint16(b[19:])
	e.StartSector = binary.LittleEndian.Uint16(b[21:])
	e.FFD1 = binary.LittleEndian.Uint16(b[23:])
	copy(e.Timestamp[:], b[25:28])
	e.OwnerID = b[28]
	e.SharedFrom = b[29]
	e.FFD2 = binary.LittleEndian.Uint16(b[30:])
}
