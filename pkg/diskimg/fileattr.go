// file: pkg/diskimg/fileattr.go

package diskimg

// FileAttributes represents the OASIS protection flags of a file
type FileAttributes struct {
	ReadProtect   bool // R
	WriteProtect  bool // W
	DeleteProtect bool // D
}

// AttributesFromByte decodes the high bits of a format byte
func AttributesFromByte(b uint8) FileAttributes {
	return FileAttributes{
		ReadProtect:   b&AttrReadProtect != 0,
		WriteProtect:  b&AttrWriteProtect != 0,
		DeleteProtect: b&AttrDeleteProtect != 0,
	}
}

// Byte returns the attributes as format byte bits
func (fa FileAttributes) Byte() uint8 {
	var b uint8
	if fa.ReadProtect {
		b |= AttrReadProtect
	}
	if fa.WriteProtect {
		b |= AttrWriteProtect
	}
	if fa.DeleteProtect {
		b |= AttrDeleteProtect
	}
	return b
}

// String returns the attribute letters in R, W, D order
func (fa FileAttributes) String() string {
	s := ""
	if fa.ReadProtect {
		s += "R"
	}
	if fa.WriteProtect {
		s += "W"
	}
	if fa.DeleteProtect {
		s += "D"
	}
	return s
}

// attrFromLetter maps an attribute letter to its bit, or 0 if unknown
func attrFromLetter(c byte) uint8 {
	switch c {
	case 'R':
		return AttrReadProtect
	case 'W':
		return AttrWriteProtect
	case 'D':
		return AttrDeleteProtect
	}
	return 0
}

// formatLetters maps host filename format letters to format codes
var formatLetters = map[byte]uint8{
	'R': FormatRelocatable,
	'A': FormatAbsolute,
	'S': FormatSequential,
	'D': FormatDirect,
	'I': FormatIndexed,
	'K': FormatKeyed,
}

// formatLetter returns the host filename letter of a format code
func formatLetter(format uint8) (byte, bool) {
	for c, f := range formatLetters {
		if f == format {
			return c, true
		}
	}
	return 0, false
}

// FormatName returns the three-letter listing name of a format code
func FormatName(format uint8) string {
	switch format & FormatMask {
	case FormatSequential:
		return "SEQ"
	case FormatDirect:
		return "DIR"
	case FormatIndexed:
		return "IDX"
	case FormatKeyed:
		return "KEY"
	case FormatRelocatable:
		return "REL"
	case FormatAbsolute:
		return "ABS"
	}
	return "UNK"
}
