// file: pkg/diskimg/filename.go

package diskimg

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxHostFilenameLen bounds rendered host filenames
const MaxHostFilenameLen = 64

// HostFilename renders the entry as NAME.TYPE_<format><attrs>[_<p1>[_<p2>]]
func (e *DirectoryEntry) HostFilename() (string, error) {
	return e.HostFilenameBuf(MaxHostFilenameLen)
}

// HostFilenameBuf renders the host filename, failing if it would not fit in
// a buffer of capacity bytes including a terminator.
func (e *DirectoryEntry) HostFilenameBuf(capacity int) (string, error) {
	if !e.IsValid() {
		return "", fmt.Errorf("render filename: %w", ErrFileNotFound)
	}

	attrs := AttributesFromByte(e.FileFormat).String()
	var suffix string

	switch f := e.Format(); f {
	case FormatSequential:
		if e.FFD1 > 0 || attrs != "" {
			suffix = fmt.Sprintf("_S%s_%d", attrs, e.FFD1)
		} else {
			suffix = "_S"
		}
	case FormatDirect, FormatRelocatable:
		c, _ := formatLetter(f)
		suffix = fmt.Sprintf("_%c%s_%d", c, attrs, e.FFD1)
	case FormatAbsolute:
		suffix = fmt.Sprintf("_A%s_%d_%04X", attrs, e.FFD1, e.FFD2)
	case FormatIndexed, FormatKeyed:
		c, _ := formatLetter(f)
		suffix = fmt.Sprintf("_%c%s_%d_%d", c, attrs, e.FFD1&0x1FF, e.FFD1>>9&0x7F)
	}

	name := strings.TrimSpace(trimField(e.Name[:]))
	if typ := strings.TrimSpace(trimField(e.Type[:])); typ != "" {
		name += "." + typ
	}
	name += suffix
	if len(name) >= capacity {
		return "", fmt.Errorf("render %q into %d bytes: %w", name, capacity, ErrBufferTooSmall)
	}
	return name, nil
}

func filenameError(host, msg string) error {
	return &ValidationError{Field: "HostFilename", Message: fmt.Sprintf("%s in %q", msg, host), Err: ErrInvalidFilename}
}

// ParseHostFilename decodes a host filename into a directory entry. Only the
// name, type, format and format parameters are set; location and size are
// left zero for the caller.
func ParseHostFilename(host string) (DirectoryEntry, error) {
	var e DirectoryEntry
	if host == "." {
		return e, filenameError(host, "missing name")
	}

	s := strings.ToUpper(host)
	dot := strings.IndexByte(s, '.')
	meta := strings.IndexByte(s, '_')

	var name, typ string
	switch {
	case dot >= 0 && (meta < 0 || dot < meta):
		name = s[:dot]
	case meta >= 0:
		name = s[:meta]
	default:
		name = s
	}
	if len(name) > NameLen {
		return e, filenameError(host, "name longer than 8 characters")
	}

	if dot >= 0 {
		end := len(s)
		if meta > dot {
			end = meta
		}
		typ = s[dot+1 : end]
		if len(typ) > TypeLen {
			return e, filenameError(host, "type longer than 8 characters")
		}
	}

	if err := e.SetName(name, typ); err != nil {
		return e, err
	}

	if meta < 0 || meta+1 == len(s) {
		e.FileFormat = FormatSequential
		return e, nil
	}

	rest := s[meta+1:]
	formatChar := rest[0]
	rest = rest[1:]

	var attrs uint8
	for len(rest) > 0 && rest[0] != '_' {
		bit := attrFromLetter(rest[0])
		if bit == 0 {
			return e, filenameError(host, fmt.Sprintf("invalid attribute %q", rest[0]))
		}
		attrs |= bit
		rest = rest[1:]
	}
	rest = strings.TrimPrefix(rest, "_")

	format, ok := formatLetters[formatChar]
	if !ok {
		return e, filenameError(host, fmt.Sprintf("unknown format %q", formatChar))
	}

	switch format {
	case FormatSequential:
		if rest != "" {
			v, err := parseDecimal(rest)
			if err != nil {
				return e, filenameError(host, "invalid record length")
			}
			e.FFD1 = v
		}
	case FormatDirect:
		v, err := parseDecimal(rest)
		if err != nil || v == 0 {
			return e, filenameError(host, "missing or invalid record length")
		}
		e.FFD1 = v
	case FormatRelocatable:
		v, err := parseDecimal(rest)
		if err != nil {
			return e, filenameError(host, "missing or invalid record length")
		}
		e.FFD1 = v
	case FormatAbsolute:
		rec, addr, ok := strings.Cut(rest, "_")
		v1, err1 := parseDecimal(rec)
		v2, err2 := strconv.ParseUint(addr, 16, 16)
		if !ok || err1 != nil || err2 != nil {
			return e, filenameError(host, "missing or invalid record length or load address")
		}
		e.FFD1, e.FFD2 = v1, uint16(v2)
	case FormatIndexed, FormatKeyed:
		rec, key, ok := strings.Cut(rest, "_")
		v1, err1 := parseDecimal(rec)
		v2, err2 := parseDecimal(key)
		if !ok || err1 != nil || err2 != nil {
			return e, filenameError(host, "missing or invalid record or key length")
		}
		if v1 > 0x1FF || v2 > 0x7F {
			return e, filenameError(host, "record length (max 511) or key length (max 127) out of range")
		}
		e.FFD1 = v2<<9 | v1
	}

	e.FileFormat = format | attrs
	return e, nil
}

func parseDecimal(s string) (uint16, error) {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, ErrInvalidFilename
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
