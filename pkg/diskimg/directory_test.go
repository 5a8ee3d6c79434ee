// file: pkg/diskimg/directory_test.go

package diskimg

import (
	"errors"
	"testing"
	"time"
)

func TestDirectoryEntryLayout(t *testing.T) {
	e := newEntry(t, "ABSPROG.ABS_A_256_1A00")
	e.RecordCount = 0x0102
	e.BlockCount = 0x0304
	e.StartSector = 0x0506
	e.Timestamp = Timestamp{0x67, 0x42, 0x5E}
	e.OwnerID = 7
	e.SharedFrom = 9

	b, err := e.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	want := map[int]byte{
		0: FormatAbsolute, 1: 'A', 7: 'G', 8: ' ', 9: 'A', 12: ' ',
		17: 0x02, 18: 0x01, 19: 0x04, 20: 0x03, 21: 0x06, 22: 0x05,
		23: 0x00, 24: 0x01, 25: 0x67, 26: 0x42, 27: 0x5E,
		28: 7, 29: 9, 30: 0x00, 31: 0x1A,
	}
	for off, v := range want {
		if b[off] != v {
			t.Errorf("byte %d = %#02x, want %#02x", off, b[off], v)
		}
	}

	var back DirectoryEntry
	if err := back.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if back != e {
		t.Errorf("decoded %+v, want %+v", back, e)
	}
	if err := back.UnmarshalBinary(b[:31]); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short buffer error = %v", err)
	}
}

func TestDirectoryEntryValid(t *testing.T) {
	tests := []struct {
		format uint8
		valid  bool
	}{
		{FormatEmpty, false},
		{FormatDeleted, false},
		{FormatSequential, true},
		{FormatSequential | AttrWriteProtect, true},
		{FormatDirect, true},
		{FormatIndexed, true},
		{FormatKeyed, true},
		{FormatRelocatable, true},
		{FormatAbsolute, true},
		{0x03, false},
		{0x1F, false},
		{AttrReadProtect, false},
	}

	for _, tt := range tests {
		e := DirectoryEntry{FileFormat: tt.format}
		if got := e.IsValid(); got != tt.valid {
			t.Errorf("IsValid(%#02x) = %v, want %v", tt.format, got, tt.valid)
		}
	}

	var nilEntry *DirectoryEntry
	if nilEntry.IsValid() {
		t.Error("nil entry is valid")
	}
}

func TestMarkDeleted(t *testing.T) {
	e := newEntry(t, "GONE.TXT_S_80")
	e.StartSector, e.BlockCount = 8, 1
	e.markDeleted()

	if e.FileFormat != FormatDeleted || e.StartSector != 0 || e.BlockCount != 0 || e.FFD1 != 0 {
		t.Errorf("entry = %+v", e)
	}
	if string(e.Name[:]) != "        " || string(e.Type[:]) != "        " {
		t.Errorf("name = %q.%q, want blanks", e.Name, e.Type)
	}
}

func TestFileAttributes(t *testing.T) {
	fa := AttributesFromByte(FormatSequential | AttrReadProtect | AttrDeleteProtect)
	if !fa.ReadProtect || fa.WriteProtect || !fa.DeleteProtect {
		t.Errorf("attributes = %+v", fa)
	}
	if fa.String() != "RD" {
		t.Errorf("String = %q, want RD", fa.String())
	}
	if fa.Byte() != AttrReadProtect|AttrDeleteProtect {
		t.Errorf("Byte = %#02x", fa.Byte())
	}

	names := map[uint8]string{
		FormatSequential: "SEQ", FormatDirect: "DIR", FormatIndexed: "IDX",
		FormatKeyed: "KEY", FormatRelocatable: "REL", FormatAbsolute: "ABS", 0x03: "UNK",
	}
	for f, want := range names {
		if got := FormatName(f | AttrWriteProtect); got != want {
			t.Errorf("FormatName(%#02x) = %q, want %q", f, got, want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	ts := EncodeTimestamp(time.Date(1985, time.June, 14, 9, 30, 0, 0, time.Local))
	if ts != (Timestamp{0x67, 0x42, 0x5E}) {
		t.Errorf("EncodeTimestamp = % x, want 67 42 5e", ts[:])
	}
	if ts.String() != "06/14/85 09:30" {
		t.Errorf("String = %q", ts.String())
	}
	got := ts.Time()
	if got.Year() != 1985 || got.Month() != time.June || got.Day() != 14 || got.Hour() != 9 || got.Minute() != 30 {
		t.Errorf("Time = %v", got)
	}
}

func TestTimestampClamping(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"before epoch", time.Date(1970, time.January, 1, 0, 0, 0, 0, time.Local), "01/01/77 00:00"},
		{"after range", time.Date(2024, time.December, 31, 23, 59, 0, 0, time.Local), "12/31/92 23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeTimestamp(tt.in).String(); got != tt.want {
				t.Errorf("String = %q, want %q", got, tt.want)
			}
		})
	}

	// month 0, day 0, hour 31 and minute 63 decode into range
	raw := Timestamp{0x00, 0x07, 0xFF}
	year, month, day, hour, minute := raw.Components()
	if year != 1977 || month != 1 || day != 1 || hour != 23 || minute != 59 {
		t.Errorf("Components = %d-%d-%d %d:%d", year, month, day, hour, minute)
	}
}

func TestMatchFilename(t *testing.T) {
	e := newEntry(t, "REPORT.TXT")
	tests := []struct {
		pattern string
		want    bool
	}{
		{"REPORT.TXT", true},
		{"report.txt", true},
		{"*.TXT", true},
		{"*", true},
		{"*.*", true},
		{"REP*", true},
		{"R?PORT.TXT", true},
		{"REPORT.T?T", true},
		{"REPORT.?", false},
		{"*.BAS", false},
		{"REPORTS.TXT", false},
		{"", false},
		{"**.TXT", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := MatchFilename(e.Name, e.Type, tt.pattern); got != tt.want {
				t.Errorf("MatchFilename(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestOwnerFilter(t *testing.T) {
	if !AnyOwner.Matches(200) || AnyOwner.String() != "*" {
		t.Error("AnyOwner does not match every owner")
	}
	f := OwnerFilter(3)
	if !f.Matches(3) || f.Matches(0) || f.String() != "3" {
		t.Errorf("OwnerFilter(3) matching is wrong")
	}
}
