// file: pkg/diskimg/hostio_test.go

package diskimg

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ha1tch/oasis/pkg/ascii"
)

// writeHostFile creates a host file stamped with testStamp
func writeHostFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write host file: %v", err)
	}
	if err := os.Chtimes(path, testStamp, testStamp); err != nil {
		t.Fatalf("failed to set host file time: %v", err)
	}
	return path
}

func TestCopyIn(t *testing.T) {
	l, dev := setupTestDisk(t)
	src := patterned(3000)
	path := writeHostFile(t, t.TempDir(), "data.bin", src)

	if err := l.CopyIn(dev, path, nil); err != nil {
		t.Fatalf("CopyIn failed: %v", err)
	}

	loaded, err := Load(dev)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	e := loaded.Directory[0]
	if e.FileName() != "DATA" || e.FileType() != "BIN" || !e.IsSequential() {
		t.Fatalf("entry = %s.%s format %#02x", e.FileName(), e.FileType(), e.FileFormat)
	}
	if e.OwnerID != 0 {
		t.Errorf("OwnerID = %d, want 0", e.OwnerID)
	}
	if e.Timestamp != EncodeTimestamp(testStamp) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, EncodeTimestamp(testStamp))
	}
	if loaded.FSBlock.FreeBlocks != 248-3 {
		t.Errorf("FreeBlocks = %d, want 245", loaded.FSBlock.FreeBlocks)
	}

	got, err := ReadData(dev, &e)
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Error("copied data differs")
	}
}

func TestCopyInOverride(t *testing.T) {
	l, dev := setupTestDisk(t)
	path := writeHostFile(t, t.TempDir(), "prog.com", patterned(1500))

	opts := &CopyOptions{Override: "ABSPROG.ABS_A_256_1A00", Owner: 5}
	if err := l.CopyIn(dev, path, opts); err != nil {
		t.Fatalf("CopyIn failed: %v", err)
	}

	e := l.Directory[0]
	if e.Format() != FormatAbsolute || e.FFD1 != 256 || e.FFD2 != 0x1A00 {
		t.Errorf("entry format %#02x ffd1 %d ffd2 %#x", e.FileFormat, e.FFD1, e.FFD2)
	}
	if e.OwnerID != 5 || e.BlockCount != 2 {
		t.Errorf("OwnerID = %d, BlockCount = %d; want 5 and 2", e.OwnerID, e.BlockCount)
	}

	opts.Override = "BAD.X_Q"
	if err := l.CopyIn(dev, path, opts); !errors.Is(err, ErrInvalidFilename) {
		t.Errorf("bad override error = %v, want ErrInvalidFilename", err)
	}
}

func TestCopyInAnyOwner(t *testing.T) {
	l, dev := setupTestDisk(t)
	path := writeHostFile(t, t.TempDir(), "x.dat", []byte("x"))

	if err := l.CopyIn(dev, path, &CopyOptions{Owner: AnyOwner}); err != nil {
		t.Fatalf("CopyIn failed: %v", err)
	}
	if l.Directory[0].OwnerID != 0 {
		t.Errorf("OwnerID = %d, want 0", l.Directory[0].OwnerID)
	}
}

func TestCopyInASCII(t *testing.T) {
	l, dev := setupTestDisk(t)
	path := writeHostFile(t, t.TempDir(), "notes.txt_A_0_0", []byte("Line 1\nLine 2\r\nLast Line"))

	if err := l.CopyIn(dev, path, &CopyOptions{ASCII: true}); err != nil {
		t.Fatalf("CopyIn failed: %v", err)
	}

	e := l.Directory[0]
	if !e.IsSequential() {
		t.Errorf("format = %#02x, want sequential", e.FileFormat)
	}
	if e.FFD1 != 9 {
		t.Errorf("FFD1 = %d, want the longest line (9)", e.FFD1)
	}
	got, err := ReadData(dev, &e)
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}
	if want := []byte("Line 1\rLine 2\rLast Line\x1a"); !bytes.Equal(got, want) {
		t.Errorf("stored %q, want %q", got, want)
	}
}

func TestCopyInASCIISkipsBinary(t *testing.T) {
	l, dev := setupTestDisk(t)
	src := []byte{0x01, 0x80, 0xFF, '\n'}
	path := writeHostFile(t, t.TempDir(), "blob.bin_D_4", src)

	if err := l.CopyIn(dev, path, &CopyOptions{ASCII: true}); err != nil {
		t.Fatalf("CopyIn failed: %v", err)
	}
	e := l.Directory[0]
	if e.Format() != FormatDirect || e.FFD1 != 4 {
		t.Errorf("format %#02x ffd1 %d, want direct with 4", e.FileFormat, e.FFD1)
	}
	got, err := ReadData(dev, &e)
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}
	if !bytes.Equal(got[:len(src)], src) {
		t.Error("binary data was converted")
	}
}

func TestCopyInOverwrite(t *testing.T) {
	l, dev := setupTestDisk(t)
	dir := t.TempDir()
	addFile(t, l, dev, "OTHER.DAT", 0, []byte("other"))

	path := writeHostFile(t, dir, "same.dat", patterned(5000))
	if err := l.CopyIn(dev, path, nil); err != nil {
		t.Fatalf("first CopyIn failed: %v", err)
	}
	path = writeHostFile(t, dir, "same.dat", []byte("small"))
	if err := l.CopyIn(dev, path, nil); err != nil {
		t.Fatalf("second CopyIn failed: %v", err)
	}

	if n := len(l.Matching("SAME.DAT", AnyOwner)); n != 1 {
		t.Fatalf("%d SAME.DAT entries, want 1", n)
	}
	if l.Directory[1].FileName() != "SAME" {
		t.Errorf("slot 1 holds %q, want the reused SAME slot", l.Directory[1].FileName())
	}
	if l.FSBlock.FreeBlocks != 248-2 || l.AllocMap.CountFree() != 248-2 {
		t.Errorf("free = %d header, %d map, want 246", l.FSBlock.FreeBlocks, l.AllocMap.CountFree())
	}
	got, err := ReadData(dev, &l.Directory[1])
	if err != nil || string(got) != "small" {
		t.Errorf("ReadData = %q, %v; want small", got, err)
	}
}

func TestCopyInErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing host file", func(t *testing.T) {
		l, dev := setupTestDisk(t)
		err := l.CopyIn(dev, filepath.Join(dir, "nothere.txt"), nil)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want not exist", err)
		}
	})

	t.Run("bad host name", func(t *testing.T) {
		l, dev := setupTestDisk(t)
		path := writeHostFile(t, dir, "this_is_bad", []byte("x"))
		if err := l.CopyIn(dev, path, nil); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("error = %v, want ErrInvalidFilename", err)
		}
	})

	t.Run("no space", func(t *testing.T) {
		l, dev := setupTestDisk(t)
		fillExcept(t, l, 100, 101)
		path := writeHostFile(t, dir, "big.dat", patterned(3*BlockSize))
		if err := l.CopyIn(dev, path, nil); !errors.Is(err, ErrNoSpace) {
			t.Errorf("error = %v, want ErrNoSpace", err)
		}
		if l.FSBlock.FreeBlocks != 2 {
			t.Errorf("FreeBlocks = %d, want 2", l.FSBlock.FreeBlocks)
		}
	})

	t.Run("directory full", func(t *testing.T) {
		l, dev := setupTestDisk(t)
		for i := range l.Directory {
			l.Directory[i] = newEntry(t, "FILL.X")
			l.Directory[i].OwnerID = uint8(i + 1)
		}
		path := writeHostFile(t, dir, "one.dat", []byte("x"))
		if err := l.CopyIn(dev, path, nil); !errors.Is(err, ErrDirectoryFull) {
			t.Errorf("error = %v, want ErrDirectoryFull", err)
		}
		if l.FSBlock.FreeBlocks != 248 {
			t.Errorf("FreeBlocks = %d, want 248", l.FSBlock.FreeBlocks)
		}
	})
}

func TestExtractMatching(t *testing.T) {
	l, dev := setupTestDisk(t)
	text := []byte("Line 1\rLine 2\rLast Line\x1a")
	addFile(t, l, dev, "NOTES.TXT_S_9", 0, text)
	addFile(t, l, dev, "PROG.ABS_A_256_1A00", 0, patterned(1024))
	addFile(t, l, dev, "OTHER.TXT", 3, []byte("owner three"))

	dir := filepath.Join(t.TempDir(), "out", "nested")
	res, err := l.ExtractMatching(dev, dir, &ExtractOptions{Pattern: "*.*", Owner: 0})
	if err != nil {
		t.Fatalf("ExtractMatching failed: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("extracted %d files, want 2", len(res.Files))
	}

	got, err := os.ReadFile(filepath.Join(dir, "NOTES.TXT_S_9"))
	if err != nil {
		t.Fatalf("failed to read extracted file: %v", err)
	}
	if !bytes.Equal(got, text) {
		t.Errorf("raw extract = %q, want %q", got, text)
	}

	fi, err := os.Stat(filepath.Join(dir, "PROG.ABS_A_256_1A00"))
	if err != nil {
		t.Fatalf("absolute file not extracted: %v", err)
	}
	if fi.Size() != 1024 {
		t.Errorf("size = %d, want 1024", fi.Size())
	}
	if want := EncodeTimestamp(testStamp).Time(); !fi.ModTime().Equal(want) {
		t.Errorf("mtime = %v, want %v", fi.ModTime(), want)
	}
}

func TestExtractMatchingASCII(t *testing.T) {
	l, dev := setupTestDisk(t)
	addFile(t, l, dev, "NOTES.TXT_S_9", 0, []byte("Line 1\rLine 2\rLast Line\x1a"))
	addFile(t, l, dev, "BIN.DAT", 0, []byte{0x90, 0x0D, 0x91})

	dir := t.TempDir()
	res, err := l.ExtractMatching(dev, dir, &ExtractOptions{Owner: AnyOwner, ASCII: true})
	if err != nil {
		t.Fatalf("ExtractMatching failed: %v", err)
	}
	if len(res.Files) != 2 || !res.Files[0].Converted || res.Files[1].Converted {
		t.Errorf("files = %+v", res.Files)
	}

	got, err := os.ReadFile(filepath.Join(dir, "NOTES.TXT_S_9"))
	if err != nil {
		t.Fatal(err)
	}
	want := strings.ReplaceAll("Line 1\nLine 2\nLast Line", "\n", string(ascii.HostLineEnding()))
	if string(got) != want {
		t.Errorf("converted extract = %q, want %q", got, want)
	}

	got, err = os.ReadFile(filepath.Join(dir, "BIN.DAT_S"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x90, 0x0D, 0x91}) {
		t.Errorf("binary extract = % x", got)
	}
}

func TestExtractMatchingErrors(t *testing.T) {
	l, dev := setupTestDisk(t)
	bad := addFile(t, l, dev, "BROKEN.TXT", 0, patterned(600))
	addFile(t, l, dev, "FINE.TXT", 0, []byte("fine"))
	l.Directory[bad].FFD2 = 1

	dir := t.TempDir()
	res, err := l.ExtractMatching(dev, dir, nil)
	if !errors.Is(err, ErrPartialFailure) || !errors.Is(err, ErrCorruptChain) {
		t.Errorf("error = %v, want a partial failure from a corrupt chain", err)
	}
	if len(res.Files) != 1 || res.Files[0].Name != "FINE.TXT_S" {
		t.Errorf("files = %+v, want FINE.TXT_S only", res.Files)
	}

	file := filepath.Join(dir, "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ExtractMatching(dev, file, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("file as output dir error = %v, want ErrInvalidArgument", err)
	}
}
