// file: cmd/extract/extract_test.go

package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/oasis/cmd/copyin"
	"github.com/ha1tch/oasis/cmd/create"
	"github.com/ha1tch/oasis/pkg/ascii"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

var testCode = bytes.Repeat([]byte{0x21, 0x00, 0x80, 0xC9}, 300)

func setupTestImage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	img := filepath.Join(dir, "test.img")
	opts := create.DefaultCreateOptions()
	opts.Quiet = true
	if err := create.Create(img, opts); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	text := filepath.Join(dir, "README.TXT")
	if err := os.WriteFile(text, []byte("first\nsecond\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := copyin.Copy(img, []string{text}, &copyin.CopyOptions{ASCII: true, Quiet: true}); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	code := filepath.Join(dir, "code.bin")
	if err := os.WriteFile(code, testCode, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := copyin.Copy(img, []string{code}, &copyin.CopyOptions{Name: "LOADER.ABS_A_0_8000", Owner: 1, Quiet: true}); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	return img
}

func TestExtract(t *testing.T) {
	img := setupTestImage(t)
	out := filepath.Join(t.TempDir(), "out")

	res, err := Extract(img, &ExtractOptions{OutputDir: out, Owner: diskimg.AnyOwner, Quiet: true})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("extracted %d files, want 2", len(res.Files))
	}

	got, err := os.ReadFile(filepath.Join(out, "LOADER.ABS_A_0_8000"))
	if err != nil {
		t.Fatalf("LOADER.ABS not extracted: %v", err)
	}
	// contiguous files extract as whole blocks
	if len(got) != 2048 || !bytes.Equal(got[:len(testCode)], testCode) {
		t.Errorf("LOADER.ABS differs: %d bytes", len(got))
	}

	got, err = os.ReadFile(filepath.Join(out, "README.TXT_S_6"))
	if err != nil {
		t.Fatalf("README.TXT not extracted: %v", err)
	}
	if string(got) != "first\rsecond\r\x1a" {
		t.Errorf("README.TXT = %q", got)
	}
}

func TestExtractASCII(t *testing.T) {
	img := setupTestImage(t)
	out := t.TempDir()

	res, err := Extract(img, &ExtractOptions{OutputDir: out, Pattern: "*.TXT", Owner: 0, ASCII: true, Quiet: true})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Files) != 1 || !res.Files[0].Converted {
		t.Fatalf("files = %+v", res.Files)
	}

	got, err := os.ReadFile(filepath.Join(out, "README.TXT_S_6"))
	if err != nil {
		t.Fatal(err)
	}
	eol := string(ascii.HostLineEnding())
	if string(got) != "first"+eol+"second"+eol {
		t.Errorf("README.TXT = %q", got)
	}
}

func TestExtractOwner(t *testing.T) {
	img := setupTestImage(t)
	out := t.TempDir()

	res, err := Extract(img, &ExtractOptions{OutputDir: out, Owner: 1, Quiet: true})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Files) != 1 || res.Files[0].Name != "LOADER.ABS_A_0_8000" || res.Files[0].Owner != 1 {
		t.Errorf("files = %+v", res.Files)
	}
}

func TestExtractErrors(t *testing.T) {
	img := setupTestImage(t)

	if _, err := Extract(filepath.Join(t.TempDir(), "none.img"), nil); err == nil {
		t.Error("Extract from a missing image succeeded")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(img, &ExtractOptions{OutputDir: file, Quiet: true}); err == nil {
		t.Error("Extract into a regular file succeeded")
	}
}
