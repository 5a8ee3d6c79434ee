// file: cmd/label/label_test.go

package label

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/oasis/cmd/copyin"
	"github.com/ha1tch/oasis/cmd/create"
	"github.com/ha1tch/oasis/cmd/volume"
)

func setupTestImage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	img := filepath.Join(dir, "test.img")
	opts := create.DefaultCreateOptions()
	opts.Label = "BEFORE"
	opts.Quiet = true
	if err := create.Create(img, opts); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	host := filepath.Join(dir, "FILE.DAT")
	if err := os.WriteFile(host, make([]byte, 4000), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := copyin.Copy(img, []string{host}, &copyin.CopyOptions{Quiet: true}); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	return img
}

func TestLabel(t *testing.T) {
	img := setupTestImage(t)

	if err := Label(img, &LabelOptions{Label: "after", SetLabel: true, Protect: true, Quiet: true}); err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	v, err := volume.Open(img, false)
	if err != nil {
		t.Fatal(err)
	}
	info := v.Layout.Info()
	v.Close()
	if info.Label != "AFTER" || !info.WriteProtected {
		t.Errorf("label %q, write protected %v", info.Label, info.WriteProtected)
	}

	if err := Label(img, &LabelOptions{Unprotect: true, Clear: true, Quiet: true}); err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	v, err = volume.Open(img, false)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	info = v.Layout.Info()
	if info.Label != "AFTER" || info.WriteProtected || info.FreeBlocks != 248 {
		t.Errorf("info after clear = %+v", info)
	}
	if n := len(v.Layout.Matching("", -1)); n != 0 {
		t.Errorf("%d files remain after clear", n)
	}
}

func TestLabelErrors(t *testing.T) {
	img := setupTestImage(t)

	tests := []struct {
		name string
		opts *LabelOptions
	}{
		{"nothing to do", nil},
		{"both protect flags", &LabelOptions{Protect: true, Unprotect: true}},
		{"label too long", &LabelOptions{Label: "NINECHARS", SetLabel: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Label(img, tt.opts); err == nil {
				t.Error("Label succeeded")
			}
		})
	}
}
