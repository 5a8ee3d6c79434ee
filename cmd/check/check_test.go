// file: cmd/check/check_test.go

package check

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/oasis/cmd/copyin"
	"github.com/ha1tch/oasis/cmd/create"
	"github.com/ha1tch/oasis/cmd/volume"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

func setupTestImage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	img := filepath.Join(dir, "test.img")
	opts := create.DefaultCreateOptions()
	opts.Quiet = true
	if err := create.Create(img, opts); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	host := filepath.Join(dir, "CHAIN.TXT")
	if err := os.WriteFile(host, make([]byte, 5000), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := copyin.Copy(img, []string{host}, &copyin.CopyOptions{Quiet: true}); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	return img
}

func TestCheckClean(t *testing.T) {
	img := setupTestImage(t)

	report, err := Check(img, &CheckOptions{Quiet: true})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if report.FilesChecked != 1 || report.MapFree != report.HeaderFree {
		t.Errorf("report = %+v", report)
	}
}

func TestCheckProblems(t *testing.T) {
	img := setupTestImage(t)

	v, err := volume.Open(img, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Layout.AllocMap.SetBlockState(200, diskimg.BlockUsed); err != nil {
		t.Fatal(err)
	}
	if err := v.Layout.Flush(v.Stream); err != nil {
		t.Fatal(err)
	}
	v.Close()

	report, err := Check(img, &CheckOptions{Quiet: true})
	if !errors.Is(err, ErrProblemsFound) {
		t.Fatalf("Check error = %v, want ErrProblemsFound", err)
	}
	// the orphaned unit and the stale header free count
	if len(report.Problems) != 2 {
		t.Errorf("problems = %v", report.Problems)
	}
}

func TestCheckMissingImage(t *testing.T) {
	if _, err := Check(filepath.Join(t.TempDir(), "none.img"), nil); err == nil {
		t.Error("Check of a missing image succeeded")
	}
}
