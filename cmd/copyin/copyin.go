// file: cmd/copyin/copyin.go

package copyin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ha1tch/oasis/cmd/volume"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

// CopyOptions configures the copy operation
type CopyOptions struct {
	Name  string // OASIS host-style name overriding the host basename; single file only
	Owner int    // Owner id of the new entries
	ASCII bool   // Convert text files to OASIS line endings
	Quiet bool   // Suppress non-error output
}

// DefaultCopyOptions returns default options for Copy
func DefaultCopyOptions() *CopyOptions {
	return &CopyOptions{}
}

// Copy imports host files into the disk image, replacing any file of the
// same name and owner
func Copy(diskPath string, filePaths []string, opts *CopyOptions) error {
	if opts == nil {
		opts = DefaultCopyOptions()
	}
	if len(filePaths) == 0 {
		return fmt.Errorf("no files to copy")
	}
	if opts.Name != "" && len(filePaths) > 1 {
		return fmt.Errorf("a name can only be given when copying a single file")
	}
	if opts.Owner < 0 || opts.Owner > 255 {
		return fmt.Errorf("owner %d not in 0-255", opts.Owner)
	}

	for _, p := range filePaths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("input file does not exist: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
	}

	v, err := volume.Open(diskPath, true)
	if err != nil {
		return err
	}
	defer v.Close()

	copyOpts := &diskimg.CopyOptions{
		Override: opts.Name,
		Owner:    diskimg.OwnerFilter(opts.Owner),
		ASCII:    opts.ASCII,
	}
	for _, p := range filePaths {
		if err := v.Layout.CopyIn(v.Stream, p, copyOpts); err != nil {
			return fmt.Errorf("failed to copy %s: %w", p, err)
		}
		if !opts.Quiet {
			fmt.Printf("Copied %s to disk image\n", filepath.Base(p))
		}
	}
	return nil
}
