// file: cmd/rename/rename.go

package rename

import (
	"fmt"

	"github.com/ha1tch/oasis/cmd/volume"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

// RenameOptions configures the rename operation
type RenameOptions struct {
	Owner diskimg.OwnerFilter // Owner whose file is renamed
	Quiet bool                // Suppress non-error output
}

// DefaultRenameOptions returns default options for Rename
func DefaultRenameOptions() *RenameOptions {
	return &RenameOptions{Owner: 0}
}

// Rename gives the single file matching pattern a new NAME.TYPE
func Rename(diskPath, pattern, newName string, opts *RenameOptions) error {
	if opts == nil {
		opts = DefaultRenameOptions()
	}

	v, err := volume.Open(diskPath, true)
	if err != nil {
		return err
	}
	defer v.Close()

	if len(v.Layout.Matching(pattern, opts.Owner)) == 0 {
		return fmt.Errorf("rename %s: %w", pattern, diskimg.ErrFileNotFound)
	}
	if err := v.Layout.Rename(v.Stream, pattern, newName, opts.Owner); err != nil {
		return err
	}

	if !opts.Quiet {
		fmt.Printf("Renamed %s to %s\n", pattern, newName)
	}
	return nil
}
