// file: cmd/erase/erase.go

package erase

import (
	"fmt"
	"strings"

	"github.com/ha1tch/oasis/cmd/volume"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

// EraseOptions configures the erase operation
type EraseOptions struct {
	Owner diskimg.OwnerFilter // Owner to erase from, or AnyOwner
	Quiet bool                // Suppress non-error output
}

// DefaultEraseOptions returns default options for Erase
func DefaultEraseOptions() *EraseOptions {
	return &EraseOptions{Owner: diskimg.AnyOwner}
}

// Erase removes every file matching pattern from the disk image
func Erase(diskPath string, pattern string, opts *EraseOptions) (*diskimg.EraseResult, error) {
	if opts == nil {
		opts = DefaultEraseOptions()
	}

	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}

	v, err := volume.Open(diskPath, true)
	if err != nil {
		return nil, err
	}
	defer v.Close()

	res, err := v.Layout.EraseMatching(v.Stream, pattern, opts.Owner)
	if res == nil {
		return nil, err
	}

	if !opts.Quiet {
		for _, name := range res.Erased {
			fmt.Printf("Erased %s\n", name)
		}
		for _, f := range res.Failures {
			fmt.Printf("Failed to erase %s\n", f)
		}
		if len(res.Erased) == 0 && len(res.Failures) == 0 {
			fmt.Printf("No files match %s\n", pattern)
		} else {
			fmt.Printf("%dK freed\n", res.Freed)
		}
	}
	return res, err
}
