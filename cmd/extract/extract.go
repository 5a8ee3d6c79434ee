// file: cmd/extract/extract.go

package extract

import (
	"fmt"

	"github.com/ha1tch/oasis/cmd/volume"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

// ExtractOptions configures the file extraction operation
type ExtractOptions struct {
	OutputDir string              // Directory to extract files to
	Pattern   string              // Files to extract; empty extracts everything
	Owner     diskimg.OwnerFilter // Owner to extract, or AnyOwner
	ASCII     bool                // Convert text files to host line endings
	Quiet     bool                // Suppress non-error output
}

// DefaultExtractOptions returns default options for Extract
func DefaultExtractOptions() *ExtractOptions {
	return &ExtractOptions{
		OutputDir: ".",
		Owner:     diskimg.AnyOwner,
	}
}

// Extract copies matching files from the disk image to the host filesystem
func Extract(diskPath string, opts *ExtractOptions) (*diskimg.ExtractResult, error) {
	if opts == nil {
		opts = DefaultExtractOptions()
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "."
	}

	v, err := volume.Open(diskPath, false)
	if err != nil {
		return nil, err
	}
	defer v.Close()

	res, err := v.Layout.ExtractMatching(v.Stream, outDir, &diskimg.ExtractOptions{
		Pattern: opts.Pattern,
		Owner:   opts.Owner,
		ASCII:   opts.ASCII,
	})
	if res == nil {
		return nil, err
	}

	if !opts.Quiet {
		for _, f := range res.Files {
			note := ""
			if f.Converted {
				note = " (text)"
			}
			fmt.Printf("Extracted %s (%d bytes)%s\n", f.Name, f.Size, note)
		}
		for _, f := range res.Failures {
			fmt.Printf("Failed to extract %s\n", f)
		}
		if len(res.Files) == 0 && len(res.Failures) == 0 {
			fmt.Println("No files found")
		}
	}
	return res, err
}
