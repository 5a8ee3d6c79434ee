// file: cmd/create/create.go

package create

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ha1tch/oasis/pkg/diskimg"
	"github.com/ha1tch/oasis/pkg/sectorio"
)

// CreateOptions configures the disk creation
type CreateOptions struct {
	Label           string // Volume label, up to 8 characters
	Heads           int
	Cylinders       int
	SectorsPerTrack int
	DirEntries      int  // Rounded up to whole directory sectors
	WriteProtect    bool // Set the volume write-protect flag
	Format          bool // Fill the whole image with the format pattern
	Force           bool // Overwrite existing file
	Quiet           bool // Suppress non-error output
}

// DefaultCreateOptions returns default options for Create
func DefaultCreateOptions() *CreateOptions {
	def := diskimg.DefaultInitOptions()
	return &CreateOptions{
		Heads:           def.Heads,
		Cylinders:       def.Cylinders,
		SectorsPerTrack: def.SectorsPerTrack,
		DirEntries:      def.DirEntries,
		Format:          true,
	}
}

// Create creates a new disk image holding an empty filesystem
func Create(outPath string, opts *CreateOptions) error {
	if opts == nil {
		opts = DefaultCreateOptions()
	}

	outPath = filepath.Clean(outPath)

	if !opts.Force {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("file already exists: %s (use force to overwrite)", outPath)
		}
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	s, err := sectorio.Create(outPath)
	if err != nil {
		return err
	}

	l, err := diskimg.Initialize(s, &diskimg.InitOptions{
		Label:           opts.Label,
		Heads:           opts.Heads,
		Cylinders:       opts.Cylinders,
		SectorsPerTrack: opts.SectorsPerTrack,
		DirEntries:      opts.DirEntries,
		WriteProtect:    opts.WriteProtect,
		Format:          opts.Format,
	})
	if cerr := s.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		// Clean up partial file on error
		os.Remove(outPath)
		return fmt.Errorf("failed to create disk image: %w", err)
	}

	if !opts.Quiet {
		info := l.Info()
		fmt.Printf("Created OASIS disk image: %s\n", outPath)
		fmt.Printf("Geometry: %d head(s), %d cylinders, %d sectors/track (%d sectors)\n",
			info.Heads, info.Cylinders, info.SectorsPerTrack, info.TotalSectors)
		fmt.Printf("Directory: %d entries, %dK free\n", info.DirEntries, info.FreeBlocks)
		if opts.Label != "" {
			fmt.Printf("Disk label: %s\n", info.Label)
		}
	}

	return nil
}
