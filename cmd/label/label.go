// file: cmd/label/label.go

package label

import (
	"fmt"
	"time"

	"github.com/ha1tch/oasis/cmd/volume"
)

// LabelOptions configures changes to an existing volume
type LabelOptions struct {
	Label     string // New volume label
	SetLabel  bool   // Apply Label, even when empty
	Protect   bool   // Set the write-protect flag
	Unprotect bool   // Clear the write-protect flag
	Clear     bool   // Remove every file from the volume
	Quiet     bool   // Suppress non-error output
}

// DefaultLabelOptions returns default options for Label
func DefaultLabelOptions() *LabelOptions {
	return &LabelOptions{}
}

// Label relabels, protects or clears an existing volume
func Label(diskPath string, opts *LabelOptions) error {
	if opts == nil {
		opts = DefaultLabelOptions()
	}
	if opts.Protect && opts.Unprotect {
		return fmt.Errorf("cannot both set and clear write protection")
	}
	if !opts.SetLabel && !opts.Protect && !opts.Unprotect && !opts.Clear {
		return fmt.Errorf("nothing to change")
	}

	v, err := volume.Open(diskPath, true)
	if err != nil {
		return err
	}
	defer v.Close()

	l := v.Layout
	if opts.Clear {
		if err := l.Clear(v.Stream); err != nil {
			return err
		}
		if !opts.Quiet {
			fmt.Printf("Cleared volume, %dK free\n", l.FSBlock.FreeBlocks)
		}
	}
	if opts.SetLabel {
		if err := l.SetLabel(v.Stream, opts.Label, time.Now()); err != nil {
			return err
		}
		if !opts.Quiet {
			fmt.Printf("Disk label: %s\n", l.FSBlock.LabelString())
		}
	}
	if opts.Protect || opts.Unprotect {
		if err := l.SetWriteProtect(v.Stream, opts.Protect); err != nil {
			return err
		}
		if !opts.Quiet {
			state := "off"
			if opts.Protect {
				state = "on"
			}
			fmt.Printf("Write protection %s\n", state)
		}
	}
	return nil
}
