// file: cmd/check/check.go

package check

import (
	"errors"
	"fmt"

	"github.com/ha1tch/oasis/cmd/volume"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

// CheckOptions configures the consistency check
type CheckOptions struct {
	Pattern string // Files whose chains are walked; empty checks all
	Quiet   bool   // Suppress non-error output
}

// DefaultCheckOptions returns default options for Check
func DefaultCheckOptions() *CheckOptions {
	return &CheckOptions{}
}

// ErrProblemsFound is returned when the check reports any problem
var ErrProblemsFound = errors.New("volume has problems")

// Check verifies the allocation map against the directory
func Check(diskPath string, opts *CheckOptions) (*diskimg.CheckReport, error) {
	if opts == nil {
		opts = DefaultCheckOptions()
	}

	v, err := volume.Open(diskPath, false)
	if err != nil {
		return nil, err
	}
	defer v.Close()

	report, err := v.Layout.Check(v.Stream, opts.Pattern)
	if err != nil {
		return nil, err
	}

	if !opts.Quiet {
		fmt.Printf("Checked %d file(s) on %dK volume\n", report.FilesChecked, report.TotalBlocks)
		fmt.Printf("Free: %dK in map, %dK in header\n", report.MapFree, report.HeaderFree)
		for _, p := range report.Problems {
			fmt.Printf("- %s\n", p)
		}
		if report.OK() {
			fmt.Println("No problems found")
		}
	}

	if !report.OK() {
		return report, fmt.Errorf("%d problem(s): %w", len(report.Problems), ErrProblemsFound)
	}
	return report, nil
}
