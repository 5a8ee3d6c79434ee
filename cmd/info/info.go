// file: cmd/info/info.go

package info

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ha1tch/oasis/cmd/volume"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

// DiskInfo represents disk information in a structured format
type DiskInfo struct {
	Path            string    `json:"path"`
	Label           string    `json:"label"`
	Created         time.Time `json:"created"`
	Heads           int       `json:"heads"`
	Cylinders       int       `json:"cylinders"`
	SectorsPerTrack int       `json:"sectors_per_track"`
	TotalSectors    int       `json:"total_sectors"`
	TotalBlocks     int       `json:"total_blocks"`
	DirEntries      int       `json:"dir_entries"`
	Files           int       `json:"files"`
	UsedBlocks      int       `json:"used_blocks"`
	FreeBlocks      int       `json:"free_blocks"`
	LargestFreeRun  int       `json:"largest_free_run"`
	ExtraMapSectors int       `json:"extra_map_sectors"`
	WriteProtected  bool      `json:"write_protected"`
	Validation      []string  `json:"validation_issues,omitempty"`
}

// InfoOptions configures the information display
type InfoOptions struct {
	JSON     bool // Output in JSON format
	Verbose  bool // Show additional details
	Validate bool // Perform a consistency check
	Quiet    bool // Suppress non-error output
}

// DefaultInfoOptions returns default options for Info
func DefaultInfoOptions() *InfoOptions {
	return &InfoOptions{Validate: true}
}

// Inspect collects the information Info displays
func Inspect(diskPath string, validate bool) (*DiskInfo, error) {
	v, err := volume.Open(diskPath, false)
	if err != nil {
		return nil, err
	}
	defer v.Close()

	l := v.Layout
	vi := l.Info()
	info := &DiskInfo{
		Path:            diskPath,
		Label:           vi.Label,
		Created:         vi.Timestamp.Time(),
		Heads:           vi.Heads,
		Cylinders:       vi.Cylinders,
		SectorsPerTrack: vi.SectorsPerTrack,
		TotalSectors:    vi.TotalSectors,
		TotalBlocks:     vi.TotalBlocks,
		DirEntries:      vi.DirEntries,
		FreeBlocks:      vi.FreeBlocks,
		LargestFreeRun:  vi.LargestFreeRun,
		ExtraMapSectors: vi.ExtraMapSectors,
		WriteProtected:  vi.WriteProtected,
	}
	for i := range l.Directory {
		if e := &l.Directory[i]; e.IsValid() {
			info.Files++
			info.UsedBlocks += int(e.BlockCount)
		}
	}

	if validate {
		report, err := l.Check(v.Stream, "")
		if err != nil {
			return nil, err
		}
		for _, p := range report.Problems {
			info.Validation = append(info.Validation, p.String())
		}
	}
	return info, nil
}

// Info displays information about a disk image
func Info(diskPath string, opts *InfoOptions) error {
	if opts == nil {
		opts = DefaultInfoOptions()
	}

	info, err := Inspect(diskPath, opts.Validate)
	if err != nil {
		return err
	}

	if opts.JSON {
		return outputJSON(info)
	}
	return outputText(info, opts)
}

// outputJSON writes disk information in JSON format
func outputJSON(info *DiskInfo) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// outputText writes disk information in human-readable format
func outputText(info *DiskInfo, opts *InfoOptions) error {
	if opts.Quiet && len(info.Validation) == 0 {
		return nil
	}

	label := info.Label
	if label == "" {
		label = "(none)"
	}
	fmt.Printf("Disk Image: %s\n\n", info.Path)
	fmt.Printf("Label:      %s\n", label)
	fmt.Printf("Created:    %s\n", diskimg.EncodeTimestamp(info.Created))
	fmt.Printf("Files:      %d of %d\n", info.Files, info.DirEntries)
	fmt.Printf("Used:       %dK\n", info.UsedBlocks)
	fmt.Printf("Free:       %dK\n", info.FreeBlocks)
	fmt.Printf("Total:      %dK\n", info.TotalBlocks)
	if info.WriteProtected {
		fmt.Println("Volume is write protected")
	}

	if opts.Verbose {
		fmt.Printf("\nDisk Parameters:\n")
		fmt.Printf("Heads:      %d\n", info.Heads)
		fmt.Printf("Cylinders:  %d\n", info.Cylinders)
		fmt.Printf("Sectors:    %d per track, %d total\n", info.SectorsPerTrack, info.TotalSectors)
		fmt.Printf("Map:        %d additional sector(s)\n", info.ExtraMapSectors)
		fmt.Printf("Largest free run: %dK\n", info.LargestFreeRun)
	}

	if len(info.Validation) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, warning := range info.Validation {
			fmt.Printf("- %s\n", warning)
		}
	}

	return nil
}
