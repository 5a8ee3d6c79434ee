// file: cmd/list/list.go

package list

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ha1tch/oasis/cmd/volume"
	"github.com/ha1tch/oasis/pkg/diskimg"
)

// FileEntry represents a file in the directory listing
type FileEntry struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	HostName    string    `json:"host_name"`
	Format      string    `json:"format"`
	Attributes  string    `json:"attributes,omitempty"`
	Records     int       `json:"records"`
	Blocks      int       `json:"blocks"`
	StartSector int       `json:"start_sector"`
	FFD1        int       `json:"ffd1"`
	FFD2        int       `json:"ffd2"`
	Owner       int       `json:"owner"`
	SharedFrom  int       `json:"shared_from"`
	Modified    time.Time `json:"modified"`
	Stamp       string    `json:"-"`
}

// ListOptions configures the directory listing
type ListOptions struct {
	Pattern string              // Filter by filename pattern
	Owner   diskimg.OwnerFilter // Owner to list, or AnyOwner
	JSON    bool                // Output in JSON format
	Long    bool                // Show detailed information
	Sort    string              // Sort order: name, size, type, date or none
	Reverse bool                // Reverse sort order
	Quiet   bool                // Suppress non-error output
}

// DefaultListOptions returns default options for List
func DefaultListOptions() *ListOptions {
	return &ListOptions{
		Owner: diskimg.AnyOwner,
		Sort:  "name",
	}
}

// Summary holds the totals printed after a listing
type Summary struct {
	Files      int
	Blocks     int
	FreeBlocks int
	Label      string
}

// Entries returns the matching directory entries, sorted per opts
func Entries(diskPath string, opts *ListOptions) ([]FileEntry, *Summary, error) {
	if opts == nil {
		opts = DefaultListOptions()
	}

	v, err := volume.Open(diskPath, false)
	if err != nil {
		return nil, nil, err
	}
	defer v.Close()

	l := v.Layout
	pattern := opts.Pattern
	if pattern == "*" || pattern == "*.*" {
		pattern = ""
	}

	sum := &Summary{FreeBlocks: int(l.FSBlock.FreeBlocks), Label: l.FSBlock.LabelString()}
	var files []FileEntry
	for _, idx := range l.Matching(pattern, opts.Owner) {
		file := fileEntryFromDirEntry(&l.Directory[idx])
		files = append(files, file)
		sum.Files++
		sum.Blocks += file.Blocks
	}

	sortFiles(files, opts)
	return files, sum, nil
}

// List displays the contents of a disk image
func List(diskPath string, opts *ListOptions) error {
	if opts == nil {
		opts = DefaultListOptions()
	}

	files, sum, err := Entries(diskPath, opts)
	if err != nil {
		return err
	}

	if opts.JSON {
		return outputJSON(files)
	}
	if opts.Quiet {
		return nil
	}
	outputDir(files, sum, opts)
	return nil
}

func fileEntryFromDirEntry(e *diskimg.DirectoryEntry) FileEntry {
	host, err := e.HostFilename()
	if err != nil {
		host = ""
	}
	return FileEntry{
		Name:        e.FileName(),
		Type:        e.FileType(),
		HostName:    host,
		Format:      diskimg.FormatName(e.FileFormat),
		Attributes:  diskimg.AttributesFromByte(e.FileFormat).String(),
		Records:     int(e.RecordCount),
		Blocks:      int(e.BlockCount),
		StartSector: int(e.StartSector),
		FFD1:        int(e.FFD1),
		FFD2:        int(e.FFD2),
		Owner:       int(e.OwnerID),
		SharedFrom:  int(e.SharedFrom),
		Modified:    e.Timestamp.Time(),
		Stamp:       e.Timestamp.String(),
	}
}

func sortFiles(files []FileEntry, opts *ListOptions) {
	key := strings.ToLower(opts.Sort)
	if key == "none" || key == "" {
		if opts.Reverse {
			for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
				files[i], files[j] = files[j], files[i]
			}
		}
		return
	}

	less := func(i, j int) bool {
		a, b := files[i], files[j]
		var result bool
		switch key {
		case "size":
			result = a.Blocks < b.Blocks
		case "type":
			result = a.Type < b.Type || (a.Type == b.Type && a.Name < b.Name)
		case "date":
			result = a.Modified.Before(b.Modified)
		default: // "name"
			result = a.Name < b.Name || (a.Name == b.Name && a.Type < b.Type)
		}
		if opts.Reverse {
			return !result
		}
		return result
	}
	sort.SliceStable(files, less)
}

func outputJSON(files []FileEntry) error {
	if files == nil {
		files = []FileEntry{}
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(files)
}

func outputDir(files []FileEntry, sum *Summary, opts *ListOptions) {
	label := sum.Label
	if label == "" {
		label = "(no label)"
	}
	fmt.Printf("\n Volume %s\n\n", label)

	if len(files) == 0 {
		fmt.Println("No files found")
		fmt.Printf("\n%6dK free\n", sum.FreeBlocks)
		return
	}

	if opts.Long {
		fmt.Println("Name     Type     Fmt Attr  Recs Blks  Sect  FFD1  FFD2 Own  Date     Time")
	} else {
		fmt.Println("Name     Type     Fmt Attr  Recs Blks Own  Date     Time")
	}

	for _, f := range files {
		if opts.Long {
			fmt.Printf("%-8s %-8s %-3s %-4s %5d %4d %5d %5d %5d %3d  %s\n",
				f.Name, f.Type, f.Format, f.Attributes,
				f.Records, f.Blocks, f.StartSector, f.FFD1, f.FFD2, f.Owner, f.Stamp)
		} else {
			fmt.Printf("%-8s %-8s %-3s %-4s %5d %4d %3d  %s\n",
				f.Name, f.Type, f.Format, f.Attributes,
				f.Records, f.Blocks, f.Owner, f.Stamp)
		}
	}

	fmt.Printf("\n%6d File(s) %6dK used\n", sum.Files, sum.Blocks)
	fmt.Printf("%16dK free\n", sum.FreeBlocks)
}
