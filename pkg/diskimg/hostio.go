// file: pkg/diskimg/hostio.go

package diskimg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ha1tch/oasis/internal"
	"github.com/ha1tch/oasis/pkg/ascii"
)

// defaultTextRecordLength is used for converted text with no line longer than zero
const defaultTextRecordLength = SectorSize

// CopyOptions configures copying a host file onto a volume
type CopyOptions struct {
	Override string      // OASIS host-style name to use instead of the host basename
	Owner    OwnerFilter // owner of the new entry; AnyOwner means owner 0
	ASCII    bool        // convert 7-bit text to OASIS line endings
}

// DefaultCopyOptions returns the options used when none are given
func DefaultCopyOptions() *CopyOptions {
	return &CopyOptions{Owner: 0}
}

// hostBasename strips directories separated by either slash
func hostBasename(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// prepareText converts host text for a sequential entry. Data that is not
// 7-bit is returned unchanged.
func prepareText(e *DirectoryEntry, data []byte) []byte {
	if len(data) == 0 || !ascii.IsASCII(data) {
		return data
	}
	out, res := ascii.ConvertToOasis(data)
	e.FileFormat = e.Attributes() | FormatSequential
	if e.FFD1 == 0 {
		if res.MaxLineLength > 0 && res.MaxLineLength <= 0xFFFF {
			e.FFD1 = uint16(res.MaxLineLength)
		} else if len(out) > 0 {
			e.FFD1 = defaultTextRecordLength
		}
	}
	if len(out) > 0 && out[len(out)-1] != ascii.EOF {
		out = append(out, ascii.EOF)
	}
	return out
}

// CopyIn copies a host file onto the volume. An existing file with the same
// name, type and owner is erased first and its slot reused. The header, map
// and directory are written back on success.
func (l *Layout) CopyIn(dev SectorDevice, hostPath string, opts *CopyOptions) error {
	if l == nil || dev == nil || hostPath == "" {
		return fmt.Errorf("copy: %w", ErrInvalidArgument)
	}
	if opts == nil {
		opts = DefaultCopyOptions()
	}

	data, err := os.ReadFile(hostPath)
	if err != nil {
		return fmt.Errorf("failed to read host file: %w", err)
	}

	hostName := opts.Override
	if hostName == "" {
		hostName = hostBasename(hostPath)
	}
	target, err := ParseHostFilename(hostName)
	if err != nil {
		return fmt.Errorf("copy %s: %w", hostPath, err)
	}

	if opts.Owner != AnyOwner {
		target.OwnerID = uint8(opts.Owner)
	}

	mtime := time.Now()
	if fi, err := os.Stat(hostPath); err == nil {
		mtime = fi.ModTime()
	}
	target.Timestamp = EncodeTimestamp(mtime)

	if opts.ASCII {
		data = prepareText(&target, data)
	}

	label := entryLabel(&target)

	slot := -1
	if idx := l.FindEntry(target.Name, target.Type, target.OwnerID); idx >= 0 {
		if _, err := l.EraseEntry(dev, idx); err != nil {
			return fmt.Errorf("failed to erase existing %s: %w", label, err)
		}
		if err := l.Flush(dev); err != nil {
			return fmt.Errorf("failed to erase existing %s: %w", label, err)
		}
		slot = idx
	}

	needed := internal.BlocksFor(len(data))
	if needed > int(l.FSBlock.FreeBlocks) {
		return fmt.Errorf("copy %s: need %d blocks, %d free: %w", label, needed, l.FSBlock.FreeBlocks, ErrNoSpace)
	}

	if slot < 0 {
		slot = l.freeSlot()
	}
	if slot < 0 {
		return fmt.Errorf("copy %s: %w", label, ErrDirectoryFull)
	}

	if err := WriteData(l, dev, &target, data); err != nil {
		return fmt.Errorf("copy %s: %w", label, err)
	}

	l.Directory[slot] = target
	if err := l.Flush(dev); err != nil {
		return fmt.Errorf("copy %s: %w", label, err)
	}
	return nil
}

// ExtractOptions selects and converts the files written to the host
type ExtractOptions struct {
	Pattern string      // wildcard over NAME.TYPE; empty matches all
	Owner   OwnerFilter // owner to extract, or AnyOwner
	ASCII   bool        // convert 7-bit files to host line endings
}

// DefaultExtractOptions returns the options used when none are given
func DefaultExtractOptions() *ExtractOptions {
	return &ExtractOptions{Owner: 0}
}

// ExtractedFile describes one file written to the host
type ExtractedFile struct {
	Name      string
	Owner     uint8
	Size      int
	Converted bool
}

// ExtractResult summarizes an extraction
type ExtractResult struct {
	Files    []ExtractedFile
	Failures []FileError
}

func extractPattern(p string) string {
	if p == "*" || p == "*.*" {
		return ""
	}
	return p
}

// ExtractMatching writes every matching file into dir, named by its host
// filename and stamped with its directory timestamp. A failure on one file
// does not stop the others; the returned error then wraps ErrPartialFailure.
func (l *Layout) ExtractMatching(dev SectorDevice, dir string, opts *ExtractOptions) (*ExtractResult, error) {
	if l == nil || dev == nil || dir == "" {
		return nil, fmt.Errorf("extract: %w", ErrInvalidArgument)
	}
	if opts == nil {
		opts = DefaultExtractOptions()
	}

	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		return nil, fmt.Errorf("extract: %s is not a directory: %w", dir, ErrInvalidArgument)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	res := &ExtractResult{}
	for _, i := range l.Matching(extractPattern(opts.Pattern), opts.Owner) {
		e := &l.Directory[i]
		name, err := e.HostFilename()
		if err != nil {
			res.Failures = append(res.Failures, FileError{Name: entryLabel(e), Err: err})
			continue
		}

		file, err := extractEntry(dev, e, filepath.Join(dir, name), opts.ASCII)
		if err != nil {
			res.Failures = append(res.Failures, FileError{Name: name, Err: err})
			continue
		}
		file.Name = name
		res.Files = append(res.Files, file)
	}

	if len(res.Failures) > 0 {
		errs := make([]error, len(res.Failures))
		for i := range res.Failures {
			errs[i] = res.Failures[i]
		}
		return res, fmt.Errorf("extract: %d files: %w", len(res.Failures),
			errors.Join(ErrPartialFailure, errors.Join(errs...)))
	}
	return res, nil
}

func extractEntry(dev SectorDevice, e *DirectoryEntry, path string, convert bool) (ExtractedFile, error) {
	file := ExtractedFile{Owner: e.OwnerID}

	data, err := ReadData(dev, e)
	if err != nil {
		return file, err
	}
	if convert && len(data) > 0 && ascii.IsASCII(data) {
		data, _ = ascii.ConvertToHost(data)
		file.Converted = true
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return file, fmt.Errorf("failed to write host file: %w", err)
	}
	mtime := e.Timestamp.Time()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		return file, fmt.Errorf("failed to set file time: %w", err)
	}

	file.Size = len(data)
	return file, nil
}
