// file: pkg/diskimg/directory_ops.go

package diskimg

import (
	"errors"
	"fmt"
	"strings"
)

// FileError records a failure for one file of a batch operation
type FileError struct {
	Name string
	Err  error
}

func (fe FileError) Error() string {
	return fmt.Sprintf("%s: %v", fe.Name, fe.Err)
}

func (fe FileError) Unwrap() error {
	return fe.Err
}

// Matching returns the indices of valid entries that pass the owner filter
// and match pattern. An empty pattern matches every name.
func (l *Layout) Matching(pattern string, owner OwnerFilter) []int {
	var idx []int
	for i := range l.Directory {
		e := &l.Directory[i]
		if !e.IsValid() || !owner.Matches(e.OwnerID) {
			continue
		}
		if pattern == "" || MatchFilename(e.Name, e.Type, pattern) {
			idx = append(idx, i)
		}
	}
	return idx
}

// FindEntry returns the index of the valid entry with exactly this name,
// type and owner, or -1
func (l *Layout) FindEntry(name [NameLen]byte, typ [TypeLen]byte, owner uint8) int {
	for i := range l.Directory {
		e := &l.Directory[i]
		if e.IsValid() && e.Name == name && e.Type == typ && e.OwnerID == owner {
			return i
		}
	}
	return -1
}

// freeSlot returns the first empty or deleted entry, or -1
func (l *Layout) freeSlot() int {
	for i := range l.Directory {
		if f := l.Directory[i].FileFormat; f == FormatEmpty || f == FormatDeleted {
			return i
		}
	}
	return -1
}

func entryLabel(e *DirectoryEntry) string {
	if name, err := e.HostFilename(); err == nil {
		return name
	}
	return e.FileName() + "." + e.FileType()
}

// EraseEntry frees the units of directory entry idx, credits them to the
// header free count and marks the entry deleted. The entry is marked deleted
// even if some units could not be freed. Nothing is written to disk.
func (l *Layout) EraseEntry(dev SectorDevice, idx int) (int, error) {
	if idx < 0 || idx >= len(l.Directory) {
		return 0, fmt.Errorf("erase entry %d: %w", idx, ErrInvalidArgument)
	}
	e := &l.Directory[idx]
	if !e.IsValid() {
		return 0, fmt.Errorf("erase entry %d: %w", idx, ErrFileNotFound)
	}

	var errs []error
	freed := 0

	if e.BlockCount > 0 && e.StartSector != 0 {
		if e.IsSequential() {
			units, err := chainUnits(dev, e)
			if err != nil {
				errs = append(errs, err)
			}
			for _, u := range units {
				if err := l.AllocMap.Deallocate(u, 1); err != nil {
					errs = append(errs, err)
					continue
				}
				freed++
			}
		} else {
			start := int(e.StartSector) / SectorsPerBlock
			if err := l.AllocMap.Deallocate(start, int(e.BlockCount)); err != nil {
				errs = append(errs, err)
			} else {
				freed = int(e.BlockCount)
			}
		}
	}

	l.FSBlock.FreeBlocks += uint16(freed)

	owner, stamp := e.OwnerID, e.Timestamp
	e.markDeleted()
	e.OwnerID, e.Timestamp = owner, stamp

	if err := errors.Join(errs...); err != nil {
		return freed, fmt.Errorf("erase entry %d: %w", idx, err)
	}
	return freed, nil
}

// EraseResult summarizes a pattern erase
type EraseResult struct {
	Erased   []string
	Freed    int
	Failures []FileError
}

// EraseMatching erases every entry matching pattern for the owner filter and
// writes the header, map and directory back if anything was erased. A
// failure on one file does not stop the others; it is reported in the
// result and the returned error wraps ErrPartialFailure.
func (l *Layout) EraseMatching(dev SectorDevice, pattern string, owner OwnerFilter) (*EraseResult, error) {
	if l == nil || dev == nil || l.AllocMap == nil {
		return nil, fmt.Errorf("erase: %w", ErrInvalidArgument)
	}

	res := &EraseResult{}
	matches := l.Matching(pattern, owner)
	if len(matches) == 0 {
		return res, nil
	}

	for _, i := range matches {
		name := entryLabel(&l.Directory[i])
		freed, err := l.EraseEntry(dev, i)
		res.Freed += freed
		if err != nil {
			res.Failures = append(res.Failures, FileError{Name: name, Err: err})
			continue
		}
		res.Erased = append(res.Erased, name)
	}

	if err := l.Flush(dev); err != nil {
		return res, fmt.Errorf("erase: %w", err)
	}
	if len(res.Failures) > 0 {
		return res, fmt.Errorf("erase: %d of %d files: %w", len(res.Failures), len(matches), ErrPartialFailure)
	}
	return res, nil
}

// splitNewName splits NAME.TYPE on its last dot and uppercases both parts
func splitNewName(newName string) (string, string, error) {
	name, typ := newName, ""
	if dot := strings.LastIndexByte(newName, '.'); dot >= 0 {
		name, typ = newName[:dot], newName[dot+1:]
	}
	if len(name) > NameLen {
		return "", "", &ValidationError{Field: "Name", Message: fmt.Sprintf("%q longer than %d characters", name, NameLen), Err: ErrInvalidFilename}
	}
	if len(typ) > TypeLen {
		return "", "", &ValidationError{Field: "Type", Message: fmt.Sprintf("%q longer than %d characters", typ, TypeLen), Err: ErrInvalidFilename}
	}
	return strings.ToUpper(name), strings.ToUpper(typ), nil
}

// Rename gives the single entry matching pattern a new NAME.TYPE and writes
// the directory back. No match is not an error; more than one match is.
// Only the name and type change.
func (l *Layout) Rename(dev SectorDevice, pattern, newName string, owner OwnerFilter) error {
	if l == nil || dev == nil || pattern == "" {
		return fmt.Errorf("rename: %w", ErrInvalidArgument)
	}

	name, typ, err := splitNewName(newName)
	if err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	matches := l.Matching(pattern, owner)
	switch len(matches) {
	case 0:
		return nil
	case 1:
	default:
		return fmt.Errorf("rename %q: %d matches: %w", pattern, len(matches), ErrAmbiguous)
	}

	target := &l.Directory[matches[0]]
	renamed := *target
	if err := renamed.SetName(name, typ); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	for i := range l.Directory {
		if i == matches[0] {
			continue
		}
		e := &l.Directory[i]
		if e.IsValid() && e.OwnerID == target.OwnerID && e.Name == renamed.Name && e.Type == renamed.Type {
			return fmt.Errorf("rename to %s.%s: %w", name, typ, ErrFileExists)
		}
	}

	target.Name, target.Type = renamed.Name, renamed.Type
	if err := l.WriteDirectory(dev); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
