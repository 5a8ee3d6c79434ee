// file: pkg/diskimg/validation.go

package diskimg

import "fmt"

// ValidationError describes a malformed field
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error - %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// validateHeader checks the header fields Load depends on
func (l *Layout) validateHeader() error {
	mapBytes := MapBytesInSector1 + l.FSBlock.AdditionalMapSectors()*SectorSize
	if mapBytes > MaxMapBytes {
		return &ValidationError{
			Field:   "FSBlock.FSFlags",
			Message: fmt.Sprintf("allocation map of %d bytes exceeds %d", mapBytes, MaxMapBytes),
			Err:     ErrInvalidLayout,
		}
	}
	return nil
}

// validateGeometry checks the options used to build a new volume
func validateGeometry(opts *InitOptions) error {
	if opts.Heads < 1 || opts.Heads > 15 {
		return &ValidationError{Field: "Heads", Message: fmt.Sprintf("%d not in 1-15", opts.Heads), Err: ErrInvalidArgument}
	}
	if opts.Cylinders < 1 || opts.Cylinders > 255 {
		return &ValidationError{Field: "Cylinders", Message: fmt.Sprintf("%d not in 1-255", opts.Cylinders), Err: ErrInvalidArgument}
	}
	if opts.SectorsPerTrack < 1 || opts.SectorsPerTrack > 255 {
		return &ValidationError{Field: "SectorsPerTrack", Message: fmt.Sprintf("%d not in 1-255", opts.SectorsPerTrack), Err: ErrInvalidArgument}
	}
	if opts.DirEntries < 1 {
		return &ValidationError{Field: "DirEntries", Message: "at least one directory entry is required", Err: ErrInvalidArgument}
	}
	if len(opts.Label) > NameLen {
		return &ValidationError{Field: "Label", Message: fmt.Sprintf("%q longer than %d characters", opts.Label, NameLen), Err: ErrInvalidArgument}
	}
	return nil
}
