// file: cmd/volume/volume.go

// Package volume opens an OASIS image and its layout for the command verbs.
package volume

import (
	"fmt"
	"os"

	"github.com/ha1tch/oasis/pkg/diskimg"
	"github.com/ha1tch/oasis/pkg/sectorio"
)

// Volume is an open image with its loaded layout
type Volume struct {
	Stream *sectorio.Stream
	Layout *diskimg.Layout
}

// Open opens the image at path and loads its layout
func Open(path string, writable bool) (*Volume, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("disk image does not exist: %w", err)
	}

	mode := sectorio.ReadOnly
	if writable {
		mode = sectorio.ReadWrite
	}
	s, err := sectorio.Open(path, mode)
	if err != nil {
		return nil, err
	}

	l, err := diskimg.Load(s)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open disk: %w", err)
	}
	return &Volume{Stream: s, Layout: l}, nil
}

// Close releases the layout and closes the image
func (v *Volume) Close() error {
	if v == nil {
		return nil
	}
	v.Layout.Cleanup()
	return v.Stream.Close()
}
