// file: pkg/diskimg/errors.go

package diskimg

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrFileNotFound    = errors.New("file not found")
	ErrNoSpace         = errors.New("not enough free space")
	ErrDirectoryFull   = errors.New("directory is full")
	ErrCorruptChain    = errors.New("sequential chain is inconsistent")
	ErrBufferTooSmall  = errors.New("buffer too small")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrFileExists      = errors.New("file already exists")
	ErrAmbiguous       = errors.New("pattern matches more than one file")
	ErrDoubleFree      = errors.New("block is already free")
	ErrOutOfRange      = errors.New("block out of range")
	ErrNoAllocationMap = errors.New("allocation map not loaded")
	ErrFileTooLarge    = errors.New("file too large")
	ErrShortRead       = errors.New("short read")
	ErrShortWrite      = errors.New("short write")
	ErrPartialFailure  = errors.New("some files could not be processed")
	ErrInvalidLayout   = errors.New("invalid disk layout")
)
