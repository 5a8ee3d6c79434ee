// file: cmd/flags.go

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/ha1tch/oasis/pkg/diskimg"
)

// ownerValue is an owner filter flag: a number from 0 to 255, or * for all
type ownerValue struct {
	filter *diskimg.OwnerFilter
}

var _ pflag.Value = ownerValue{}

func (o ownerValue) String() string {
	if o.filter == nil {
		return ""
	}
	return o.filter.String()
}

func (o ownerValue) Set(s string) error {
	if s == "*" {
		*o.filter = diskimg.AnyOwner
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return fmt.Errorf("owner must be 0-255 or *")
	}
	*o.filter = diskimg.OwnerFilter(n)
	return nil
}

func (o ownerValue) Type() string {
	return "owner"
}

// addOwnerFlag registers --owner/-u bound to f, keeping its current value as the default
func addOwnerFlag(fs *pflag.FlagSet, f *diskimg.OwnerFilter, usage string) {
	fs.VarP(ownerValue{filter: f}, "owner", "u", usage)
}

// addQuietFlag registers --quiet/-q
func addQuietFlag(fs *pflag.FlagSet, quiet *bool) {
	fs.BoolVarP(quiet, "quiet", "q", false, "suppress non-error output")
}
