// file: cmd/main.go

package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/ha1tch/oasis/cmd/check"
	"github.com/ha1tch/oasis/cmd/copyin"
	"github.com/ha1tch/oasis/cmd/create"
	"github.com/ha1tch/oasis/cmd/erase"
	"github.com/ha1tch/oasis/cmd/extract"
	"github.com/ha1tch/oasis/cmd/info"
	"github.com/ha1tch/oasis/cmd/label"
	"github.com/ha1tch/oasis/cmd/list"
	"github.com/ha1tch/oasis/cmd/rename"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "oasis",
		Short:         "Manage OASIS disk images",
		Long:          "oasis creates, lists, extracts and modifies raw OASIS disk images.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCreateCommand(),
		newInfoCommand(),
		newListCommand(),
		newExtractCommand(),
		newCopyCommand(),
		newEraseCommand(),
		newRenameCommand(),
		newCheckCommand(),
		newLabelCommand(),
	)
	return root
}

func newCreateCommand() *cobra.Command {
	opts := create.DefaultCreateOptions()
	cmd := &cobra.Command{
		Use:   "create IMAGE",
		Short: "Create an empty OASIS disk image",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return create.Create(args[0], opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.Label, "label", opts.Label, "volume label (<=8 characters)")
	fs.IntVar(&opts.Heads, "heads", opts.Heads, "number of heads")
	fs.IntVar(&opts.Cylinders, "cylinders", opts.Cylinders, "number of cylinders")
	fs.IntVar(&opts.SectorsPerTrack, "spt", opts.SectorsPerTrack, "sectors per track")
	fs.IntVar(&opts.DirEntries, "dir-entries", opts.DirEntries, "directory entries")
	fs.BoolVar(&opts.WriteProtect, "wp", opts.WriteProtect, "write protect the new volume")
	fs.BoolVar(&opts.Format, "format", opts.Format, "fill every sector with the format pattern")
	fs.BoolVarP(&opts.Force, "force", "f", opts.Force, "overwrite an existing image")
	addQuietFlag(fs, &opts.Quiet)
	return cmd
}

func newInfoCommand() *cobra.Command {
	opts := info.DefaultInfoOptions()
	cmd := &cobra.Command{
		Use:   "info IMAGE",
		Short: "Show volume information",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return info.Info(args[0], opts)
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&opts.JSON, "json", opts.JSON, "output JSON")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "show disk parameters")
	fs.BoolVar(&opts.Validate, "validate", opts.Validate, "check the allocation map")
	addQuietFlag(fs, &opts.Quiet)
	return cmd
}

func newListCommand() *cobra.Command {
	opts := list.DefaultListOptions()
	cmd := &cobra.Command{
		Use:     "list IMAGE [PATTERN]",
		Aliases: []string{"dir", "ls"},
		Short:   "List the directory",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				opts.Pattern = args[1]
			}
			return list.List(args[0], opts)
		},
	}
	fs := cmd.Flags()
	addOwnerFlag(fs, &opts.Owner, "owner to list, or *")
	fs.BoolVar(&opts.JSON, "json", opts.JSON, "output JSON")
	fs.BoolVarP(&opts.Long, "long", "l", opts.Long, "show sector and format fields")
	fs.StringVar(&opts.Sort, "sort", opts.Sort, "sort by name, size, type, date or none")
	fs.BoolVarP(&opts.Reverse, "reverse", "r", opts.Reverse, "reverse the sort order")
	addQuietFlag(fs, &opts.Quiet)
	return cmd
}

func newExtractCommand() *cobra.Command {
	opts := extract.DefaultExtractOptions()
	cmd := &cobra.Command{
		Use:   "extract IMAGE [PATTERN]",
		Short: "Copy files from the image to the host",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				opts.Pattern = args[1]
			}
			_, err := extract.Extract(args[0], opts)
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.OutputDir, "output", "o", opts.OutputDir, "directory to write files to")
	addOwnerFlag(fs, &opts.Owner, "owner to extract, or *")
	fs.BoolVarP(&opts.ASCII, "ascii", "a", opts.ASCII, "convert text files to host line endings")
	addQuietFlag(fs, &opts.Quiet)
	return cmd
}

func newCopyCommand() *cobra.Command {
	opts := copyin.DefaultCopyOptions()
	cmd := &cobra.Command{
		Use:     "copy IMAGE FILE...",
		Aliases: []string{"add"},
		Short:   "Copy host files into the image",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return copyin.Copy(args[0], args[1:], opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.Name, "name", "n", opts.Name, "OASIS name for a single file, e.g. PROG.ABS_A_256_1A00")
	fs.IntVarP(&opts.Owner, "owner", "u", opts.Owner, "owner id of the new files")
	fs.BoolVarP(&opts.ASCII, "ascii", "a", opts.ASCII, "convert text files to OASIS line endings")
	addQuietFlag(fs, &opts.Quiet)
	return cmd
}

func newEraseCommand() *cobra.Command {
	opts := erase.DefaultEraseOptions()
	cmd := &cobra.Command{
		Use:     "erase IMAGE PATTERN",
		Aliases: []string{"delete", "rm"},
		Short:   "Erase matching files",
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := erase.Erase(args[0], args[1], opts)
			return err
		},
	}
	fs := cmd.Flags()
	addOwnerFlag(fs, &opts.Owner, "owner to erase from, or *")
	addQuietFlag(fs, &opts.Quiet)
	return cmd
}

func newRenameCommand() *cobra.Command {
	opts := rename.DefaultRenameOptions()
	cmd := &cobra.Command{
		Use:   "rename IMAGE PATTERN NEWNAME",
		Short: "Rename a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return rename.Rename(args[0], args[1], args[2], opts)
		},
	}
	fs := cmd.Flags()
	addOwnerFlag(fs, &opts.Owner, "owner of the file")
	addQuietFlag(fs, &opts.Quiet)
	return cmd
}

func newCheckCommand() *cobra.Command {
	opts := check.DefaultCheckOptions()
	cmd := &cobra.Command{
		Use:     "check IMAGE [PATTERN]",
		Aliases: []string{"chkdsk"},
		Short:   "Check the allocation map against the directory",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				opts.Pattern = args[1]
			}
			_, err := check.Check(args[0], opts)
			return err
		},
	}
	addQuietFlag(cmd.Flags(), &opts.Quiet)
	return cmd
}

func newLabelCommand() *cobra.Command {
	opts := label.DefaultLabelOptions()
	cmd := &cobra.Command{
		Use:   "label IMAGE [LABEL]",
		Short: "Relabel, write protect or clear a volume",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				opts.Label = args[1]
				opts.SetLabel = true
			}
			return label.Label(args[0], opts)
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&opts.Protect, "wp", opts.Protect, "set write protection")
	fs.BoolVar(&opts.Unprotect, "nowp", opts.Unprotect, "clear write protection")
	fs.BoolVar(&opts.Clear, "clear", opts.Clear, "erase every file")
	addQuietFlag(fs, &opts.Quiet)
	return cmd
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("oasis: ")

	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
