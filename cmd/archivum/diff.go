package main

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newDiffCmd() *cobra.Command {
	var (
		checksum bool
		excludes []string
	)

	cmd := &cobra.Command{
		Use:   "diff <archive-dir> <source-dir>",
		Short: "Compare a live source tree against a previously created archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drift, err := archivum.Diff(archivum.DiffOptions{
				ArchiveDir:      args[0],
				SourceRoot:      args[1],
				Checksum:        checksum,
				ExcludePatterns: excludes,
			})
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(drift)
			}
			for _, d := range drift {
				out.Println(string(d.Kind) + "  " + d.Path)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&checksum, "checksum", false, "compare SHA-256 instead of size+mtime")
	f.StringSliceVar(&excludes, "exclude", nil, "doublestar exclude glob pattern (repeatable)")
	return cmd
}
