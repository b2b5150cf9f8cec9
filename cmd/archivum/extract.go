package main

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newExtractCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "extract <archive-dir> <entry-path> <dest-path>",
		Short: "Retrieve a single file from an archive without touching the rest",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.dryRun {
				out.Dry("extract " + args[1] + " to " + args[2])
				return nil
			}
			if err := archivum.Extract(args[0], args[1], args[2], force); err != nil {
				return err
			}
			out.Success("extracted: " + args[2])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file at the destination")
	return cmd
}
