package main

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newRestoreCmd() *cobra.Command {
	var (
		filter      []string
		force       bool
		restorePerm bool
		contOnErr   bool
	)

	cmd := &cobra.Command{
		Use:   "restore <archive-dir> <target-dir>",
		Short: "Rebuild a tree from an archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.dryRun {
				out.Dry("restore " + args[0] + " into " + args[1])
				return nil
			}
			err := archivum.Restore(archivum.RestoreOptions{
				ArchiveDir:         args[0],
				TargetDir:          args[1],
				Filter:             filter,
				Force:              force,
				RestorePermissions: restorePerm,
				ContinueOnError:    contOnErr,
			})
			if err != nil {
				return err
			}
			out.Success("restored into: " + args[1])
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&filter, "filter", nil, "doublestar glob pattern to restrict restore (repeatable)")
	f.BoolVar(&force, "force", false, "overwrite existing files at the target")
	f.BoolVar(&restorePerm, "restore-permissions", true, "apply stored mode bits and mtimes")
	f.BoolVar(&contOnErr, "continue-on-error", false, "keep restoring other parts after a failure and report all failures at the end")
	return cmd
}
