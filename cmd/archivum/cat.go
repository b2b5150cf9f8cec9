package main

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newCatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <archive-dir> <entry-path>",
		Short: "Stream a single file's payload to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return archivum.Cat(args[0], args[1], out.Out)
		},
	}
	return cmd
}
