package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newListCmd() *cobra.Command {
	var filter []string

	cmd := &cobra.Command{
		Use:   "list <archive-dir>",
		Short: "List every entry recorded in an archive's index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := archivum.List(args[0], filter)
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(entries)
			}
			for _, e := range entries {
				out.Println(fmt.Sprintf("%-8s %10d  %s", e.EntryType, e.Size, e.Path))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&filter, "filter", nil, "doublestar glob pattern to restrict the listing (repeatable)")
	return cmd
}
