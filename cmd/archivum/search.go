package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <archive-dir> <pattern>...",
		Short: "Find entries whose path matches one or more glob patterns",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := archivum.Search(args[0], args[1:])
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(entries)
			}
			for _, e := range entries {
				out.Println(e.Path)
			}
			if !flags.json && !flags.quiet {
				out.Println(fmt.Sprintf("%d match(es)", len(entries)))
			}
			return nil
		},
	}
	return cmd
}
