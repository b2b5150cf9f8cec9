package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <archive-dir>",
		Short: "Show an archive's index header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdr, err := archivum.Info(args[0])
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(hdr)
			}
			out.Println(fmt.Sprintf("version:      %d", hdr.Version))
			out.Println(fmt.Sprintf("created:      %s", hdr.CreatedAtHuman))
			out.Println(fmt.Sprintf("compression:  %s", hdr.Compression))
			out.Println(fmt.Sprintf("parts:        %d", hdr.TotalParts))
			out.Println(fmt.Sprintf("notes:        %s", hdr.Notes))
			return nil
		},
	}
	return cmd
}
