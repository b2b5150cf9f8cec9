package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newRepairCmd() *cobra.Command {
	var (
		output string
		base   string
		notes  string
	)

	cmd := &cobra.Command{
		Use:   "repair <archive-dir>",
		Short: "Rebuild an index from orphan part files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := archivum.Repair(archivum.RepairOptions{
				ArchiveDir: args[0],
				OutputDir:  output,
				Base:       base,
				Notes:      notes,
			}, time.Now().Unix())
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(idx.IndexHeader)
			}
			out.Success("repaired archive: " + output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output archive directory (required)")
	f.StringVar(&base, "base", "data", "part file base name to look for")
	f.StringVar(&notes, "notes", "", "free-text note stored in the rebuilt index header")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
