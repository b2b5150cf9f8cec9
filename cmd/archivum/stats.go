package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <archive-dir>",
		Short: "Report size and compression ratio for an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := archivum.Stats(args[0])
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(report)
			}
			out.Println(fmt.Sprintf("files:       %d", report.Header.TotalFiles))
			out.Println(fmt.Sprintf("dirs:        %d", report.Header.TotalDirs))
			out.Println(fmt.Sprintf("symlinks:    %d", report.Header.TotalSymlinks))
			out.Println(fmt.Sprintf("parts:       %d", report.Header.TotalParts))
			out.Println(fmt.Sprintf("total size:  %d bytes", report.Header.TotalSize))
			out.Println(fmt.Sprintf("on disk:     %d bytes", report.CompressedSize))
			out.Println(fmt.Sprintf("ratio:       %.2fx", report.CompressionRatio))
			return nil
		},
	}
	return cmd
}
