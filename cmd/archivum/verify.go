package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newVerifyCmd() *cobra.Command {
	var contOnErr bool

	cmd := &cobra.Command{
		Use:   "verify <archive-dir>",
		Short: "Check the index seal, part presence, and file checksums",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := archivum.Verify(archivum.VerifyOptions{
				ArchiveDir:      args[0],
				ContinueOnError: contOnErr,
			})
			if err != nil {
				return err
			}
			if flags.json {
				if err := out.JSONOut(report); err != nil {
					return err
				}
			} else if report.Ok {
				out.Success(fmt.Sprintf("ok: %d files checked", report.FilesChecked))
			} else {
				if report.TamperedIndex {
					out.Fail("tampered: index seal mismatch")
				}
				for _, p := range report.MissingParts {
					out.Fail(fmt.Sprintf("part missing: %d", p))
				}
				for _, m := range report.ChecksumMismatches {
					out.Fail(fmt.Sprintf("checksum mismatch: %s (expected %s, got %s)", m.Path, m.Expected, m.Got))
				}
			}
			if !report.Ok {
				return &archivum.ArchivumError{Kind: archivum.ErrKindChecksumMismatch, Message: "verify found failures"}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&contOnErr, "continue-on-error", false, "aggregate per-entry failures instead of stopping at the first")
	return cmd
}
