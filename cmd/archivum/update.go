package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newUpdateCmd() *cobra.Command {
	var (
		output      string
		excludes    []string
		compression string
		zstdLevel   int
		splitGB     float64
		splitFiles  int
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "update <old-archive-dir> <source-dir>",
		Short: "Produce a new archive reusing unchanged file payloads from an old one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := parseCompression(compression)
			if err != nil {
				return err
			}
			if flags.dryRun {
				out.Dry("update " + args[0] + " against " + args[1] + " into " + output)
				return nil
			}
			idx, err := archivum.Update(archivum.UpdateOptions{
				OldArchiveDir:   args[0],
				SourceRoot:      args[1],
				OutputDir:       output,
				ExcludePatterns: excludes,
				Compression:     comp,
				ZstdLevel:       zstdLevel,
				SplitBytes:      uint64(splitGB * (1 << 30)),
				SplitFiles:      splitFiles,
				Notes:           notes,
			}, time.Now().Unix())
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(idx.IndexHeader)
			}
			out.Success("updated archive: " + output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output archive directory (required)")
	f.StringSliceVar(&excludes, "exclude", nil, "doublestar exclude glob pattern (repeatable)")
	f.StringVar(&compression, "compress", "gzip", "compression codec: none, gzip, zstd, bzip2, lz4")
	f.IntVar(&zstdLevel, "zstd-level", 3, "zstd level 1-22")
	f.Float64Var(&splitGB, "split-gb", 4, "cap on uncompressed bytes per part, in GiB")
	f.IntVar(&splitFiles, "split-files", 0, "cap on entries per part (0 = unbounded)")
	f.StringVar(&notes, "notes", "", "free-text note stored in the index header")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
