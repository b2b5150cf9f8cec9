package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newMergeCmd() *cobra.Command {
	var (
		output      string
		base        string
		compression string
		zstdLevel   int
		splitGB     float64
		splitFiles  int
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "merge <archive-dir>... --output <dir>",
		Short: "Concatenate two or more archives, last-wins on path collision",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := parseCompression(compression)
			if err != nil {
				return err
			}
			idx, err := archivum.Merge(archivum.MergeOptions{
				ArchiveDirs: args,
				OutputDir:   output,
				Base:        base,
				Compression: comp,
				ZstdLevel:   zstdLevel,
				SplitBytes:  uint64(splitGB * (1 << 30)),
				SplitFiles:  splitFiles,
				Notes:       notes,
			}, time.Now().Unix())
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(idx.IndexHeader)
			}
			out.Success("merged archive: " + output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output archive directory (required)")
	f.StringVar(&base, "base", "data", "part file base name")
	f.StringVar(&compression, "compress", "gzip", "compression codec: none, gzip, zstd, bzip2, lz4")
	f.IntVar(&zstdLevel, "zstd-level", 3, "zstd level 1-22")
	f.Float64Var(&splitGB, "split-gb", 4, "cap on uncompressed bytes per part, in GiB")
	f.IntVar(&splitFiles, "split-files", 0, "cap on entries per part (0 = unbounded)")
	f.StringVar(&notes, "notes", "", "free-text note stored in the index header")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
