package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newCreateCmd() *cobra.Command {
	var (
		output      string
		base        string
		excludes    []string
		splitGB     float64
		splitFiles  int
		compression string
		zstdLevel   int
		dedup       bool
		threads     int
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "create <source-dir>",
		Short: "Scan a directory and write a new archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := parseCompression(compression)
			if err != nil {
				return err
			}
			if threads == 0 {
				threads = cfg.Threads
			}

			opts := archivum.CreateOptions{
				SourceRoot:      args[0],
				OutputDir:       output,
				Base:            base,
				ExcludePatterns: excludes,
				SplitBytes:      uint64(splitGB * (1 << 30)),
				SplitFiles:      splitFiles,
				Compression:     comp,
				ZstdLevel:       zstdLevel,
				Dedup:           dedup,
				Threads:         threads,
				Notes:           notes,
			}

			if flags.dryRun {
				out.Dry("create archive at " + output + " from " + args[0])
				return nil
			}

			idx, err := archivum.Create(opts, time.Now().Unix())
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(idx.IndexHeader)
			}
			out.Success("created archive: " + output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output archive directory (required)")
	f.StringVar(&base, "base", "data", "part file base name")
	f.StringSliceVar(&excludes, "exclude", nil, "doublestar exclude glob pattern (repeatable)")
	f.Float64Var(&splitGB, "split-gb", 4, "cap on uncompressed bytes per part, in GiB")
	f.IntVar(&splitFiles, "split-files", 0, "cap on entries per part (0 = unbounded)")
	f.StringVar(&compression, "compress", "gzip", "compression codec: none, gzip, zstd, bzip2, lz4")
	f.IntVar(&zstdLevel, "zstd-level", 3, "zstd level 1-22 (only with --compress zstd)")
	f.BoolVar(&dedup, "dedup", false, "collapse identical file payloads into one stored copy")
	f.IntVar(&threads, "threads", 0, "SHA-256 worker count (0 = config default)")
	f.StringVar(&notes, "notes", "", "free-text note stored in the index header")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func parseCompression(s string) (archivum.Compression, error) {
	switch s {
	case "none":
		return archivum.CompressionNone, nil
	case "gzip":
		return archivum.CompressionGzip, nil
	case "zstd":
		return archivum.CompressionZstd, nil
	case "bzip2":
		return archivum.CompressionBzip2, nil
	case "lz4":
		return archivum.CompressionLZ4, nil
	default:
		return "", &archivum.ArchivumError{Kind: archivum.ErrKindUsageError, Message: "unknown --compress value: " + s}
	}
}
