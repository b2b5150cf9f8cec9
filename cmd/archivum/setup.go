package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/internal/config"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively write a config.toml with your preferred defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			cur := cfg

			cur.Compression = promptString(reader, "default compression [none/gzip/zstd/bzip2/lz4]", cur.Compression)
			cur.Threads = promptInt(reader, "SHA-256 worker threads", cur.Threads)
			cur.SplitGB = promptFloat(reader, "split size in GiB", cur.SplitGB)
			cur.Dedup = promptBool(reader, "dedup identical files by default", cur.Dedup)

			if err := config.Save(cur); err != nil {
				return err
			}
			out.Success("wrote " + config.ConfigPath())
			return nil
		},
	}
}

func promptString(r *bufio.Reader, label, def string) string {
	fmt.Fprintf(out.Out, "%s [%s]: ", label, def)
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func promptInt(r *bufio.Reader, label string, def int) int {
	s := promptString(r, label, strconv.Itoa(def))
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func promptFloat(r *bufio.Reader, label string, def float64) float64 {
	s := promptString(r, label, strconv.FormatFloat(def, 'g', -1, 64))
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return n
}

func promptBool(r *bufio.Reader, label string, def bool) bool {
	s := strings.ToLower(promptString(r, label, boolWord(def)))
	switch s {
	case "y", "yes", "true":
		return true
	case "n", "no", "false":
		return false
	default:
		return def
	}
}

func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
