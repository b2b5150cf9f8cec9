package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/archivum"
)

func newPruneCmd() *cobra.Command {
	var (
		maxAgeDays int
		keepMin    int
	)

	cmd := &cobra.Command{
		Use:   "prune <archive-dir>...",
		Short: "Delete old archive directories from a rotation, keeping a minimum count",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mtimes := make(map[string]int64, len(args))
			for _, dir := range args {
				info, err := os.Stat(dir)
				if err != nil {
					return err
				}
				mtimes[dir] = info.ModTime().Unix()
			}
			cutoff := time.Now().AddDate(0, 0, -maxAgeDays).Unix()

			if flags.dryRun {
				out.Dry("prune candidates older than cutoff, keeping newest")
				return nil
			}

			removed, err := archivum.Prune(args, mtimes, cutoff, keepMin)
			if err != nil {
				return err
			}
			if flags.json {
				return out.JSONOut(removed)
			}
			for _, r := range removed {
				out.Println("removed: " + r)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&maxAgeDays, "max-age-days", 30, "delete archives older than this many days")
	f.IntVar(&keepMin, "keep-min", 1, "always keep at least this many of the newest archives")
	return cmd
}
