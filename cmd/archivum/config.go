package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/archivum/internal/config"
)

func newConfigCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}

	root.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the currently loaded config.toml values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.json {
				return out.JSONOut(cfg)
			}
			out.Println(fmt.Sprintf("path:        %s", config.ConfigPath()))
			out.Println(fmt.Sprintf("threads:     %d", cfg.Threads))
			out.Println(fmt.Sprintf("compression: %s", cfg.Compression))
			out.Println(fmt.Sprintf("zstd_level:  %d", cfg.ZstdLevel))
			out.Println(fmt.Sprintf("split_gb:    %g", cfg.SplitGB))
			out.Println(fmt.Sprintf("split_files: %d", cfg.SplitFiles))
			out.Println(fmt.Sprintf("dedup:       %t", cfg.Dedup))
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out.Println(config.ConfigPath())
			return nil
		},
	})

	return root
}
