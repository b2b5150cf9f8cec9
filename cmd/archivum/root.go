package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fulmenhq/archivum/archivum"
	"github.com/fulmenhq/archivum/internal/config"
	"github.com/fulmenhq/archivum/internal/logging"
	"github.com/fulmenhq/archivum/internal/output"
)

const version = "0.1.0"

// globalFlags holds the flags spec section 6.1 says every subcommand
// recognizes.
type globalFlags struct {
	quiet   bool
	json    bool
	dryRun  bool
	logFile string
}

var flags globalFlags
var out *output.Context
var cfg config.Config
var log *logging.Logger

// run builds the root command, executes it, and returns the process
// exit code. Exit codes follow spec section 6.1: 0 success, 1 operation
// failure, 2 usage error. Only an *archivum.ArchivumError of the usage
// kind maps to 2; argument and flag errors raised by cobra itself are
// plain errors and exit with 1.
func run() int {
	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "archivum: config: %v\n", err)
		return int(archivum.ExitFailure)
	}
	cfg = loaded

	root := &cobra.Command{
		Use:           "archivum",
		Short:         "Deterministic, content-verifiable directory archiver",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out = output.New(flags.quiet, flags.json, flags.dryRun)
			if flags.logFile == "" {
				flags.logFile = cfg.LogFile
			}
			logger, err := logging.New(logging.Config{LogFile: flags.logFile, Quiet: flags.quiet})
			if err != nil {
				return err
			}
			log = logger.With(zap.String("run_id", uuid.New().String()))
			log.Info("command started", zap.String("command", cmd.Name()))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&flags.quiet, "quiet", false, "suppress human-readable output")
	pf.BoolVar(&flags.json, "json", false, "emit structured JSON output")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "report actions without performing writes")
	pf.StringVar(&flags.logFile, "log-file", "", "write structured logs to this file instead of stderr")

	root.AddCommand(
		newCreateCmd(),
		newListCmd(),
		newRestoreCmd(),
		newVerifyCmd(),
		newDiffCmd(),
		newSearchCmd(),
		newStatsCmd(),
		newInfoCmd(),
		newExtractCmd(),
		newCatCmd(),
		newUpdateCmd(),
		newMergeCmd(),
		newPruneCmd(),
		newRepairCmd(),
		newCompletionsCmd(),
		newSetupCmd(),
		newConfigCmd(),
	)

	if err := root.Execute(); err != nil {
		if log != nil {
			log.Error("command failed", zap.Error(err))
			_ = log.Sync()
		}
		if ae, ok := err.(*archivum.ArchivumError); ok {
			fmt.Fprintf(os.Stderr, "archivum: %v\n", ae)
			return int(ae.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "archivum: %v\n", err)
		return int(archivum.ExitFailure)
	}
	if log != nil {
		log.Info("command finished")
		_ = log.Sync()
	}
	return int(archivum.ExitSuccess)
}
