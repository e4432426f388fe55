package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/logging"
)

// globals are the settings shared by every command.
type globals struct {
	DataDir  string `env:"FIELDSIM_DATA" envDefault:".fieldsim"`
	LogLevel string `env:"FIELDSIM_LOG_LEVEL" envDefault:"info"`
}

var (
	opts globals
	log  *slog.Logger
)

func main() {
	if err := env.Parse(&opts); err != nil {
		fmt.Fprintln(os.Stderr, "fieldsim:", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "fieldsim",
		Short:         "explicit finite-difference field evolution lab",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(opts.LogLevel)
			if err != nil {
				return err
			}
			log = logging.NewLogger(os.Stderr, level)
			slog.SetDefault(log)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.DataDir, "data", opts.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newShowCmd(),
		newExportCmd(),
		newPresetsCmd(),
		newSweepCmd(),
		newEnsembleCmd(),
		newWatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if log == nil {
			log = logging.NewLogger(os.Stderr, slog.LevelInfo)
		}
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
