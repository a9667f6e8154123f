// Package main provides sheetctl, the operator CLI for the sync pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/botivate/sheetsync/config"
	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetctl",
		Short: "Operate the spreadsheet sync pipeline",
		Long: `sheetctl runs the sync pipeline operations by hand: extract the
published document, notify the downstream consumer, reset a destination
table, archive a snapshot, or mint an admin token.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded

			if !verbose {
				return nil
			}
			return logger.Initialize(logger.Config{
				Level:       "debug",
				Environment: "development",
				ServiceName: "sheetctl",
				Stderr:      true,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(
		newExtractCmd(),
		newNotifyCmd(),
		newResetCmd(),
		newSnapshotCmd(),
		newTokenCmd(),
	)
	return rootCmd
}
