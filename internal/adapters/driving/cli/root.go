// Package cli provides the zenji command tree.
//
// Commands reach the core through package-level driving ports. They are
// wired on first use from the resolved settings, and tests replace them
// with fakes before executing rootCmd.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zenji/internal/core/ports/driving"
	"github.com/custodia-labs/zenji/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose    bool
	configPath string
	jsonOutput bool
)

// Driving ports used by the commands.
var (
	settingsService driving.SettingsService
	ingestService   driving.IngestService
	folderWatcher   driving.FolderWatcher
	dialogService   driving.DialogService
	askService      driving.AskService
	statsService    driving.StatsService
)

var rootCmd = &cobra.Command{
	Use:   "zenji",
	Short: "Flower essence knowledge base and guided intake",
	Long: `Zenji indexes flower essence literature and answers from it.

Ingest PDFs and other documents into a vector index, ask grounded questions
with citations, or run a short guided conversation that ends with essence
suggestions drawn from the indexed material.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.zenji/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()
	defer closeRuntime()

	return rootCmd.ExecuteContext(ctx)
}
