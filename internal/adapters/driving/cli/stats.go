package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats, err := statsService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Collection: %s\n", stats.Collection)
	cmd.Printf("Chunks:     %d\n", stats.Count)
	cmd.Printf("Backend:    %s\n", stats.Backend)
	cmd.Printf("Location:   %s\n", stats.Location)
	return nil
}
