package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect intake sessions",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the state and transcript of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if dialogService == nil {
		return errors.New("dialog service not configured")
	}

	state, err := dialogService.GetSession(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("session lookup failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, state)
	}

	cmd.Printf("Stage:    %s\n", state.Stage)
	cmd.Printf("Feelings: %s\n", strings.Join(state.Feelings, ", "))
	if state.Context != "" {
		cmd.Printf("Context:  %s\n", state.Context)
	}
	if state.Duration != "" {
		cmd.Printf("Duration: %s\n", state.Duration)
	}
	if state.Goal != "" {
		cmd.Printf("Goal:     %s\n", state.Goal)
	}
	cmd.Println()
	for _, turn := range state.Turns {
		cmd.Printf("%s: %s\n", turn.Role, turn.Content)
	}
	return nil
}
