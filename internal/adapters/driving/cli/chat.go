package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/zenji/internal/adapters/driving/tui"
	"github.com/custodia-labs/zenji/internal/core/domain"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a guided intake conversation",
	Long: `Runs a short conversation about how you feel, then suggests flower
essences drawn from the indexed documents.

In a terminal this opens the interactive chat UI. When stdin is not a
terminal, or with --plain, messages are read one per line and replies
are printed as they arrive. Type /quit to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use line mode even in a terminal")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if dialogService == nil {
		return errors.New("dialog service not configured")
	}

	if !chatPlain && isTerminal(cmd) {
		app, err := tui.NewApp(&tui.Ports{Dialog: dialogService})
		if err != nil {
			return err
		}
		return app.WithContext(cmd.Context()).Run()
	}
	return runChatLines(cmd)
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runChatLines reads one message per line until the conversation ends or input runs out.
func runChatLines(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	start, err := dialogService.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	if jsonOutput {
		if err := printJSON(cmd, start); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "zenji> %s\n", start.Greeting)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if !jsonOutput {
			fmt.Fprint(out, "you> ")
		}
		if !scanner.Scan() {
			if !jsonOutput {
				fmt.Fprintln(out)
			}
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		reply, err := dialogService.SubmitTurn(ctx, start.SessionID, line)
		if err != nil {
			// The session is unchanged, so the next line is a retry.
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}

		if jsonOutput {
			if err := printJSON(cmd, reply); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "zenji> %s\n", reply.Reply)
		}
		if reply.Stage == domain.StageEnd {
			return nil
		}
	}
}
