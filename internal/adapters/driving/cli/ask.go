package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

var (
	askK     int
	askWhere map[string]string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question of the indexed documents",
	Long: `Retrieves the passages nearest to the question and answers using only them.
The answer lists the sources and pages it drew on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askK, "k", 0, "number of passages to retrieve (default top_k)")
	askCmd.Flags().StringToStringVar(&askWhere, "where", nil, "metadata filter, e.g. source=bach.pdf,page=3")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if askService == nil {
		return errors.New("ask service not configured")
	}

	req := domain.AskRequest{
		Question: strings.Join(args, " "),
		Where:    domain.MetadataFilter(askWhere),
		K:        askK,
	}

	answer, err := askService.Ask(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	if len(answer.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range answer.Citations {
			cmd.Printf("  - %s\n", formatCitation(c))
		}
	}
	return nil
}

func formatCitation(c domain.Citation) string {
	if c.Page > 0 {
		return fmt.Sprintf("%s, p.%d", c.Source, c.Page)
	}
	return c.Source
}
