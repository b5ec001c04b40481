package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/zenji/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server",
	Long: `Runs a Model Context Protocol server so AI assistants can ask the
index, ingest folders and run intake sessions.

By default the server speaks JSON-RPC over stdio. Use --http to serve the
streamable HTTP transport instead, e.g. for the MCP Inspector.

Examples:
  zenji mcp
  zenji mcp --http :8080

Desktop client configuration:
  {
    "mcpServers": {
      "zenji": {
        "command": "/path/to/zenji",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Ask:    askService,
		Ingest: ingestService,
		Dialog: dialogService,
		Stats:  statsService,
	})
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		// stdout is free in HTTP mode.
		cmd.Printf("MCP server listening on %s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}
	return server.Run(cmd.Context())
}
