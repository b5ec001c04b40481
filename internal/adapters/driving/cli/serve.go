package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/zenji/internal/adapters/driving/rest"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serves ingestion, ask and intake sessions as JSON over HTTP.

Endpoints:
  GET  /health          liveness
  GET  /stats           index statistics
  POST /ingest/pdf      multipart upload, field "file"
  POST /ingest/folder   {"path": "..."}
  POST /session         start an intake session
  GET  /session/{id}    session state
  POST /chat            {"session_id": "...", "message": "..."}
  POST /ask             {"question": "...", "k": 8, "where": {...}}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	server, err := rest.NewServer(&rest.Ports{
		Ingest: ingestService,
		Ask:    askService,
		Dialog: dialogService,
		Stats:  statsService,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Listening on %s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
