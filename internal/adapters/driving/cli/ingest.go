package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/logger"
)

var folderExtensions []string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the index",
	Long: `Extracts the text of a document page by page, splits it into overlapping
chunks, embeds them and adds every chunk not already indexed.

Supported formats: .pdf, .docx, .odt, .rtf, .html, .htm, .txt, .md`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var ingestFolderCmd = &cobra.Command{
	Use:   "ingest-folder [dir]",
	Short: "Ingest every document under a folder",
	Long: `Walks the folder recursively and ingests each matching document in name order.
Documents that fail are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestFolder,
}

var ingestWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest documents as they appear in a folder",
	Long: `Watches the folder and its subfolders and ingests every supported document
that is created or modified. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestWatch,
}

func init() {
	ingestFolderCmd.Flags().StringSliceVar(&folderExtensions, "ext", nil, "file extensions to ingest (default .pdf)")
	ingestCmd.AddCommand(ingestWatchCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(ingestFolderCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	if !ingestService.Supports(path) {
		return reportIngest(cmd, domain.IngestResult{
			File:       filepath.Base(path),
			Error:      domain.MsgUnsupportedFile,
			StatusCode: http.StatusBadRequest,
		}, domain.ErrUnsupportedFormat)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	res, err := ingestService.IngestDocument(cmd.Context(), raw, path)
	return reportIngest(cmd, res, err)
}

func runIngestFolder(cmd *cobra.Command, args []string) error {
	var overrides []func(*domain.AppSettings)
	if cmd.Flags().Changed("ext") {
		overrides = append(overrides, func(s *domain.AppSettings) {
			s.Ingest.Extensions = folderExtensions
		})
	}
	if err := ensureServices(cmd.Context(), overrides...); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	res, err := ingestService.IngestFolder(cmd.Context(), args[0])
	return reportIngest(cmd, res, err)
}

func runIngestWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if folderWatcher == nil {
		return errors.New("folder watcher not configured")
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return folderWatcher.Watch(cmd.Context(), args[0], func(res domain.IngestResult, err error) {
		if rerr := reportIngest(cmd, res, err); rerr != nil {
			logger.Warn("%v", rerr)
		}
	})
}

// reportIngest prints a result. Failures are returned so the process exits non-zero;
// an all-duplicates run is reported but is not a failure.
func reportIngest(cmd *cobra.Command, res domain.IngestResult, err error) error {
	resp := res.Response()
	if resp.Msg == "" && err != nil {
		resp.Msg = err.Error()
	}

	if jsonOutput {
		if perr := printJSON(cmd, resp); perr != nil {
			return perr
		}
	} else {
		printIngest(cmd, resp)
	}

	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

func printIngest(cmd *cobra.Command, resp domain.IngestResponse) {
	name := resp.File
	switch {
	case !resp.OK && resp.Msg != "":
		if name != "" {
			cmd.Printf("%s: %s\n", name, resp.Msg)
		} else {
			cmd.Println(resp.Msg)
		}
	case resp.Files > 0:
		cmd.Printf("Ingested %d chunks from %d files in %.2fs\n", resp.Chunks, resp.Files, resp.Seconds)
	default:
		cmd.Printf("Ingested %d chunks from %s in %.2fs\n", resp.Chunks, name, resp.Seconds)
	}
}
