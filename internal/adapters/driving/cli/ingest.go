package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
)

var (
	ingestText string
	ingestID   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest documents into the index",
	Long: `Reads documents, chunks and embeds their text, and adds them to the
search index. Formats are inferred from file extensions (txt, md,
html, pdf, docx).

Use --text to ingest literal text instead of files. Re-ingesting a
path or ID replaces the previous version of that document.`,
	RunE: runIngest,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from stored chunks",
	Long: `Replays every stored chunk embedding into the vector index.
Use this after switching index backends or recovering a lost index file.`,
	RunE: runReindex,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "ingest literal text instead of files")
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID for --text (generated when empty)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()

	if ingestText != "" {
		report, err := ingestService.IngestText(ctx, ingestID, ingestText)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		printIngestReport(cmd, report)
		return nil
	}

	if len(args) == 0 {
		return errors.New("nothing to ingest: pass file paths or --text")
	}

	for _, path := range args {
		cmd.Printf("Ingesting %s...\n", path)

		report, err := ingestFileWithProgress(ctx, cmd, path)
		if err != nil {
			return fmt.Errorf("ingest %s failed: %w", path, err)
		}
		printIngestReport(cmd, report)
	}

	return nil
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	cmd.Println("Rebuilding vector index...")

	count, err := ingestService.Reindex(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Reindexed %d chunks.\n", count)
	return nil
}

// ingestFileWithProgress runs the file ingest while displaying embedding
// progress. Files are stored under their base name, so the document ID is
// known before the ingest starts.
func ingestFileWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	path string,
) (*driving.IngestReport, error) {
	docID := filepath.Base(path)

	type ingestResult struct {
		report *driving.IngestReport
		err    error
	}
	resultCh := make(chan ingestResult, 1)
	go func() {
		report, err := ingestService.IngestFile(ctx, path)
		resultCh <- ingestResult{report: report, err: err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case result := <-resultCh:
			if lastCount > 0 {
				cmd.Println()
			}
			return result.report, result.err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, statusErr := ingestService.Status(ctx, docID)
			if statusErr == nil && status != nil && status.ChunksProcessed > lastCount {
				cmd.Printf("\rEmbedding... %d/%d chunks", status.ChunksProcessed, status.ChunkTotal)
				lastCount = status.ChunksProcessed
			}
		}
	}
}

func printIngestReport(cmd *cobra.Command, report *driving.IngestReport) {
	if report.Replaced {
		cmd.Printf("Updated %s: %d chunks indexed.\n", report.DocumentID, report.ChunkCount)
		return
	}
	cmd.Printf("Ingested %s: %d chunks indexed.\n", report.DocumentID, report.ChunkCount)
}
