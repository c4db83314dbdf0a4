package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// snippetRunes bounds the chunk text preview in table output.
const snippetRunes = 120

var (
	queryLimit     int
	queryMode      string
	queryNamespace string
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search indexed documents",
	Long: `Retrieves the most relevant chunks for the query text.

Modes:
  vector   - embedding similarity (default)
  keyword  - full-text term matching with highlighted snippets
  hybrid   - both, fused with reciprocal rank fusion`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	queryCmd.Flags().StringVarP(&queryMode, "mode", "m", "", "retrieval mode: vector, keyword, or hybrid")
	queryCmd.Flags().StringVar(&queryNamespace, "namespace", "", "restrict results to one document ID")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	ctx := cmd.Context()
	opts := retrievalOptions(queryLimit, queryMode, queryNamespace)

	results, err := queryService.Query(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputResultsJSON(cmd, results)
	}

	return outputResultsTable(cmd, results)
}

// retrievalOptions assembles query options from command flags.
func retrievalOptions(limit int, mode, namespace string) domain.QueryOptions {
	return domain.QueryOptions{
		TopK:      limit,
		Mode:      domain.QueryMode(mode),
		Namespace: namespace,
	}
}

// resultView is the JSON shape for one search result. The raw domain
// result drags the full embedding vector along, which no consumer of the
// CLI output wants.
type resultView struct {
	ChunkID      string   `json:"chunk_id"`
	DocumentID   string   `json:"document_id"`
	DocumentName string   `json:"document_name"`
	Sequence     int      `json:"sequence"`
	Score        float64  `json:"score"`
	Text         string   `json:"text"`
	Highlights   []string `json:"highlights,omitempty"`
}

func outputResultsJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	views := make([]resultView, len(results))
	for i, result := range results {
		views[i] = resultView{
			ChunkID:      result.Chunk.ID,
			DocumentID:   result.Chunk.DocumentID,
			DocumentName: result.DocumentName,
			Sequence:     result.Chunk.Sequence,
			Score:        result.Score,
			Text:         result.Chunk.Text,
			Highlights:   result.Highlights,
		}
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultsTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		name := results[i].DocumentName
		if name == "" {
			name = results[i].Chunk.DocumentID
		}

		snippet := ""
		if len(results[i].Highlights) > 0 {
			snippet = results[i].Highlights[0]
		} else {
			snippet = truncateText(results[i].Chunk.Text, snippetRunes)
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, name, results[i].Score)
		if snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}

	return nil
}

// truncateText cuts text to at most limit runes, marking the cut with an
// ellipsis.
func truncateText(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
