package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askLimit     int
	askMode      string
	askNamespace string
	askSources   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the chunks most relevant to the question and hands them to
the configured responder, which generates an answer grounded in them.

Use --sources to also print the retrieved chunks the answer is based on.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "maximum number of context chunks (0 = configured default)")
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "retrieval mode: vector, keyword, or hybrid")
	askCmd.Flags().StringVar(&askNamespace, "namespace", "", "restrict context to one document ID")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the retrieved chunks after the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	ctx := cmd.Context()
	opts := retrievalOptions(askLimit, askMode, askNamespace)

	answer, err := queryService.Ask(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if askSources && len(answer.Results) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i := range answer.Results {
			name := answer.Results[i].DocumentName
			if name == "" {
				name = answer.Results[i].Chunk.DocumentID
			}
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, name, answer.Results[i].Score)
		}
	}

	return nil
}
