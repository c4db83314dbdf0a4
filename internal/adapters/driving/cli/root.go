// Package cli implements the passage command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
	"github.com/parchment-labs/passage-cli/internal/logger"
)

// version is overridden at build time via ldflags.
var version = "dev"

// verbose enables debug logging on every command.
var verbose bool

// Services used by the command handlers. Wired by SetServices before
// Execute runs.
var (
	ingestService   driving.IngestOrchestrator
	queryService    driving.QueryService
	documentService driving.DocumentService
	watchService    driving.WatchService
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "passage",
	Short: "Search your documents from the terminal",
	Long: `Passage ingests local documents, chunks and embeds them, and serves
vector, keyword, and hybrid search over the result. The ask command
generates answers grounded in the retrieved chunks.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services bundles everything the commands depend on.
type Services struct {
	Ingest    driving.IngestOrchestrator
	Query     driving.QueryService
	Documents driving.DocumentService
	Watch     driving.WatchService
	Settings  driving.SettingsService
}

// SetServices wires the command handlers to their services.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	documentService = s.Documents
	watchService = s.Watch
	settingsService = s.Settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context. Commands
// that serve until cancelled (watch, mcp serve, tui) inherit it.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
