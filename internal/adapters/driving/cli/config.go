package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and configure retrieval settings, AI providers, and the vector
index backend.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runConfigWizard,
}

var configModeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Set the default query mode",
	Long: `Set the query mode used when a search does not name one.

Available modes:
  vector   - Embedding similarity (needs an embedding provider)
  keyword  - Full-text term matching (no setup required)
  hybrid   - Both, fused with reciprocal rank fusion`,
	RunE: runConfigMode,
}

var configTopKCmd = &cobra.Command{
	Use:   "topk [n]",
	Short: "Set the default result count",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigTopK,
}

var configChunkingCmd = &cobra.Command{
	Use:   "chunking",
	Short: "Configure the chunker",
	Long: `Set the chunk window size and overlap in characters. Takes effect for
documents ingested afterwards; run 'passage reindex' is not enough, existing
documents keep their chunking until re-ingested.`,
	RunE: runConfigChunking,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Configure the embedding provider used for vector search.`,
	RunE:  runConfigEmbedding,
}

var configResponderCmd = &cobra.Command{
	Use:   "responder",
	Short: "Configure the answer backend",
	Long:  `Configure the backend that generates answers for the ask command.`,
	RunE:  runConfigResponder,
}

var configIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Configure the vector index backend",
	Long:  `Select where embedding vectors are stored: in memory, in a local bolt file, or in Pinecone.`,
	RunE:  runConfigIndex,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configWizardCmd)
	configCmd.AddCommand(configModeCmd)
	configCmd.AddCommand(configTopKCmd)
	configCmd.AddCommand(configChunkingCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configResponderCmd)
	configCmd.AddCommand(configIndexCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Search settings
	cmd.Println("[Search]")
	cmd.Printf("  Mode: %s\n", settings.Search.Mode.Description())
	cmd.Printf("  Top K: %d\n", settings.Search.TopK)
	cmd.Println()

	// Chunking settings
	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Responder settings
	cmd.Println("[Responder]")
	cmd.Printf("  Provider: %s\n", settings.Responder.Provider.Description())
	if settings.Responder.Model != "" {
		cmd.Printf("  Model: %s\n", settings.Responder.Model)
	}
	if settings.Responder.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Responder.BaseURL)
	}
	if settings.Responder.Provider.RequiresAPIKey() {
		if settings.Responder.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Responder.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status = "configured"
	if !settings.Responder.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Vector index settings
	cmd.Println("[Vector Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend.Description())
	if settings.Index.Backend == domain.IndexBackendBolt && settings.Index.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Index.Path)
	}
	if settings.Index.Backend == domain.IndexBackendPinecone {
		cmd.Printf("  Host: %s\n", settings.Index.Host)
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'passage config wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Passage Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	// Step 1: Query Mode
	cmd.Println("Step 1: Select Query Mode")
	cmd.Println("-------------------------")
	modes := domain.AllQueryModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	modeIdx := parseChoice(input, len(modes), 1)
	selectedMode := modes[modeIdx-1]

	if err := settingsService.SetQueryMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set query mode: %w", err)
	}
	cmd.Printf("Set query mode to: %s\n\n", selectedMode.Description())

	// Step 2: Configure Embedding Provider (if needed)
	if selectedMode.RequiresEmbedding() {
		cmd.Println("Step 2: Configure Embedding Provider")
		cmd.Println("------------------------------------")
		cmd.Println("Your query mode uses vector search. Please configure an embedding provider.")
		cmd.Println()

		if err := configureEmbeddingProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Step 2: Embedding Provider (skipped)")
		cmd.Println("------------------------------------")
		cmd.Println("Not required for keyword-only retrieval.")
		cmd.Println()
	}

	// Step 3: Answer backend for the ask command
	cmd.Println("Step 3: Configure Answer Backend")
	cmd.Println("--------------------------------")
	cmd.Println("The ask command needs a responder to generate answers.")
	cmd.Println()

	if err := configureResponderProvider(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runConfigMode(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Query Mode")
	cmd.Println("-----------------")
	modes := domain.AllQueryModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice: ")
	input := readLine(reader)
	idx := parseChoice(input, len(modes), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selectedMode := modes[idx-1]
	if err := settingsService.SetQueryMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set query mode: %w", err)
	}

	cmd.Printf("Query mode set to: %s\n", selectedMode.Description())

	// Check if additional configuration is needed
	if selectedMode.RequiresEmbedding() {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && !settings.Embedding.IsConfigured() {
			cmd.Println("\nNote: This mode requires an embedding provider.")
			cmd.Println("Run 'passage config embedding' to configure.")
		}
	}

	return nil
}

func runConfigTopK(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	topK, err := strconv.Atoi(args[0])
	if err != nil || topK <= 0 {
		return fmt.Errorf("top K must be a positive number, got %q", args[0])
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	settings.Search.TopK = topK
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Default result count set to %d.\n", topK)
	return nil
}

func runConfigChunking(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Chunk size in characters [%d]: ", settings.Chunking.ChunkSize)
	chunkSize := parseNumber(readLine(reader), settings.Chunking.ChunkSize)

	cmd.Printf("Overlap in characters [%d]: ", settings.Chunking.Overlap)
	overlap := parseNumber(readLine(reader), settings.Chunking.Overlap)

	if err := settingsService.SetChunking(chunkSize, overlap); err != nil {
		return fmt.Errorf("failed to set chunking: %w", err)
	}

	cmd.Printf("Chunking set to %d characters with %d overlap.\n", chunkSize, overlap)
	cmd.Println("Documents keep their current chunking until re-ingested.")
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureEmbeddingProvider(cmd, reader)
}

func runConfigResponder(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureResponderProvider(cmd, reader)
}

func runConfigIndex(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Vector Index Backend")
	backends := domain.AllIndexBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(backends), 1)
	selected := backends[idx-1]

	switch selected {
	case domain.IndexBackendBolt:
		cmd.Print("Index file path (empty = default location): ")
		settings.Index.Path = readLine(reader)

	case domain.IndexBackendPinecone:
		cmd.Print("Pinecone index host URL: ")
		settings.Index.Host = readLine(reader)
		cmd.Print("Pinecone API key: ")
		settings.Index.APIKey = readPassword()
		cmd.Println()
		if settings.Index.Host == "" || settings.Index.APIKey == "" {
			return errors.New("pinecone needs both a host and an API key")
		}

	case domain.IndexBackendMemory:
		// Nothing to configure
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := settingsService.SetIndexBackend(selected); err != nil {
		return fmt.Errorf("failed to set index backend: %w", err)
	}

	cmd.Printf("Vector index backend set to: %s\n", selected.Description())
	if selected != domain.IndexBackendMemory {
		cmd.Println("Run 'passage reindex' to rebuild the index from stored chunks.")
	}
	return nil
}

//nolint:dupl // Similar to configureResponderProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for answers - intentional for CLI flow clarity
func configureResponderProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Answer Backend")
	providers := domain.AllResponderProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultResponderModels()
	defaultModel := defaults[selectedProvider]
	model := defaultModel
	if defaultModel != "" {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		model = readLine(reader)
		if model == "" {
			model = defaultModel
		}
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetResponderProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure answer backend: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateResponderConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("responder configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Answer backend configured: %s\n\n", selectedProvider.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// parseNumber parses a non-negative number, falling back to the default
// on empty or invalid input.
func parseNumber(input string, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 0 {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
