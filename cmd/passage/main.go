// Command passage is a local-first document search CLI. It ingests
// files into a chunked, embedded index and serves vector, keyword,
// and hybrid retrieval over the result, plus grounded answers.
//
// All state lives under ~/.passage: config.toml, prompt templates,
// and the data directory holding the document store and indexes.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/parchment-labs/passage-cli/internal/adapters/driven/ai"
	"github.com/parchment-labs/passage-cli/internal/adapters/driven/config/file"
	"github.com/parchment-labs/passage-cli/internal/adapters/driven/fswatch"
	"github.com/parchment-labs/passage-cli/internal/adapters/driven/keyword/bleve"
	"github.com/parchment-labs/passage-cli/internal/adapters/driven/storage/sqlite"
	"github.com/parchment-labs/passage-cli/internal/adapters/driving/cli"
	"github.com/parchment-labs/passage-cli/internal/chunker"
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
	"github.com/parchment-labs/passage-cli/internal/core/services"
	"github.com/parchment-labs/passage-cli/internal/extractors"
	"github.com/parchment-labs/passage-cli/internal/logger"
)

func main() {
	// Enable verbose logging before cobra parses flags so component
	// assembly is covered too.
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" || arg == "-v" {
			logger.SetVerbose(true)
			break
		}
	}

	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home, err := os.UserHomeDir()
	if err != nil {
		logger.Error("Resolve home directory: %v", err)
		return err
	}
	configDir := filepath.Join(home, ".passage")
	dataDir := filepath.Join(configDir, "data")

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		logger.Error("Open config store: %v", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		logger.Error("Load settings: %v", err)
		return err
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Error("Open document store: %v", err)
		return err
	}
	defer store.Close()

	keywordEngine, err := bleve.Open(bleve.Config{Path: filepath.Join(dataDir, "keyword.bleve")})
	if err != nil {
		logger.Error("Open keyword index: %v", err)
		return err
	}
	defer keywordEngine.Close()

	// AI-backed components are optional. A misconfigured or unreachable
	// provider degrades to nil and the affected query modes report the
	// problem at call time instead of blocking every command.
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("Embedding service unavailable: %v", err)
		embedder = nil
	}

	dimensions := settings.Embedding.Dimensions
	if embedder != nil {
		dimensions = embedder.Dimensions()
	}

	var vectorIndex driven.VectorIndex
	if index, err := ai.CreateVectorIndex(&settings.Index, dimensions); err != nil {
		logger.Warn("Vector index unavailable: %v", err)
	} else {
		vectorIndex = index
		defer vectorIndex.Close()
	}

	responder, err := ai.CreateAndValidateResponder(&settings.Responder)
	if err != nil {
		logger.Warn("Responder unavailable: %v", err)
		responder = nil
	}
	if aware, ok := responder.(driven.PromptStoreAware); ok {
		prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
		if err != nil {
			logger.Warn("Prompt store unavailable: %v", err)
		} else {
			aware.SetPromptStore(prompts)
		}
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.ChunkSize),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		logger.Error("Configure chunker: %v", err)
		return err
	}

	watcher := fswatch.New(fswatch.Config{})
	defer watcher.Close()

	docStore := store.DocumentStore()
	ingest := services.NewIngestService(docStore, extractors.NewDefault(), splitter, embedder, vectorIndex, keywordEngine)
	query := services.NewQueryService(docStore, keywordEngine, vectorIndex, embedder, responder, settings.Search)
	documents := services.NewDocumentService(docStore, vectorIndex, keywordEngine)
	watch := services.NewWatchService(watcher, ingest, documents)

	// The memory backend starts empty, so replay stored embeddings into
	// it before serving. Persistent backends skip this.
	if settings.Index.Backend == domain.IndexBackendMemory && vectorIndex != nil {
		if n, err := ingest.Reindex(ctx); err != nil {
			logger.Warn("Rebuild vector index: %v", err)
		} else if n > 0 {
			logger.Debug("Rebuilt vector index: %d chunks", n)
		}
	}

	cli.SetServices(cli.Services{
		Ingest:    ingest,
		Query:     query,
		Documents: documents,
		Watch:     watch,
		Settings:  settingsService,
	})
	cli.SetTUIConfig(&cli.TUIConfig{
		QueryService:    query,
		DocumentService: documents,
		IngestService:   ingest,
		SettingsService: settingsService,
	})

	return cli.ExecuteContext(ctx)
}
