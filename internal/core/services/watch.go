package services

import (
	"context"
	"fmt"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
	"github.com/parchment-labs/passage-cli/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// WatchService keeps watched directories and the document store in step.
// Created and modified files are re-ingested under their base name, which
// doubles as the document ID, so a deletion maps straight back to the
// document it created.
type WatchService struct {
	watcher   driven.DirectoryWatcher
	ingester  driving.IngestOrchestrator
	documents driving.DocumentService
}

// NewWatchService creates a new watch service. All dependencies are
// required.
func NewWatchService(
	watcher driven.DirectoryWatcher,
	ingester driving.IngestOrchestrator,
	documents driving.DocumentService,
) *WatchService {
	return &WatchService{
		watcher:   watcher,
		ingester:  ingester,
		documents: documents,
	}
}

// Watch blocks, applying filesystem changes as they arrive until the
// context is cancelled or the watcher stops. A change that fails to apply
// is logged and skipped, the watch itself keeps running.
func (s *WatchService) Watch(ctx context.Context, dirs []string) error {
	changes, err := s.watcher.Watch(ctx, dirs)
	if err != nil {
		return fmt.Errorf("start watch: %w", err)
	}

	logger.Info("Watching %d directories for document changes", len(dirs))

	var applied, failed int
	for change := range changes {
		if err := s.apply(ctx, change); err != nil {
			failed++
			logger.Warn("Watch change failed: %v", err)
			continue
		}
		applied++
	}

	logger.Info("Watch finished: %d changes applied, %d failed", applied, failed)
	return nil
}

// apply routes one change to the ingest or delete path.
func (s *WatchService) apply(ctx context.Context, change domain.RawDocumentChange) error {
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		report, err := s.ingester.IngestRaw(ctx, change.Document)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", change.Document.Name, err)
		}
		logger.Debug("Applied change for %s: %d chunks", report.DocumentID, report.ChunkCount)
		return nil

	case domain.ChangeDeleted:
		if err := s.documents.Delete(ctx, change.Document.Name); err != nil {
			return fmt.Errorf("delete %s: %w", change.Document.Name, err)
		}
		logger.Debug("Removed document for deleted file %s", change.Document.Name)
		return nil

	default:
		return nil
	}
}
