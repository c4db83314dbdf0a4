package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parchment-labs/passage-cli/internal/chunker"
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
	"github.com/parchment-labs/passage-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestOrchestrator = (*IngestService)(nil)

// IngestService coordinates the extract, chunk, embed, and index pipeline.
type IngestService struct {
	docStore      driven.DocumentStore
	extractors    driven.ExtractorRegistry
	chunker       *chunker.Chunker
	embedder      driven.EmbeddingService
	vectorIndex   driven.VectorIndex
	keywordEngine driven.KeywordEngine

	// Status tracking
	mu            sync.RWMutex
	activeIngests map[string]*driving.IngestStatus

	// Per-document write serialisation
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewIngestService creates a new ingest service.
// The embedder and vectorIndex are optional - if nil, semantic indexing is
// disabled. The keywordEngine is optional - if nil, keyword indexing is
// skipped. At least one of the two index paths should be wired for ingested
// documents to be searchable.
func NewIngestService(
	docStore driven.DocumentStore,
	extractors driven.ExtractorRegistry,
	chunker *chunker.Chunker,
	embedder driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	keywordEngine driven.KeywordEngine,
) *IngestService {
	return &IngestService{
		docStore:      docStore,
		extractors:    extractors,
		chunker:       chunker,
		embedder:      embedder,
		vectorIndex:   vectorIndex,
		keywordEngine: keywordEngine,
		activeIngests: make(map[string]*driving.IngestStatus),
		locks:         make(map[string]*sync.Mutex),
	}
}

// IngestText ingests already-extracted text under the given document ID.
// An empty ID gets a generated one. Empty text yields a document with zero
// chunks and removes any previously indexed content for the ID.
func (s *IngestService) IngestText(ctx context.Context, documentID, text string) (*driving.IngestReport, error) {
	if documentID == "" {
		documentID = uuid.New().String()
	}

	unlock := s.lockDocument(documentID)
	defer unlock()

	return s.ingest(ctx, &domain.Document{
		ID:     documentID,
		Name:   documentID,
		Format: domain.FormatText,
	}, text)
}

// IngestRaw extracts the raw bytes using the extractor registered for their
// format, then ingests the text under the document's name.
func (s *IngestService) IngestRaw(ctx context.Context, raw domain.RawDocument) (*driving.IngestReport, error) {
	name := raw.Name
	if name == "" {
		name = uuid.New().String()
	}

	extractor, ok := s.extractors.ForFormat(raw.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, raw.Format)
	}

	text, err := extractor.Extract(ctx, bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}

	unlock := s.lockDocument(name)
	defer unlock()

	return s.ingest(ctx, &domain.Document{
		ID:     name,
		Name:   name,
		Format: raw.Format,
	}, text)
}

// IngestFile reads a file, infers its format from the extension, and
// ingests it under its base name.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*driving.IngestReport, error) {
	format, ok := domain.FormatFromExtension(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("%w: unrecognised extension %q", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return s.IngestRaw(ctx, domain.RawDocument{
		Name:    filepath.Base(path),
		Format:  format,
		Content: content,
	})
}

// Reindex replays stored chunks and embeddings into the vector index.
// Returns the number of chunks written.
func (s *IngestService) Reindex(ctx context.Context) (int, error) {
	if s.vectorIndex == nil {
		return 0, fmt.Errorf("%w: no vector index configured", domain.ErrVectorIndexUnavailable)
	}
	if s.anyRunning() {
		return 0, fmt.Errorf("reindex: %w", domain.ErrIngestInProgress)
	}

	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	total := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		chunks, err := s.docStore.GetChunks(ctx, doc.ID)
		if err != nil {
			return total, fmt.Errorf("get chunks for %s: %w", doc.ID, err)
		}

		entries := make([]driven.VectorEntry, 0, len(chunks))
		for _, chunk := range chunks {
			if chunk.Embedding == nil {
				continue
			}
			entries = append(entries, driven.EntryFromChunk(chunk))
		}
		if len(entries) == 0 {
			continue
		}

		written, err := s.vectorIndex.Upsert(ctx, doc.ID, entries)
		total += written
		if err != nil {
			return total, fmt.Errorf("reindex %s: %w", doc.ID, err)
		}
	}

	logger.Info("Reindexed %d chunks from %d documents", total, len(docs))
	return total, nil
}

// Status returns ingest progress for a document, or nil when no ingest has
// been observed for it.
func (s *IngestService) Status(_ context.Context, documentID string) (*driving.IngestStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.activeIngests[documentID]
	if !ok {
		return nil, nil
	}

	// Return a copy to avoid race conditions
	snapshot := *status
	return &snapshot, nil
}

// ingest runs the chunk, embed, and index pipeline for one document.
// The caller must hold the document's ingest lock.
func (s *IngestService) ingest(ctx context.Context, doc *domain.Document, text string) (*driving.IngestReport, error) {
	chunks := s.chunker.Chunk(doc.ID, text)
	doc.Content = chunker.Normalise(text)
	doc.ChunkCount = len(chunks)

	s.setStatus(doc.ID, &driving.IngestStatus{
		DocumentID: doc.ID,
		Running:    true,
		ChunkTotal: len(chunks),
	})

	logger.Debug("Ingesting %s: %d chunks", doc.ID, len(chunks))

	report, err := s.indexDocument(ctx, doc, chunks)
	s.finishStatus(doc.ID, err != nil)
	if err != nil {
		return nil, err
	}

	logger.Info("Ingested %s: %d chunks", doc.ID, report.ChunkCount)
	return report, nil
}

// indexDocument embeds the chunks, swaps them into the indexes, and saves
// the document. Embedding happens fully before any index mutation so a
// provider failure leaves previously indexed content unchanged.
func (s *IngestService) indexDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) (*driving.IngestReport, error) {
	replaced := true
	if _, err := s.docStore.GetDocument(ctx, doc.ID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get document: %w", err)
		}
		replaced = false
	}

	priorChunks, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get chunks: %w", err)
	}

	if s.embedder != nil && len(chunks) > 0 {
		if err := s.embedChunks(ctx, doc.ID, chunks); err != nil {
			return nil, err
		}
	}

	if err := s.deleteStale(ctx, doc.ID, priorChunks, chunks); err != nil {
		return nil, err
	}

	if s.vectorIndex != nil && s.embedder != nil && len(chunks) > 0 {
		entries := make([]driven.VectorEntry, len(chunks))
		for i, chunk := range chunks {
			entries[i] = driven.EntryFromChunk(chunk)
		}

		written, err := s.vectorIndex.Upsert(ctx, doc.ID, entries)
		if err != nil {
			s.rollbackEntries(ctx, doc.ID, entries[:written])
			return nil, fmt.Errorf("upsert vectors: %w", err)
		}
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	if s.keywordEngine != nil && len(chunks) > 0 {
		if err := s.keywordEngine.Index(ctx, chunks); err != nil {
			return nil, fmt.Errorf("index keywords: %w", err)
		}
	}

	return &driving.IngestReport{
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
		Replaced:   replaced,
	}, nil
}

// embedChunks fills in every chunk's embedding with one batched call.
func (s *IngestService) embedChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	s.updateStatus(documentID, func(status *driving.IngestStatus) {
		status.ChunksProcessed = len(chunks)
	})
	return nil
}

// deleteStale removes prior chunk IDs that the new chunk set no longer
// covers, so a shrinking document leaves no orphans in the indexes.
func (s *IngestService) deleteStale(ctx context.Context, documentID string, prior, current []domain.Chunk) error {
	if len(prior) == 0 {
		return nil
	}

	currentIDs := make(map[string]struct{}, len(current))
	for _, chunk := range current {
		currentIDs[chunk.ID] = struct{}{}
	}

	var stale []string
	for _, chunk := range prior {
		if _, ok := currentIDs[chunk.ID]; !ok {
			stale = append(stale, chunk.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	if s.vectorIndex != nil {
		if err := s.vectorIndex.Delete(ctx, documentID, stale); err != nil {
			return fmt.Errorf("delete stale vectors: %w", err)
		}
	}
	if s.keywordEngine != nil {
		if err := s.keywordEngine.Delete(ctx, stale); err != nil {
			return fmt.Errorf("delete stale keywords: %w", err)
		}
	}
	return nil
}

// rollbackEntries removes the entries a failed upsert already wrote so the
// index does not serve a partial document.
func (s *IngestService) rollbackEntries(ctx context.Context, namespace string, entries []driven.VectorEntry) {
	if len(entries) == 0 {
		return
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	if err := s.vectorIndex.Delete(ctx, namespace, ids); err != nil {
		logger.Warn("Rollback of %d partial entries for %s failed: %v", len(ids), namespace, err)
	}
}

// lockDocument serialises ingests of the same document while distinct
// documents proceed in parallel. Queries never take these locks.
func (s *IngestService) lockDocument(documentID string) func() {
	s.locksMu.Lock()
	lock, ok := s.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[documentID] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// anyRunning reports whether any ingest is currently in flight.
func (s *IngestService) anyRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, status := range s.activeIngests {
		if status.Running {
			return true
		}
	}
	return false
}

// setStatus records the ingest status for a document.
func (s *IngestService) setStatus(documentID string, status *driving.IngestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeIngests[documentID] = status
}

// updateStatus applies fn to the tracked status, if any.
func (s *IngestService) updateStatus(documentID string, fn func(*driving.IngestStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.activeIngests[documentID]; ok {
		fn(status)
	}
}

// finishStatus marks an ingest as complete.
func (s *IngestService) finishStatus(documentID string, failed bool) {
	s.updateStatus(documentID, func(status *driving.IngestStatus) {
		status.Running = false
		if failed {
			status.ErrorCount++
		}
	})
}
