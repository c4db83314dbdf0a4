package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
	"github.com/parchment-labs/passage-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents.
type DocumentService struct {
	docStore      driven.DocumentStore
	vectorIndex   driven.VectorIndex
	keywordEngine driven.KeywordEngine
}

// NewDocumentService creates a new document service.
// The vectorIndex and keywordEngine are optional - if nil, deletion
// skips the corresponding index.
func NewDocumentService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	keywordEngine driven.KeywordEngine,
) *DocumentService {
	return &DocumentService{
		docStore:      docStore,
		vectorIndex:   vectorIndex,
		keywordEngine: keywordEngine,
	}
}

// List returns all documents, most recently updated first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetContent returns the document's stored text.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

// GetDetails returns document metadata for display.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return &driving.DocumentDetails{
		ID:            doc.ID,
		Name:          doc.Name,
		Format:        doc.Format,
		ChunkCount:    doc.ChunkCount,
		ContentLength: utf8.RuneCountInString(doc.Content),
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

// Delete removes a document everywhere: vector index, keyword index, and
// the document store. Deleting an unknown ID is a no-op. Indexes are
// cleaned before the store so a failure leaves the document listed and
// the delete retryable.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get document: %w", err)
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get chunks: %w", err)
	}

	chunkIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
	}

	if s.vectorIndex != nil && len(chunkIDs) > 0 {
		if err := s.vectorIndex.Delete(ctx, documentID, chunkIDs); err != nil {
			return fmt.Errorf("delete vectors: %w", err)
		}
	}
	if s.keywordEngine != nil && len(chunkIDs) > 0 {
		if err := s.keywordEngine.Delete(ctx, chunkIDs); err != nil {
			return fmt.Errorf("delete keywords: %w", err)
		}
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.Info("Deleted %s: %d chunks removed", documentID, len(chunkIDs))
	return nil
}
