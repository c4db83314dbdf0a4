package driven

import (
	"context"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for durable metadata storage, or memory for tests.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks replaces the document's chunk set with the given chunks.
	// An empty slice clears the set.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when the document does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by sequence.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	// Deleting an absent document is a no-op.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, most recently updated first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Close releases resources.
	Close() error
}
