package driving

import (
	"context"
	"time"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns all documents, most recently updated first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the document's stored text.
	GetContent(ctx context.Context, documentID string) (string, error)

	// GetDetails returns document metadata for display.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// Delete removes a document everywhere: vector index, keyword index,
	// and the document store. Deleting an unknown ID is a no-op.
	Delete(ctx context.Context, documentID string) error
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ID is the unique document identifier.
	ID string

	// Name is the human-readable document name.
	Name string

	// Format is the source format.
	Format domain.Format

	// ChunkCount is the number of chunks.
	ChunkCount int

	// ContentLength is the normalised text length in runes.
	ContentLength int

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}
