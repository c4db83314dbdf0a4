package driven

import (
	"context"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// VectorIndex stores embeddings and answers nearest-neighbour queries.
// Entries are grouped into namespaces, typically one per document.
//
// All implementations share the same ranking contract: hits are ordered
// by strictly descending score, ties broken by ascending chunk sequence
// and then chunk ID. Queries against a namespace that has never been
// written return an empty slice, not an error.
type VectorIndex interface {
	// Upsert inserts or replaces entries by ID within a namespace and
	// returns the number of entries written.
	Upsert(ctx context.Context, namespace string, entries []VectorEntry) (int, error)

	// Query finds the topK nearest entries to the query vector.
	// Namespace domain.AllNamespaces searches every namespace.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]VectorHit, error)

	// Delete removes entries by ID. IDs that are absent are ignored.
	Delete(ctx context.Context, namespace string, ids []string) error

	// Namespaces lists namespaces that currently hold entries.
	Namespaces(ctx context.Context) ([]string, error)

	// Dimensions returns the vector size the index accepts.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorEntry is a vector plus the chunk fields needed to serve hits
// without a round trip to the document store.
type VectorEntry struct {
	// ID is the chunk ID.
	ID string

	// Vector is the embedding. Its length must match the index dimensions.
	Vector []float32

	// DocumentID is the owning document.
	DocumentID string

	// Sequence is the chunk's ordinal position within the document.
	Sequence int

	// Text is the chunk text, stored for hydration.
	Text string
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Entry is the matched entry.
	Entry VectorEntry

	// Score is the similarity score. Cosine similarity by default,
	// where identical vectors score 1.0.
	Score float64
}

// EntryFromChunk builds the index entry for an embedded chunk.
func EntryFromChunk(chunk domain.Chunk) VectorEntry {
	return VectorEntry{
		ID:         chunk.ID,
		Vector:     chunk.Embedding,
		DocumentID: chunk.DocumentID,
		Sequence:   chunk.Sequence,
		Text:       chunk.Text,
	}
}
