package driven

import (
	"context"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// KeywordEngine provides full-text search operations.
// Backed by Bleve for keyword search over chunk text.
type KeywordEngine interface {
	// Index adds or updates chunks in the search index.
	Index(ctx context.Context, chunks []domain.Chunk) error

	// Delete removes chunks from the search index. Absent IDs are ignored.
	Delete(ctx context.Context, chunkIDs []string) error

	// Search performs a keyword search and returns matching chunk IDs
	// with scores, best first.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// Close releases resources.
	Close() error
}

// SearchHit represents a search result from the keyword engine.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the relevance score assigned by the engine. Scores are
	// comparable only within a single result set.
	Score float64

	// Highlights contains snippet fragments with matched terms.
	Highlights []string
}
