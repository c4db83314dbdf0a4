package driving

import (
	"context"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// QueryService provides retrieval capabilities to external actors.
// Queries are read-only and safe to run concurrently with each other
// and with ingestion.
type QueryService interface {
	// Query returns the most relevant chunks for the query text.
	Query(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.SearchResult, error)

	// Ask retrieves context for the query and hands it to the responder.
	Ask(ctx context.Context, query string, opts domain.QueryOptions) (*domain.Answer, error)
}
