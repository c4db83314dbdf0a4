package driven

import (
	"context"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// Responder turns a query and its retrieved context into an answer.
//
// The interface is deliberately a single method: the retrieval core treats
// answer generation as an opaque collaborator and never depends on how the
// response is produced. Implementations decide what to do with thin or
// empty context; returning a graceful "not enough context" answer is
// preferred over an error.
//
// Implementations may include:
//   - OpenAI or Ollama chat models
//   - The built-in mock responder used for development and tests
type Responder interface {
	// Respond generates an answer to the query grounded on the results.
	Respond(ctx context.Context, query string, results []domain.SearchResult) (string, error)
}
