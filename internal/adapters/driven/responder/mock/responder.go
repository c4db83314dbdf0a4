// Package mock provides a deterministic responder for development and
// tests. It never calls a model: answers are assembled from the top
// retrieval hit, or a canned reply when the context is too thin.
package mock

import (
	"context"
	"fmt"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// Ensure Responder implements the interfaces.
var (
	_ driven.Responder        = (*Responder)(nil)
	_ driven.PromptStoreAware = (*Responder)(nil)
)

// DefaultRelevanceThreshold is the minimum top-hit score before the
// responder grounds its answer on the retrieved context.
const DefaultRelevanceThreshold = 0.5

// contextPreviewRunes bounds how much of the top chunk is echoed back.
const contextPreviewRunes = 300

// defaultInsufficientReply answers empty queries and empty result sets.
const defaultInsufficientReply = "Insufficient context or query."

// defaultNoContextReply answers queries whose best hit scored at or
// below the relevance threshold.
const defaultNoContextReply = "The provided context doesn't seem sufficiently relevant. " +
	"Consider refining your query or providing more specific information."

// Config holds configuration for the mock responder.
type Config struct {
	// RelevanceThreshold is the minimum top-hit score for a grounded
	// answer (default: 0.5).
	RelevanceThreshold float64
}

// Responder generates canned context-aware answers without a model.
type Responder struct {
	threshold   float64
	promptStore driven.PromptStore
}

// New creates a mock responder.
func New(cfg Config) *Responder {
	if cfg.RelevanceThreshold == 0 {
		cfg.RelevanceThreshold = DefaultRelevanceThreshold
	}
	return &Responder{threshold: cfg.RelevanceThreshold}
}

// Respond builds an answer from the best retrieval hit. Results are
// expected best first, as the query service returns them.
func (r *Responder) Respond(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	if query == "" || len(results) == 0 {
		return defaultInsufficientReply, nil
	}

	best := results[0]
	if best.Score <= r.threshold {
		return r.loadPrompt(driven.PromptNoContext, defaultNoContextReply), nil
	}

	name := best.DocumentName
	if name == "" {
		name = best.Chunk.DocumentID
	}

	return fmt.Sprintf(
		"Based on the context from '%s', here's a focused response to: %s\n\n"+
			"Context: %s...\n\n"+
			"Response: [Simulated context-aware response]",
		name, query, preview(best.Chunk.Text),
	), nil
}

// SetPromptStore sets the prompt store for loading customisable replies.
// If not set, the responder uses hardcoded defaults.
func (r *Responder) SetPromptStore(store driven.PromptStore) {
	r.promptStore = store
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (r *Responder) loadPrompt(name, fallback string) string {
	if r.promptStore == nil {
		return fallback
	}
	prompt, err := r.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// preview returns at most contextPreviewRunes runes of text.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= contextPreviewRunes {
		return text
	}
	return string(runes[:contextPreviewRunes])
}
