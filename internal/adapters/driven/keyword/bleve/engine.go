// Package bleve provides a full-text keyword engine backed by Bleve.
//
// Chunks are indexed with the standard analyzer and searched with a
// match query, which ranks hits by term relevance. The index lives in
// a directory on disk, or in memory when no path is set.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// indexBatchSize bounds how many chunks go into a single bleve batch.
const indexBatchSize = 100

// Config holds keyword engine configuration.
type Config struct {
	// Path is the index directory. Empty opens an in-memory index.
	Path string
}

// Engine implements full-text search over chunks using bleve.
type Engine struct {
	index bleve.Index
}

// Ensure Engine implements the interface.
var _ driven.KeywordEngine = (*Engine)(nil)

// indexedChunk is the document shape handed to bleve. Field names come
// from the json tags and are what queries and highlights address.
type indexedChunk struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
}

// Open opens the keyword index at cfg.Path, creating it when it does
// not exist yet. An empty path opens a throwaway in-memory index.
func Open(cfg Config) (*Engine, error) {
	mapping := bleve.NewIndexMapping()

	if cfg.Path == "" {
		index, err := bleve.NewMemOnly(mapping)
		if err != nil {
			return nil, fmt.Errorf("creating in-memory index: %w", err)
		}
		return &Engine{index: index}, nil
	}

	index, err := bleve.Open(cfg.Path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		index, err = bleve.New(cfg.Path, mapping)
	}
	if err != nil {
		return nil, fmt.Errorf("opening keyword index at %s: %w", cfg.Path, err)
	}
	return &Engine{index: index}, nil
}

// Index adds or updates chunks in the search index. Chunks are indexed
// by ID, so re-indexing a chunk replaces its previous version.
func (e *Engine) Index(ctx context.Context, chunks []domain.Chunk) error {
	batch := e.index.NewBatch()
	for _, chunk := range chunks {
		doc := indexedChunk{
			DocumentID: chunk.DocumentID,
			Text:       chunk.Text,
		}
		if err := batch.Index(chunk.ID, doc); err != nil {
			return fmt.Errorf("adding chunk %s to batch: %w", chunk.ID, err)
		}

		if batch.Size() >= indexBatchSize {
			if err := e.index.Batch(batch); err != nil {
				return fmt.Errorf("indexing batch: %w", err)
			}
			batch = e.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := e.index.Batch(batch); err != nil {
			return fmt.Errorf("indexing batch: %w", err)
		}
	}
	return nil
}

// Delete removes chunks from the search index. Absent IDs are ignored.
func (e *Engine) Delete(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	batch := e.index.NewBatch()
	for _, id := range chunkIDs {
		batch.Delete(id)
	}
	if err := e.index.Batch(batch); err != nil {
		return fmt.Errorf("deleting from index: %w", err)
	}
	return nil
}

// Search runs a match query against the index and returns up to limit
// hits, best first, with highlighted text fragments.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidInput, limit)
	}

	matchQuery := bleve.NewMatchQuery(query)
	request := bleve.NewSearchRequest(matchQuery)
	request.Size = limit
	request.Highlight = bleve.NewHighlight()
	request.Highlight.AddField("text")

	result, err := e.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	hits := make([]driven.SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, driven.SearchHit{
			ChunkID:    hit.ID,
			Score:      hit.Score,
			Highlights: plainFragments(hit.Fragments["text"]),
		})
	}
	return hits, nil
}

// Count returns the number of chunks currently indexed.
func (e *Engine) Count() (uint64, error) {
	return e.index.DocCount()
}

// Close releases the index.
func (e *Engine) Close() error {
	return e.index.Close()
}

// plainFragments strips the <mark> markers the html highlighter wraps
// around matched terms, leaving plain text snippets.
func plainFragments(fragments []string) []string {
	if len(fragments) == 0 {
		return nil
	}
	out := make([]string, len(fragments))
	for i, fragment := range fragments {
		fragment = strings.ReplaceAll(fragment, "<mark>", "")
		fragment = strings.ReplaceAll(fragment, "</mark>", "")
		out[i] = fragment
	}
	return out
}
