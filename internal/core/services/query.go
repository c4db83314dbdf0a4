package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/parchment-labs/passage-cli/internal/chunker"
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
	"github.com/parchment-labs/passage-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// rrfConstant dampens the contribution of top ranks during rank fusion,
// so one list cannot dominate the merged ordering.
const rrfConstant = 60

// defaultTopK applies when neither the options nor the settings name one.
const defaultTopK = 5

// scoredChunk holds intermediate retrieval results before hydration.
type scoredChunk struct {
	chunkID    string
	score      float64
	highlights []string
}

// QueryService answers retrieval queries over the indexed corpus.
type QueryService struct {
	docStore      driven.DocumentStore
	keywordEngine driven.KeywordEngine
	vectorIndex   driven.VectorIndex
	embedder      driven.EmbeddingService
	responder     driven.Responder
	defaults      domain.SearchSettings
}

// NewQueryService creates a new query service.
// The keywordEngine, vectorIndex, embedder, and responder are optional;
// queries degrade to whichever retrieval path is wired.
func NewQueryService(
	docStore driven.DocumentStore,
	keywordEngine driven.KeywordEngine,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	responder driven.Responder,
	defaults domain.SearchSettings,
) *QueryService {
	return &QueryService{
		docStore:      docStore,
		keywordEngine: keywordEngine,
		vectorIndex:   vectorIndex,
		embedder:      embedder,
		responder:     responder,
		defaults:      defaults,
	}
}

// Query returns the most relevant chunks for the query text.
// Either a full valid result list comes back or an error; a failed branch
// never yields a partial ranking.
func (s *QueryService) Query(
	ctx context.Context, query string, opts domain.QueryOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Query Execution")
	logger.Debug("Query: %q", query)

	// Return empty for empty query
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.defaults.TopK
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = domain.AllNamespaces
	}

	mode := s.effectiveMode(opts.Mode)
	logger.Info("Effective query mode: %s", mode.Description())
	logger.Debug("TopK: %d, Namespace: %s", topK, namespace)

	// Keyword hits are namespace-filtered after hydration, so fetch extra
	// candidates when the query is scoped to one document.
	keywordLimit := topK
	if namespace != domain.AllNamespaces {
		keywordLimit = topK * 3
	}

	var chunks []scoredChunk
	var err error

	switch mode {
	case domain.QueryModeKeyword:
		logger.Debug("Executing keyword search")
		chunks, err = s.keywordSearch(ctx, query, keywordLimit)

	case domain.QueryModeHybrid:
		logger.Debug("Executing hybrid search (keyword + vector)")
		chunks, err = s.hybridSearch(ctx, namespace, query, topK, keywordLimit)

	default:
		logger.Debug("Executing vector search")
		chunks, err = s.vectorSearch(ctx, namespace, query, topK)
	}

	if err != nil {
		logger.Warn("Query failed: %v", err)
		return nil, fmt.Errorf("query: %w", err)
	}

	logger.Debug("Raw results: %d chunks", len(chunks))

	// Hydrate results with full chunk and document data
	results, err := s.hydrateResults(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	if namespace != domain.AllNamespaces {
		results = filterByNamespace(results, namespace)
		logger.Debug("After namespace filter: %d results", len(results))
	}

	if len(results) > topK {
		results = results[:topK]
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// Ask retrieves context for the query and hands it to the responder.
func (s *QueryService) Ask(
	ctx context.Context, query string, opts domain.QueryOptions,
) (*domain.Answer, error) {
	if s.responder == nil {
		return nil, fmt.Errorf("%w: no responder configured", domain.ErrResponderUnavailable)
	}

	results, err := s.Query(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	logger.Debug("Generating answer from %d results", len(results))

	text, err := s.responder.Respond(ctx, query, results)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    text,
		Results: results,
	}, nil
}

// effectiveMode resolves the requested mode against the wired backends,
// degrading to whichever retrieval path is available. A mode that cannot
// be served at all is returned unchanged so the search reports the
// missing backend instead of silently returning nothing.
func (s *QueryService) effectiveMode(requested domain.QueryMode) domain.QueryMode {
	mode := requested
	if mode == "" {
		mode = s.defaults.Mode
	}
	if !mode.IsValid() {
		mode = domain.QueryModeVector
	}

	canVector := s.vectorIndex != nil && s.embedder != nil
	canKeyword := s.keywordEngine != nil

	switch mode {
	case domain.QueryModeHybrid:
		if canVector && canKeyword {
			return domain.QueryModeHybrid
		}
		if canVector {
			logger.Warn("Hybrid mode needs a keyword engine, degrading to vector")
			return domain.QueryModeVector
		}
		if canKeyword {
			logger.Warn("Hybrid mode needs a vector index, degrading to keyword")
			return domain.QueryModeKeyword
		}

	case domain.QueryModeKeyword:
		return domain.QueryModeKeyword

	default:
		if canVector {
			return domain.QueryModeVector
		}
		if canKeyword {
			logger.Warn("Vector search unavailable, degrading to keyword")
			return domain.QueryModeKeyword
		}
	}

	return mode
}

// keywordSearch performs full-text search using the keyword engine.
func (s *QueryService) keywordSearch(ctx context.Context, query string, limit int) ([]scoredChunk, error) {
	if s.keywordEngine == nil {
		return nil, fmt.Errorf("%w: no keyword engine configured", domain.ErrSearchUnavailable)
	}

	logger.Debug("Keyword search: query=%q, limit=%d", query, limit)

	hits, err := s.keywordEngine.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	logger.Debug("Keyword search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{
			chunkID:    hit.ChunkID,
			score:      hit.Score,
			highlights: hit.Highlights,
		}
	}

	return results, nil
}

// vectorSearch embeds the query and runs a similarity search.
// The query text is lowercased and whitespace-normalised first, the same
// treatment chunk text received before embedding.
func (s *QueryService) vectorSearch(ctx context.Context, namespace, query string, limit int) ([]scoredChunk, error) {
	if s.vectorIndex == nil {
		return nil, fmt.Errorf("%w: no vector index configured", domain.ErrVectorIndexUnavailable)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingUnavailable)
	}

	logger.Debug("Vector search: query=%q, namespace=%s, limit=%d", query, namespace, limit)

	embedding, err := s.embedder.Embed(ctx, chunker.Normalise(strings.ToLower(query)))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.vectorIndex.Query(ctx, namespace, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	logger.Debug("Vector search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{
			chunkID: hit.Entry.ID,
			score:   hit.Score,
		}
	}

	return results, nil
}

// hybridSearch combines keyword and vector search using RRF.
func (s *QueryService) hybridSearch(ctx context.Context, namespace, query string, vectorLimit, keywordLimit int) ([]scoredChunk, error) {
	logger.Debug("Hybrid search: running keyword and vector searches in parallel")

	var keywordResults, vectorResults []scoredChunk
	var keywordErr, vectorErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		keywordResults, keywordErr = s.keywordSearch(ctx, query, keywordLimit)
	}()

	go func() {
		defer wg.Done()
		vectorResults, vectorErr = s.vectorSearch(ctx, namespace, query, vectorLimit)
	}()

	wg.Wait()

	// Degrade to the surviving branch if one search fails
	if keywordErr != nil && vectorErr != nil {
		return nil, fmt.Errorf("hybrid search: keyword=%w, vector=%w", keywordErr, vectorErr)
	}
	if keywordErr != nil {
		logger.Warn("Hybrid search: keyword branch failed, using vector results only: %v", keywordErr)
		return vectorResults, nil
	}
	if vectorErr != nil {
		logger.Warn("Hybrid search: vector branch failed, using keyword results only: %v", vectorErr)
		return keywordResults, nil
	}

	logger.Debug("Hybrid search: merging %d keyword + %d vector results with RRF",
		len(keywordResults), len(vectorResults))
	merged := reciprocalRankFusion(keywordResults, vectorResults, rrfConstant)
	logger.Debug("Hybrid search: merged to %d results", len(merged))

	return merged, nil
}

// reciprocalRankFusion merges two ranked lists. Each entry contributes
// 1/(k+rank) per list it appears in; k prevents top ranks from dominating.
// Keyword highlights survive the merge. Ties break on ascending chunk ID
// so the fused ordering is deterministic.
func reciprocalRankFusion(list1, list2 []scoredChunk, k int) []scoredChunk {
	scores := make(map[string]float64)
	highlights := make(map[string][]string)

	for rank, chunk := range list1 {
		scores[chunk.chunkID] += 1.0 / float64(k+rank+1)
		if len(chunk.highlights) > 0 {
			highlights[chunk.chunkID] = chunk.highlights
		}
	}
	for rank, chunk := range list2 {
		scores[chunk.chunkID] += 1.0 / float64(k+rank+1)
		if len(chunk.highlights) > 0 {
			highlights[chunk.chunkID] = chunk.highlights
		}
	}

	results := make([]scoredChunk, 0, len(scores))
	for id, score := range scores {
		results = append(results, scoredChunk{
			chunkID:    id,
			score:      score,
			highlights: highlights[id],
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].chunkID < results[j].chunkID
	})

	return results
}

// hydrateResults converts chunk IDs to full SearchResult objects.
// Chunks deleted since the index was searched are skipped.
func (s *QueryService) hydrateResults(ctx context.Context, chunks []scoredChunk) ([]domain.SearchResult, error) {
	if s.docStore == nil {
		return nil, errors.New("document store unavailable")
	}

	results := make([]domain.SearchResult, 0, len(chunks))

	for _, sc := range chunks {
		chunk, err := s.docStore.GetChunk(ctx, sc.chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", sc.chunkID, err)
		}

		doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
		}

		results = append(results, domain.SearchResult{
			Chunk:        *chunk,
			Score:        sc.score,
			DocumentName: doc.Name,
			Highlights:   sc.highlights,
		})
	}

	return results, nil
}

// filterByNamespace keeps results belonging to one document.
func filterByNamespace(results []domain.SearchResult, namespace string) []domain.SearchResult {
	filtered := make([]domain.SearchResult, 0, len(results))
	for _, result := range results {
		if result.Chunk.DocumentID == namespace {
			filtered = append(filtered, result)
		}
	}
	return filtered
}
