// Package pinecone provides a vector index adapter backed by a hosted
// Pinecone index, speaking the data-plane REST API directly.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/parchment-labs/passage-cli/internal/adapters/driven/vectorindex"
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// upsertBatchSize keeps writes under Pinecone's recommended
	// batch ceiling.
	upsertBatchSize = 100
)

// Config holds configuration for the Pinecone index.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// Host is the index data-plane URL (required), e.g.
	// https://myindex-abc123.svc.us-east-1.pinecone.io
	Host string

	// Dimensions is the vector size the index was created with (required).
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Index talks to a remote Pinecone index.
type Index struct {
	client     *http.Client
	host       string
	apiKey     string
	dimensions int
}

// vectorPayload is the wire shape of one vector.
type vectorPayload struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}

type upsertRequest struct {
	Vectors   []vectorPayload `json:"vectors"`
	Namespace string          `json:"namespace"`
}

type queryRequest struct {
	Namespace       string    `json:"namespace"`
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace"`
}

type statsResponse struct {
	Namespaces map[string]struct {
		VectorCount int `json:"vectorCount"`
	} `json:"namespaces"`
	Dimension int `json:"dimension"`
}

// New creates a Pinecone index client.
func New(cfg Config) (*Index, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: pinecone API key is required", domain.ErrInvalidConfig)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: pinecone host is required", domain.ErrInvalidConfig)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidConfig, cfg.Dimensions)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		host:       cfg.Host,
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
	}, nil
}

// post sends a JSON request to the data plane and decodes the response
// into out when non-nil. Transport failures and 5xx responses wrap
// domain.ErrVectorIndexUnavailable.
func (idx *Index) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, idx.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", idx.apiKey)

	resp, err := idx.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send request: %w", domain.ErrVectorIndexUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", domain.ErrVectorIndexUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: pinecone (status %d): %s", domain.ErrVectorIndexUnavailable, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Upsert writes entries in batches of at most 100, the shape Pinecone
// recommends for its upsert endpoint.
func (idx *Index) Upsert(ctx context.Context, namespace string, entries []driven.VectorEntry) (int, error) {
	for _, entry := range entries {
		if len(entry.Vector) != idx.dimensions {
			return 0, fmt.Errorf("%w: entry %s has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, entry.ID, len(entry.Vector), idx.dimensions)
		}
	}

	total := 0
	for start := 0; start < len(entries); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		vectors := make([]vectorPayload, len(batch))
		for i, entry := range batch {
			vectors[i] = vectorPayload{
				ID:     entry.ID,
				Values: entry.Vector,
				Metadata: map[string]any{
					"document_id": entry.DocumentID,
					"sequence":    entry.Sequence,
					"text":        entry.Text,
				},
			}
		}

		req := upsertRequest{Vectors: vectors, Namespace: namespace}
		if err := idx.post(ctx, "/vectors/upsert", req, nil); err != nil {
			return total, fmt.Errorf("upserting batch: %w", err)
		}
		total += len(batch)
	}
	return total, nil
}

// Query runs a similarity search. For domain.AllNamespaces the data
// plane offers no cross-namespace query, so each namespace is queried
// in turn and the merged hits re-ranked locally.
func (idx *Index) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]driven.VectorHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if len(vector) != idx.dimensions {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(vector), idx.dimensions)
	}

	targets := []string{namespace}
	if namespace == domain.AllNamespaces {
		names, err := idx.Namespaces(ctx)
		if err != nil {
			return nil, err
		}
		targets = names
	}

	var hits []driven.VectorHit
	for _, target := range targets {
		req := queryRequest{
			Namespace:       target,
			Vector:          vector,
			TopK:            topK,
			IncludeMetadata: true,
		}
		var resp queryResponse
		if err := idx.post(ctx, "/query", req, &resp); err != nil {
			return nil, fmt.Errorf("querying namespace %s: %w", target, err)
		}
		for _, match := range resp.Matches {
			hits = append(hits, driven.VectorHit{
				Entry: entryFromMetadata(match.ID, match.Metadata),
				Score: match.Score,
			})
		}
	}

	vectorindex.SortHits(hits)
	return vectorindex.Truncate(hits, topK), nil
}

// entryFromMetadata rebuilds a VectorEntry from a query match. Vectors
// are not requested back, only the chunk fields needed for hydration.
func entryFromMetadata(id string, metadata map[string]any) driven.VectorEntry {
	entry := driven.VectorEntry{ID: id}
	if documentID, ok := metadata["document_id"].(string); ok {
		entry.DocumentID = documentID
	}
	if sequence, ok := metadata["sequence"].(float64); ok {
		entry.Sequence = int(sequence)
	}
	if text, ok := metadata["text"].(string); ok {
		entry.Text = text
	}
	return entry
}

// Delete removes entries by ID. Pinecone treats absent IDs as a no-op,
// matching the port contract.
func (idx *Index) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	req := deleteRequest{IDs: ids, Namespace: namespace}
	if err := idx.post(ctx, "/vectors/delete", req, nil); err != nil {
		return fmt.Errorf("deleting entries: %w", err)
	}
	return nil
}

// Namespaces lists namespaces that currently hold vectors, sorted.
func (idx *Index) Namespaces(ctx context.Context) ([]string, error) {
	var resp statsResponse
	if err := idx.post(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("describing index: %w", err)
	}

	names := make([]string, 0, len(resp.Namespaces))
	for name, stats := range resp.Namespaces {
		if stats.VectorCount > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Dimensions returns the vector size the index accepts.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Close releases resources.
func (idx *Index) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
