// Package memory provides an in-memory vector index.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/parchment-labs/passage-cli/internal/adapters/driven/vectorindex"
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Config holds configuration for the in-memory index.
type Config struct {
	// Dimensions is the vector size the index accepts (required).
	Dimensions int

	// Metric selects the similarity scoring (default: cosine).
	Metric vectorindex.Metric
}

// Index keeps vectors in namespace-keyed maps behind a RWMutex.
// Queries take the read lock, so concurrent reads never block each other.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	metric     vectorindex.Metric
	namespaces map[string]map[string]driven.VectorEntry
}

// New creates an empty in-memory index.
func New(cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidConfig, cfg.Dimensions)
	}
	if cfg.Metric == "" {
		cfg.Metric = vectorindex.MetricCosine
	}
	if !cfg.Metric.IsValid() {
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidConfig, cfg.Metric)
	}

	return &Index{
		dimensions: cfg.Dimensions,
		metric:     cfg.Metric,
		namespaces: make(map[string]map[string]driven.VectorEntry),
	}, nil
}

// Upsert inserts or replaces entries by ID. Every entry is validated
// before any write, so a bad entry leaves the namespace untouched.
func (idx *Index) Upsert(_ context.Context, namespace string, entries []driven.VectorEntry) (int, error) {
	for _, entry := range entries {
		if len(entry.Vector) != idx.dimensions {
			return 0, fmt.Errorf("%w: entry %s has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, entry.ID, len(entry.Vector), idx.dimensions)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	ns, ok := idx.namespaces[namespace]
	if !ok {
		ns = make(map[string]driven.VectorEntry, len(entries))
		idx.namespaces[namespace] = ns
	}
	for _, entry := range entries {
		// Copy the vector so later caller mutations cannot reach in.
		entry.Vector = append([]float32(nil), entry.Vector...)
		ns[entry.ID] = entry
	}
	return len(entries), nil
}

// Query scores every entry in scope and returns the topK best.
func (idx *Index) Query(_ context.Context, namespace string, vector []float32, topK int) ([]driven.VectorHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if len(vector) != idx.dimensions {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(vector), idx.dimensions)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var hits []driven.VectorHit
	for name, ns := range idx.namespaces {
		if namespace != domain.AllNamespaces && name != namespace {
			continue
		}
		for _, entry := range ns {
			hits = append(hits, driven.VectorHit{
				Entry: entry,
				Score: idx.metric.Score(vector, entry.Vector),
			})
		}
	}

	vectorindex.SortHits(hits)
	return vectorindex.Truncate(hits, topK), nil
}

// Delete removes entries by ID. Absent IDs are ignored.
func (idx *Index) Delete(_ context.Context, namespace string, ids []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	ns, ok := idx.namespaces[namespace]
	if !ok {
		return nil
	}
	for _, id := range ids {
		delete(ns, id)
	}
	if len(ns) == 0 {
		delete(idx.namespaces, namespace)
	}
	return nil
}

// Namespaces lists namespaces that currently hold entries, sorted.
func (idx *Index) Namespaces(_ context.Context) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	names := make([]string, 0, len(idx.namespaces))
	for name := range idx.namespaces {
		names = append(names, name)
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
	return nil
}
