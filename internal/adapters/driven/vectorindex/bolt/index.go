// Package bolt provides a vector index persisted in a bbolt file.
//
// Entries live in one nested bucket per namespace under a single root
// bucket. Scoring runs in memory over a full namespace scan, which is
// exact and plenty fast for the corpus sizes a local CLI handles.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/parchment-labs/passage-cli/internal/adapters/driven/vectorindex"
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

var bucketNamespaces = []byte("namespaces")

// Config holds configuration for the bolt-backed index.
type Config struct {
	// Path is the index file location (required).
	Path string

	// Dimensions is the vector size the index accepts (required).
	Dimensions int

	// Metric selects the similarity scoring (default: cosine).
	Metric vectorindex.Metric
}

// Index stores vectors in a bbolt database file.
type Index struct {
	db         *bbolt.DB
	dimensions int
	metric     vectorindex.Metric
}

// storedEntry is the JSON shape persisted per chunk.
type storedEntry struct {
	ID         string    `json:"id"`
	Vector     []float32 `json:"vector"`
	DocumentID string    `json:"document_id"`
	Sequence   int       `json:"sequence"`
	Text       string    `json:"text"`
}

func toStored(entry driven.VectorEntry) storedEntry {
	return storedEntry{
		ID:         entry.ID,
		Vector:     entry.Vector,
		DocumentID: entry.DocumentID,
		Sequence:   entry.Sequence,
		Text:       entry.Text,
	}
}

func (s storedEntry) entry() driven.VectorEntry {
	return driven.VectorEntry{
		ID:         s.ID,
		Vector:     s.Vector,
		DocumentID: s.DocumentID,
		Sequence:   s.Sequence,
		Text:       s.Text,
	}
}

// Open creates or opens the index file at cfg.Path.
func Open(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: index path is required", domain.ErrInvalidConfig)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidConfig, cfg.Dimensions)
	}
	if cfg.Metric == "" {
		cfg.Metric = vectorindex.MetricCosine
	}
	if !cfg.Metric.IsValid() {
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidConfig, cfg.Metric)
	}

	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNamespaces)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating root bucket: %w", err)
	}

	return &Index{
		db:         db,
		dimensions: cfg.Dimensions,
		metric:     cfg.Metric,
	}, nil
}

// Upsert inserts or replaces entries by ID. Every entry is validated
// before the transaction starts, and bbolt rolls back on error, so a
// bad batch never lands partially.
func (idx *Index) Upsert(_ context.Context, namespace string, entries []driven.VectorEntry) (int, error) {
	for _, entry := range entries {
		if len(entry.Vector) != idx.dimensions {
			return 0, fmt.Errorf("%w: entry %s has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, entry.ID, len(entry.Vector), idx.dimensions)
		}
	}

	err := idx.db.Update(func(tx *bbolt.Tx) error {
		ns, err := tx.Bucket(bucketNamespaces).CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return fmt.Errorf("creating namespace bucket: %w", err)
		}
		for _, entry := range entries {
			data, err := json.Marshal(toStored(entry))
			if err != nil {
				return fmt.Errorf("marshalling entry %s: %w", entry.ID, err)
			}
			if err := ns.Put([]byte(entry.ID), data); err != nil {
				return fmt.Errorf("writing entry %s: %w", entry.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
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

	var hits []driven.VectorHit
	err := idx.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketNamespaces)

		scan := func(ns *bbolt.Bucket) error {
			return ns.ForEach(func(_, value []byte) error {
				var stored storedEntry
				if err := json.Unmarshal(value, &stored); err != nil {
					return fmt.Errorf("unmarshalling entry: %w", err)
				}
				hits = append(hits, driven.VectorHit{
					Entry: stored.entry(),
					Score: idx.metric.Score(vector, stored.Vector),
				})
				return nil
			})
		}

		if namespace != domain.AllNamespaces {
			ns := root.Bucket([]byte(namespace))
			if ns == nil {
				return nil
			}
			return scan(ns)
		}

		return root.ForEach(func(name, value []byte) error {
			if value != nil {
				return nil // Not a nested bucket.
			}
			return scan(root.Bucket(name))
		})
	})
	if err != nil {
		return nil, err
	}

	vectorindex.SortHits(hits)
	return vectorindex.Truncate(hits, topK), nil
}

// Delete removes entries by ID. Absent IDs are ignored, and a
// namespace emptied by the delete is dropped.
func (idx *Index) Delete(_ context.Context, namespace string, ids []string) error {
	return idx.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketNamespaces)
		ns := root.Bucket([]byte(namespace))
		if ns == nil {
			return nil
		}
		for _, id := range ids {
			if err := ns.Delete([]byte(id)); err != nil {
				return fmt.Errorf("deleting entry %s: %w", id, err)
			}
		}
		if key, _ := ns.Cursor().First(); key == nil {
			if err := root.DeleteBucket([]byte(namespace)); err != nil {
				return fmt.Errorf("dropping empty namespace: %w", err)
			}
		}
		return nil
	})
}

// Namespaces lists namespaces that currently hold entries, sorted.
func (idx *Index) Namespaces(_ context.Context) ([]string, error) {
	var names []string
	err := idx.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNamespaces).ForEach(func(name, value []byte) error {
			if value == nil {
				names = append(names, string(name))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Dimensions returns the vector size the index accepts.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Close releases the underlying database file.
func (idx *Index) Close() error {
	return idx.db.Close()
}
