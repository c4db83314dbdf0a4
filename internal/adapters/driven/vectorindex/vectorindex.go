// Package vectorindex holds the pieces shared by every vector index
// adapter: similarity metrics and the common ranking order.
package vectorindex

import (
	"math"
	"sort"

	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// Metric selects how two vectors are scored.
type Metric string

const (
	// MetricCosine scores by cosine similarity; identical directions
	// score 1.0.
	MetricCosine Metric = "cosine"

	// MetricDotProduct scores by raw dot product. Equivalent to cosine
	// when vectors are unit length, without the normalisation cost.
	MetricDotProduct Metric = "dot"
)

// IsValid reports whether the metric is known.
func (m Metric) IsValid() bool {
	switch m {
	case MetricCosine, MetricDotProduct:
		return true
	}
	return false
}

// Score computes the similarity between two vectors of equal length.
func (m Metric) Score(a, b []float32) float64 {
	if m == MetricDotProduct {
		return dotProduct(a, b)
	}
	return cosine(a, b)
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SortHits orders hits by descending score, ties broken by ascending
// chunk sequence and then chunk ID. Every adapter sorts through here
// so rankings stay identical across backends.
func SortHits(hits []driven.VectorHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Entry.Sequence != hits[j].Entry.Sequence {
			return hits[i].Entry.Sequence < hits[j].Entry.Sequence
		}
		return hits[i].Entry.ID < hits[j].Entry.ID
	})
}

// Truncate caps the hit list at topK.
func Truncate(hits []driven.VectorHit, topK int) []driven.VectorHit {
	if len(hits) > topK {
		return hits[:topK]
	}
	return hits
}
