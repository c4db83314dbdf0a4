// Package chunker splits normalised text into overlapping fixed-size windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// DefaultChunkSize is the default window width in runes.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of runes shared by consecutive windows.
const DefaultOverlap = 200

// Chunker produces sliding-window chunks over whitespace-normalised text.
// Offsets are rune offsets into the normalised text, so a chunk's
// EndOffset-StartOffset always equals the rune length of its Text.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the window width in runes.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive windows in runes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker with the given options. Parameters that violate
// the windowing contract are rejected rather than silently adjusted.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size %d must be positive: %w", c.chunkSize, domain.ErrInvalidConfig)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("overlap %d must not be negative: %w", c.overlap, domain.ErrInvalidConfig)
	}
	if c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d: %w",
			c.overlap, c.chunkSize, domain.ErrInvalidConfig)
	}

	return c, nil
}

// ChunkSize returns the window width in runes.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the window overlap in runes.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Normalise collapses every whitespace run to a single space and trims
// leading and trailing whitespace. Chunk offsets refer to this form, and
// queries must be normalised the same way before embedding.
func Normalise(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Chunk normalises the text and splits it into windows of up to chunkSize
// runes, each window starting chunkSize-overlap runes after the previous
// one. The final window is truncated at the end of the text. Text that
// normalises to the empty string yields no chunks.
//
// Concatenating each chunk's leading chunkSize-overlap runes plus the full
// final chunk reconstructs the normalised text exactly.
func (c *Chunker) Chunk(documentID, text string) []domain.Chunk {
	normalised := Normalise(text)
	if normalised == "" {
		return nil
	}

	runes := []rune(normalised)
	total := len(runes)
	stride := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, total/stride+1)

	sequence := 0
	for start := 0; start < total; start += stride {
		end := start + c.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:          domain.ChunkID(documentID, sequence),
			DocumentID:  documentID,
			Sequence:    sequence,
			Text:        string(runes[start:end]),
			StartOffset: start,
			EndOffset:   end,
		})
		sequence++

		// The window that reaches the end of the text is the last one,
		// even when a further stride would still start inside the text.
		if end == total {
			break
		}
	}

	return chunks
}
