package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, c.chunkSize)
		}
		if c.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, c.overlap)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		c, err := New(WithChunkSize(500), WithOverlap(50))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ChunkSize() != 500 {
			t.Errorf("expected chunkSize 500, got %d", c.ChunkSize())
		}
		if c.Overlap() != 50 {
			t.Errorf("expected overlap 50, got %d", c.Overlap())
		}
	})

	t.Run("zero chunk size rejected", func(t *testing.T) {
		if _, err := New(WithChunkSize(0)); !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("negative chunk size rejected", func(t *testing.T) {
		if _, err := New(WithChunkSize(-10)); !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		if _, err := New(WithChunkSize(100), WithOverlap(-1)); !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("overlap equal to chunk size rejected", func(t *testing.T) {
		if _, err := New(WithChunkSize(100), WithOverlap(100)); !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("overlap above chunk size rejected", func(t *testing.T) {
		if _, err := New(WithChunkSize(100), WithOverlap(150)); !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"run of spaces", "hello    world", "hello world"},
		{"tabs and newlines", "hello\t\nworld", "hello world"},
		{"leading and trailing", "  hello world \n", "hello world"},
		{"only whitespace", " \t\n ", ""},
		{"empty", "", ""},
		{"mixed runs", "a \t b\n\n\nc", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalise(tt.in); got != tt.want {
				t.Errorf("Normalise(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunker_Chunk_Empty(t *testing.T) {
	c, _ := New(WithChunkSize(100), WithOverlap(20))

	if chunks := c.Chunk("doc", ""); chunks != nil {
		t.Errorf("expected nil chunks for empty text, got %d", len(chunks))
	}
	if chunks := c.Chunk("doc", "   \n\t "); chunks != nil {
		t.Errorf("expected nil chunks for whitespace-only text, got %d", len(chunks))
	}
}

func TestChunker_Chunk_SingleWindow(t *testing.T) {
	c, _ := New(WithChunkSize(100), WithOverlap(20))

	chunks := c.Chunk("doc", "This is a small piece of content.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	got := chunks[0]
	if got.Text != "This is a small piece of content." {
		t.Errorf("unexpected chunk text %q", got.Text)
	}
	if got.Sequence != 0 {
		t.Errorf("expected sequence 0, got %d", got.Sequence)
	}
	if got.StartOffset != 0 || got.EndOffset != len([]rune(got.Text)) {
		t.Errorf("unexpected offsets [%d, %d)", got.StartOffset, got.EndOffset)
	}
	if got.ID != domain.ChunkID("doc", 0) {
		t.Errorf("unexpected chunk ID %q", got.ID)
	}
}

func TestChunker_Chunk_WindowOffsets(t *testing.T) {
	// 250 runes with size 100 and overlap 20 must produce exactly the
	// windows [0,100), [80,180), [160,250).
	c, _ := New(WithChunkSize(100), WithOverlap(20))

	chunks := c.Chunk("doc", strings.Repeat("x", 250))
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantOffsets := [][2]int{{0, 100}, {80, 180}, {160, 250}}
	for i, want := range wantOffsets {
		if chunks[i].StartOffset != want[0] || chunks[i].EndOffset != want[1] {
			t.Errorf("chunk %d: offsets [%d, %d), want [%d, %d)",
				i, chunks[i].StartOffset, chunks[i].EndOffset, want[0], want[1])
		}
		if chunks[i].Sequence != i {
			t.Errorf("chunk %d: sequence %d", i, chunks[i].Sequence)
		}
		runeLen := len([]rune(chunks[i].Text))
		if runeLen != want[1]-want[0] {
			t.Errorf("chunk %d: text length %d, want %d", i, runeLen, want[1]-want[0])
		}
	}
}

func TestChunker_Chunk_ExactMultiple(t *testing.T) {
	c, _ := New(WithChunkSize(50), WithOverlap(0))

	chunks := c.Chunk("doc", strings.Repeat("a", 100))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].EndOffset != 50 || chunks[1].StartOffset != 50 || chunks[1].EndOffset != 100 {
		t.Errorf("unexpected offsets: [%d,%d) [%d,%d)",
			chunks[0].StartOffset, chunks[0].EndOffset,
			chunks[1].StartOffset, chunks[1].EndOffset)
	}
}

func TestChunker_Chunk_CoversNormalisedText(t *testing.T) {
	// Taking each chunk's first stride runes plus the whole final chunk
	// reconstructs the normalised text.
	c, _ := New(WithChunkSize(10), WithOverlap(3))

	text := "The quick brown fox jumps over the lazy dog near the river bank"
	normalised := Normalise(text)
	chunks := c.Chunk("doc", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	stride := c.ChunkSize() - c.Overlap()
	var rebuilt []rune
	for i, chunk := range chunks {
		runes := []rune(chunk.Text)
		if i == len(chunks)-1 {
			rebuilt = append(rebuilt, runes...)
		} else {
			rebuilt = append(rebuilt, runes[:stride]...)
		}
	}

	if string(rebuilt) != normalised {
		t.Errorf("reconstructed %q, want %q", string(rebuilt), normalised)
	}
}

func TestChunker_Chunk_MultibyteRunes(t *testing.T) {
	// Offsets count runes, not bytes.
	c, _ := New(WithChunkSize(4), WithOverlap(1))

	chunks := c.Chunk("doc", "日本語のテキストです")
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	for _, chunk := range chunks {
		runeLen := len([]rune(chunk.Text))
		if chunk.EndOffset-chunk.StartOffset != runeLen {
			t.Errorf("chunk %d: offsets [%d, %d) span %d runes",
				chunk.Sequence, chunk.StartOffset, chunk.EndOffset, runeLen)
		}
	}

	if chunks[0].Text != "日本語の" {
		t.Errorf("unexpected first window %q", chunks[0].Text)
	}
}

func TestChunker_Chunk_Deterministic(t *testing.T) {
	c, _ := New(WithChunkSize(20), WithOverlap(5))

	text := "identical input must give identical chunks every time"
	first := c.Chunk("doc", text)
	second := c.Chunk("doc", text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Text != second[i].Text {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunker_Chunk_NormalisesBeforeWindowing(t *testing.T) {
	c, _ := New(WithChunkSize(100), WithOverlap(0))

	chunks := c.Chunk("doc", "hello\t\t\nworld   again")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "hello world again" {
		t.Errorf("expected normalised text, got %q", chunks[0].Text)
	}
}
