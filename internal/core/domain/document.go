package domain

import (
	"fmt"
	"time"
)

// Document represents an ingested document with metadata.
// It is the canonical representation after extraction and normalisation.
type Document struct {
	// ID is the unique identifier for the document. Callers supply it
	// (typically a name or path); ingesting under an existing ID replaces
	// the previous version's chunks.
	ID string

	// Name is the human-readable display name.
	Name string

	// Format is the source format the document was extracted from.
	Format Format

	// Content is the full normalised text before chunking.
	Content string

	// ChunkCount is the number of chunks produced at last ingest.
	ChunkCount int

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk represents a searchable window of a document's normalised text.
// Offsets are rune offsets into the normalised content, so
// EndOffset-StartOffset always equals the rune length of Text.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Sequence is the ordinal position within the document, from 0.
	Sequence int

	// Text is the chunk's normalised text.
	Text string

	// StartOffset is the inclusive rune offset where the chunk begins.
	StartOffset int

	// EndOffset is the exclusive rune offset where the chunk ends.
	EndOffset int

	// Embedding is the vector representation for semantic search.
	// Nil until the chunk has been embedded.
	Embedding []float32
}

// ChunkID derives the deterministic chunk identifier for a document and
// sequence position. Re-ingesting a document therefore overwrites its
// previous chunks in the vector index instead of accumulating duplicates.
func ChunkID(documentID string, sequence int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, sequence)
}

// Format identifies a supported source document format.
type Format string

// Supported source formats.
const (
	// FormatText is plain UTF-8 text.
	FormatText Format = "txt"

	// FormatMarkdown is Markdown text.
	FormatMarkdown Format = "md"

	// FormatHTML is an HTML page.
	FormatHTML Format = "html"

	// FormatPDF is a PDF file, extracted via pdftotext.
	FormatPDF Format = "pdf"

	// FormatDocx is a Word document.
	FormatDocx Format = "docx"
)

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatMarkdown, FormatHTML, FormatPDF, FormatDocx:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// FormatFromExtension maps a file extension (with or without the leading
// dot) to a Format. Unknown extensions return false.
func FormatFromExtension(ext string) (Format, bool) {
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	switch ext {
	case "txt", "text", "log":
		return FormatText, true
	case "md", "markdown":
		return FormatMarkdown, true
	case "html", "htm":
		return FormatHTML, true
	case "pdf":
		return FormatPDF, true
	case "docx":
		return FormatDocx, true
	default:
		return "", false
	}
}
