package driven

import (
	"context"
	"io"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// Extractor decodes a raw byte stream of a specific format into plain text.
// Extraction failures wrap domain.ErrDocumentUnreadable, which aborts
// ingestion of the affected document.
type Extractor interface {
	// Formats returns the source formats this extractor handles.
	Formats() []domain.Format

	// Extract reads the byte stream and returns the contained text.
	Extract(ctx context.Context, r io.Reader) (string, error)
}

// ExtractorRegistry selects the extractor for a document format.
type ExtractorRegistry interface {
	// ForFormat returns the extractor registered for the format.
	ForFormat(format domain.Format) (Extractor, bool)

	// Formats returns every format with a registered extractor.
	Formats() []domain.Format
}
