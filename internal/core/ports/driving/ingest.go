package driving

import (
	"context"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// IngestOrchestrator coordinates the chunk, embed, and index pipeline.
//
// Ingestion is all-or-nothing per document: every chunk is embedded before
// the index is touched, and a failure leaves previously indexed content
// unchanged. Re-ingesting an existing document ID replaces its chunks.
type IngestOrchestrator interface {
	// IngestText ingests already-extracted text under the given document ID.
	// An empty ID gets a generated one. Empty text yields a document with
	// zero chunks, not an error.
	IngestText(ctx context.Context, documentID, text string) (*IngestReport, error)

	// IngestRaw extracts the raw bytes using the extractor registered for
	// their format, then ingests the text.
	IngestRaw(ctx context.Context, raw domain.RawDocument) (*IngestReport, error)

	// IngestFile reads a file, infers its format from the extension,
	// and ingests it under its base name.
	IngestFile(ctx context.Context, path string) (*IngestReport, error)

	// Reindex replays stored chunks and embeddings into the vector index.
	// Returns the number of chunks written. Used after switching index
	// backends or recovering a lost index file.
	Reindex(ctx context.Context) (int, error)

	// Status returns ingest progress for a document, or nil when no ingest
	// has been observed for it.
	Status(ctx context.Context, documentID string) (*IngestStatus, error)
}

// IngestReport summarises a completed ingest.
type IngestReport struct {
	// DocumentID is the identity the document was stored under.
	DocumentID string

	// ChunkCount is how many chunks were produced and indexed.
	ChunkCount int

	// Replaced is true when a previous version of the document existed.
	Replaced bool
}

// IngestStatus represents the current state of an ingest operation.
type IngestStatus struct {
	// DocumentID identifies the document.
	DocumentID string

	// Running indicates if the ingest is currently in progress.
	Running bool

	// ChunksProcessed is the count of chunks embedded so far.
	ChunksProcessed int

	// ChunkTotal is the total number of chunks in this ingest.
	ChunkTotal int

	// ErrorCount is the number of errors encountered.
	ErrorCount int
}
