package domain

// RawDocument represents opaque bytes handed to the ingest boundary
// before extraction.
type RawDocument struct {
	// Name is the caller-supplied identity (file name, path, title).
	// When empty the ingest pipeline generates one.
	Name string

	// Format tags the byte payload so the right extractor is chosen.
	Format Format

	// Content is the raw bytes.
	Content []byte
}

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeCreated indicates a new document.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified document.
	ChangeUpdated

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// RawDocumentChange represents a change event observed by the watch
// service. Deleted documents carry only the Name of what disappeared.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected document.
	Document RawDocument
}
