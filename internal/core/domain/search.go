package domain

// AllNamespaces queries every namespace in the vector index at once.
const AllNamespaces = "ALL"

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// TopK is the maximum number of results. Zero means the default.
	TopK int

	// Mode selects the retrieval strategy. Empty means the configured
	// default (vector).
	Mode QueryMode

	// Namespace restricts the query to one index namespace.
	// Empty or AllNamespaces searches everywhere.
	Namespace string
}

// SearchResult represents a single retrieval hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the relevance score. For vector mode this is the cosine
	// similarity in [-1, 1]; identical vectors score 1.0.
	Score float64

	// DocumentName is the display name of the owning document.
	DocumentName string

	// Highlights contains snippets with matched terms (keyword mode only).
	Highlights []string
}

// Answer is the responder's reply to a question, together with the
// retrieved context it was grounded on.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Results are the retrieval hits handed to the responder.
	Results []SearchResult
}
