package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// defaultToolLimit caps results when the caller does not ask for a count.
const defaultToolLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find document chunks"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Mode  string `json:"mode,omitempty" jsonschema:"retrieval mode: vector, keyword, or hybrid (default vector)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID      string   `json:"chunk_id"`
	DocumentID   string   `json:"document_id"`
	DocumentName string   `json:"document_name"`
	Sequence     int      `json:"sequence"`
	Score        float64  `json:"score"`
	Highlights   []string `json:"highlights,omitempty"`
	Text         string   `json:"text,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of context chunks to retrieve (default 10)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string               `json:"answer"`
	Sources []SearchResultOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search across all indexed documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded in the indexed documents",
	}, s.handleAsk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}

	opts := domain.QueryOptions{TopK: limit, Mode: domain.QueryMode(input.Mode)}
	results, err := s.ports.Query.Query(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: resultOutputs(results),
		Count:   len(results),
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}

	opts := domain.QueryOptions{TopK: limit}
	answer, err := s.ports.Query.Ask(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Sources: resultOutputs(answer.Results),
	}

	return nil, output, nil
}

func resultOutputs(results []domain.SearchResult) []SearchResultOutput {
	outputs := make([]SearchResultOutput, len(results))
	for i := range results {
		outputs[i] = SearchResultOutput{
			ChunkID:      results[i].Chunk.ID,
			DocumentID:   results[i].Chunk.DocumentID,
			DocumentName: results[i].DocumentName,
			Sequence:     results[i].Chunk.Sequence,
			Score:        results[i].Score,
			Highlights:   results[i].Highlights,
			Text:         results[i].Chunk.Text,
		}
	}
	return outputs
}
