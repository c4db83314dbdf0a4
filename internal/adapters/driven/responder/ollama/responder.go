// Package ollama provides a responder backed by a locally running
// Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// Ensure Responder implements the interfaces.
var (
	_ driven.Responder        = (*Responder)(nil)
	_ driven.PromptStoreAware = (*Responder)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "llama3.2"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 500
)

// answerTemperature keeps generated answers close to the context.
const answerTemperature = 0.2

// Config holds configuration for the Ollama responder.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the chat model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens caps the answer length (default: 500).
	MaxTokens int
}

// Responder generates answers using the Ollama chat API.
type Responder struct {
	client      *http.Client
	baseURL     string
	model       string
	maxTokens   int
	promptStore driven.PromptStore
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatOptions holds generation parameters.
type chatOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewResponder creates a new Ollama responder.
func NewResponder(cfg Config) *Responder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &Responder{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// defaultAnswerSystemPrompt is the fallback prompt when no PromptStore is configured.
const defaultAnswerSystemPrompt = `You are a careful assistant answering questions about the user's documents.
Use ONLY the provided context. If the context does not contain the answer, say you don't know.
Keep answers concise and mention which document they came from.`

// defaultAnswerUserPrompt is the fallback prompt when no PromptStore is configured.
const defaultAnswerUserPrompt = `Context:
%s

Question: %s

Answer:`

// defaultNoContextReply is returned without calling the API when
// retrieval produced no context to ground an answer on.
const defaultNoContextReply = "I couldn't find anything in your documents relevant to that question."

// Respond answers the query grounded on the retrieved results.
func (r *Responder) Respond(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	if len(results) == 0 {
		return r.loadPrompt(driven.PromptNoContext, defaultNoContextReply), nil
	}

	userTemplate := r.loadPrompt(driven.PromptAnswerUser, defaultAnswerUserPrompt)
	messages := []chatMessage{
		{Role: "system", Content: r.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystemPrompt)},
		{Role: "user", Content: fmt.Sprintf(userTemplate, contextBlock(results), query)},
	}

	answer, err := r.chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// contextBlock renders the retrieved chunks as a numbered list the
// prompt template can reference.
func contextBlock(results []domain.SearchResult) string {
	var b strings.Builder
	for i, result := range results {
		name := result.DocumentName
		if name == "" {
			name = result.Chunk.DocumentID
		}
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, name, result.Chunk.Text)
	}
	return strings.TrimSpace(b.String())
}

// chat sends the messages to /api/chat and returns the reply.
func (r *Responder) chat(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:    r.model,
		Messages: messages,
		Stream:   false,
		Options: &chatOptions{
			NumPredict:  r.maxTokens,
			Temperature: answerTemperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		r.baseURL+"/api/chat",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return chatResp.Message.Content, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (r *Responder) loadPrompt(name, fallback string) string {
	if r.promptStore == nil {
		return fallback
	}
	prompt, err := r.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the responder uses hardcoded default prompts.
func (r *Responder) SetPromptStore(store driven.PromptStore) {
	r.promptStore = store
}

// ModelName returns the name of the chat model being used.
func (r *Responder) ModelName() string {
	return r.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (r *Responder) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (r *Responder) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
