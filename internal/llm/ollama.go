package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	apperrors "ollama-chat/backend/internal/errors"
)

// Per-mode read timeouts. There is no additional timeout layer on top of
// these and no retries; every upstream failure is surfaced to the caller.
const (
	chatTimeout   = 30 * time.Second
	streamTimeout = 60 * time.Second
	tagsTimeout   = 10 * time.Second
	healthTimeout = 5 * time.Second
)

// Message is a single role/content pair sent to or received from Ollama.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is an assembled chat call: the full context message list plus
// the resolved generation parameters.
type ChatRequest struct {
	Model    string
	Messages []Message
	Params   Params
}

// ChatResponse is the decoded body of a blocking chat call.
type ChatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// StreamChunk is one decoded element of a streaming chat response. A chunk
// with a non-empty Err is terminal: no further chunks follow it.
type StreamChunk struct {
	Content string
	Done    bool
	Err     string
}

// GenerateRequest is a single-prompt (non-chat) completion call.
type GenerateRequest struct {
	Model  string
	Prompt string
	Params Params
}

type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type EmbeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type EmbeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
}

// ModelInfo describes one installed model as reported by /api/tags.
type ModelInfo struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at,omitempty"`
	Size       int64  `json:"size,omitempty"`
	Digest     string `json:"digest,omitempty"`
}

type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// Provider defines the interface for talking to an Ollama server.
type Provider interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	ChatStream(ctx context.Context, req *ChatRequest, ch chan<- StreamChunk) error
	ListModels(ctx context.Context, forceRefresh bool) (*ListModelsResponse, error)
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Embeddings(ctx context.Context, req *EmbeddingsRequest) (*EmbeddingsResponse, error)
	Health(ctx context.Context) bool
}

// modelCache is the TTL snapshot of the model list. It is replaced
// wholesale under the client mutex, never mutated field by field, so a
// reader can never observe a mismatched timestamp/data pair.
type modelCache struct {
	capturedAt time.Time
	models     *ListModelsResponse
}

// Client is the Ollama HTTP client. The base URL is fixed at construction;
// probing a different server requires a new instance.
type Client struct {
	baseURL string
	http    *http.Client
	ttl     time.Duration

	mu    sync.Mutex
	cache modelCache
}

func NewClient(baseURL string, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		ttl:     cacheTTL,
	}
}

// Wire payloads for /api/chat and /api/generate.
type chatPayload struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
}

type generatePayload struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type options struct {
	Temperature   float64 `json:"temperature"`
	NumPredict    int     `json:"num_predict"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

func optionsFrom(p Params) options {
	return options{
		Temperature:   p.Temperature,
		NumPredict:    p.MaxTokens,
		TopP:          p.TopP,
		RepeatPenalty: p.RepeatPenalty,
	}
}

// Chat issues one blocking chat request and waits for the complete
// response.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	payload := chatPayload{Model: req.Model, Messages: req.Messages, Stream: false, Options: optionsFrom(req.Params)}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: chat request failed: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("chat", resp)
	}

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: could not decode chat response: %v", apperrors.ErrUpstream, err)
	}
	return &out, nil
}

// ChatStream issues one streaming chat request and forwards each decoded
// chunk into ch. The sequence is lazy, finite and non-restartable; ch is
// always closed before ChatStream returns. Every failure produces exactly
// one terminal error chunk on ch: a line that fails to parse ends the
// sequence without aborting the transport abnormally, and is not retried.
func (c *Client) ChatStream(ctx context.Context, req *ChatRequest, ch chan<- StreamChunk) error {
	defer close(ch)

	payload := chatPayload{Model: req.Model, Messages: req.Messages, Stream: true, Options: optionsFrom(req.Params)}
	body, err := json.Marshal(payload)
	if err != nil {
		emit(ctx, ch, StreamChunk{Err: "could not marshal stream request"})
		return fmt.Errorf("could not marshal stream request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, streamTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		emit(ctx, ch, StreamChunk{Err: "could not create stream request"})
		return fmt.Errorf("could not create stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		wrapped := fmt.Errorf("%w: stream request failed: %v", apperrors.ErrUpstream, err)
		emit(ctx, ch, StreamChunk{Err: wrapped.Error()})
		return wrapped
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		wrapped := statusError("stream", resp)
		emit(ctx, ch, StreamChunk{Err: wrapped.Error()})
		return wrapped
	}

	type streamLine struct {
		Message Message `json:"message"`
		Done    bool    `json:"done"`
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk streamLine
		if err := json.Unmarshal(line, &chunk); err != nil {
			wrapped := fmt.Errorf("%w: could not decode stream chunk: %v", apperrors.ErrStreamParse, err)
			emit(ctx, ch, StreamChunk{Err: wrapped.Error()})
			return wrapped
		}
		if !emit(ctx, ch, StreamChunk{Content: chunk.Message.Content, Done: chunk.Done}) {
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		wrapped := fmt.Errorf("%w: stream read failed: %v", apperrors.ErrUpstream, err)
		emit(ctx, ch, StreamChunk{Err: wrapped.Error()})
		return wrapped
	}
	return nil
}

// ListModels returns the installed models. Reads within the TTL window are
// served from the cached snapshot unless forceRefresh is set. On a live
// call the snapshot is replaced wholesale on success; on failure the stale
// snapshot is left untouched and the error is returned.
func (c *Client) ListModels(ctx context.Context, forceRefresh bool) (*ListModelsResponse, error) {
	c.mu.Lock()
	if !forceRefresh && c.cache.models != nil && time.Since(c.cache.capturedAt) < c.ttl {
		models := c.cache.models
		c.mu.Unlock()
		return models, nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, tagsTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("could not create models request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: models request failed: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("models", resp)
	}

	var out ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: could not decode models response: %v", apperrors.ErrUpstream, err)
	}

	c.mu.Lock()
	c.cache = modelCache{capturedAt: time.Now(), models: &out}
	c.mu.Unlock()
	return &out, nil
}

// Generate issues a blocking single-prompt completion via /api/generate.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	payload := generatePayload{Model: req.Model, Prompt: req.Prompt, Stream: false, Options: optionsFrom(req.Params)}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal generate request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: generate request failed: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("generate", resp)
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: could not decode generate response: %v", apperrors.ErrUpstream, err)
	}
	return &out, nil
}

// Embeddings computes embedding vectors for the given text.
func (c *Client) Embeddings(ctx context.Context, req *EmbeddingsRequest) (*EmbeddingsResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal embeddings request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, tagsTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create embeddings request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings request failed: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("embeddings", resp)
	}

	var out EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: could not decode embeddings response: %v", apperrors.ErrUpstream, err)
	}
	return &out, nil
}

// Health reports whether the server answers on /api/tags. Failures are
// reported as false, never escalated.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// emit sends a chunk unless the consumer is gone.
func emit(ctx context.Context, ch chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// statusError builds an ErrUpstream from a non-200 response, including a
// bounded slice of the body for diagnostics.
func statusError(mode string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) > 0 {
		return fmt.Errorf("%w: %s request returned status %d: %s", apperrors.ErrUpstream, mode, resp.StatusCode, body)
	}
	return fmt.Errorf("%w: %s request returned status %d", apperrors.ErrUpstream, mode, resp.StatusCode)
}
