// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/refcount/internal/httputil"
	"github.com/pdiddy/refcount/pkg/types"
)

const (
	// apiPathChat is the Ollama chat completion endpoint.
	apiPathChat = "/api/chat"

	// apiPathTags lists locally available models.
	apiPathTags = "/api/tags"
)

// OllamaBackend sends prompts to a local Ollama server.
type OllamaBackend struct {
	baseURL   string
	model     string
	maxTokens int
	userAgent string
	client    *http.Client
	log       *zap.Logger
}

// NewOllamaBackend creates a backend for the server at cfg.Endpoint.
func NewOllamaBackend(cfg types.LLMConfig, log *zap.Logger) *OllamaBackend {
	if log == nil {
		log = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.Endpoint, "/")
	if baseURL == "" {
		baseURL = types.DefaultEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = types.DefaultModel
	}
	return &OllamaBackend{
		baseURL:   baseURL,
		model:     model,
		maxTokens: cfg.MaxTokens,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		log:       log,
	}
}

// ollamaChatRequest is the request body for the Ollama chat API.
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaOptions carries model parameters. NumPredict is Ollama's output
// token limit.
type ollamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// ollamaChatResponse is the non-streaming response from the chat API.
type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// ollamaTagsResponse is the response from the tags API.
type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Name returns "ollama/<model>".
func (o *OllamaBackend) Name() string {
	return "ollama/" + o.model
}

// Complete sends prompt as a single user message and returns the reply.
func (o *OllamaBackend) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Options:  ollamaOptions{NumPredict: o.maxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+apiPathChat, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.userAgent != "" {
		req.Header.Set("User-Agent", o.userAgent)
	}

	o.log.Debug("ollama request", zap.String("model", o.model), zap.Int("prompt_bytes", len(prompt)))

	resp, err := httputil.DoWithRetry(ctx, o.client, req, 0, o.log)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", &StatusError{Backend: "ollama", Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}

	text := strings.TrimSpace(out.Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Ping checks that the server is up and has the configured model pulled.
func (o *OllamaBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+apiPathTags, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not running at %s: %w", o.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decoding tags response: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == o.model || m.Name == o.model+":latest" {
			return nil
		}
	}
	return fmt.Errorf("model %q is not available in ollama (try: ollama pull %s)", o.model, o.model)
}
