// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/refcount/internal/httputil"
	"github.com/pdiddy/refcount/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// defaultClaudeModel is used when no model is configured for the anthropic provider.
const defaultClaudeModel = "claude-3-5-haiku-latest"

// ClaudeBackend calls the Claude Messages API.
type ClaudeBackend struct {
	apiKey    string
	model     string
	maxTokens int
	url       string
	client    *http.Client
	log       *zap.Logger
}

// NewClaudeBackend creates a backend for the Anthropic API. cfg.Endpoint,
// when set, replaces the public API URL.
func NewClaudeBackend(cfg types.LLMConfig, log *zap.Logger) (*ClaudeBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic provider requires an API key (llm.api_key or .secrets/anthropic-api-key)")
	}
	if log == nil {
		log = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}
	url := claudeAPIURL
	if cfg.Endpoint != "" {
		url = strings.TrimRight(cfg.Endpoint, "/") + "/v1/messages"
	}
	return &ClaudeBackend{
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: cfg.MaxTokens,
		url:       url,
		client:    &http.Client{Timeout: cfg.Timeout},
		log:       log,
	}, nil
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name returns "anthropic/<model>".
func (c *ClaudeBackend) Name() string {
	return "anthropic/" + c.model
}

// Complete sends prompt as one user message and joins the text blocks of the reply.
func (c *ClaudeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	maxTokens := c.maxTokens
	if maxTokens <= 0 {
		maxTokens = types.DefaultMaxTokens
	}

	bodyBytes, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0, c.log)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &StatusError{Backend: "Claude API", Code: resp.StatusCode, Body: string(body)}
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var b strings.Builder
	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		b.WriteString(block.Text)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
