// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/pdiddy/refcount/pkg/types"
)

const defaultVertexModel = "gemini-1.5-flash"

// VertexBackend sends prompts to a Gemini model on Vertex AI. Credentials
// come from Application Default Credentials.
type VertexBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewVertexBackend connects to Vertex AI in cfg.Project and cfg.Region.
func NewVertexBackend(ctx context.Context, cfg types.LLMConfig) (*VertexBackend, error) {
	if cfg.Project == "" || cfg.Region == "" {
		return nil, errors.New("vertex provider requires llm.project and llm.region")
	}

	client, err := genai.NewClient(ctx, cfg.Project, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = defaultVertexModel
	}

	model := client.GenerativeModel(name)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
	// Judgments should not vary between runs.
	model.SetTemperature(0)

	return &VertexBackend{client: client, model: model, name: name}, nil
}

// Name returns "vertex/<model>".
func (v *VertexBackend) Name() string {
	return "vertex/" + v.name
}

// Complete returns the text parts of the first candidate.
func (v *VertexBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close releases the underlying gRPC connection.
func (v *VertexBackend) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
