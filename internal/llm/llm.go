// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm talks to the language model behind the two capability calls:
// splitting a text block into reference entries and judging whether an
// entry names an author. Backends are interchangeable behind Backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/refcount/pkg/types"
)

var (
	// ErrEmptyResponse indicates the backend returned no text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrMalformedResponse indicates the reply could not be interpreted.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrUnknownProvider indicates an unsupported provider in configuration.
	ErrUnknownProvider = errors.New("unknown model provider")
)

// StatusError is a non-200 answer from an HTTP model backend.
type StatusError struct {
	Backend string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Backend, e.Code, e.Body)
}

// Temporary reports whether the same request may succeed later: timeouts,
// throttling and server errors. Auth and request errors are permanent.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusRequestTimeout || e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Backend sends a single prompt to a model and returns its text reply.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)

	// Name identifies provider and model, e.g. "ollama/llama3.2:latest".
	Name() string
}

// Pinger is implemented by backends that can check availability cheaply.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client wraps a Backend with rate limiting and retries. It is the Backend
// handed to the capability implementations.
type Client struct {
	base Backend
	b    Backend
}

// NewClient wraps base according to cfg. Each retry attempt waits for the
// rate limiter on its own.
func NewClient(base Backend, cfg types.LLMConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	b := RateLimited(base, cfg.RequestsPerSecond)
	if cfg.MaxRetries > 0 {
		b = &retrying{Backend: b, maxRetries: cfg.MaxRetries, log: log}
	}
	return &Client{base: base, b: b}
}

// Open builds the backend selected by cfg.Provider and wraps it in a Client.
func Open(ctx context.Context, cfg types.LLMConfig, log *zap.Logger) (*Client, error) {
	var (
		base Backend
		err  error
	)
	switch cfg.Provider {
	case types.ProviderOllama, "":
		base = NewOllamaBackend(cfg, log)
	case types.ProviderAnthropic:
		base, err = NewClaudeBackend(cfg, log)
	case types.ProviderVertex:
		base, err = NewVertexBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewClient(base, cfg, log), nil
}

// Complete sends prompt through the rate limiter and retry policy.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.b.Complete(ctx, prompt)
}

// Name returns the name of the underlying backend.
func (c *Client) Name() string {
	return c.base.Name()
}

// Ping checks the underlying backend when it supports a probe.
func (c *Client) Ping(ctx context.Context) error {
	if p, ok := c.base.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases backend resources such as gRPC connections.
func (c *Client) Close() error {
	if cl, ok := c.base.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// RateLimited throttles b to rps calls per second. A non-positive rps
// returns b unchanged.
func RateLimited(b Backend, rps float64) Backend {
	if rps <= 0 {
		return b
	}
	return &rateLimited{Backend: b, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

type rateLimited struct {
	Backend
	limiter *rate.Limiter
}

func (r *rateLimited) Complete(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.Backend.Complete(ctx, prompt)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

type retrying struct {
	Backend
	maxRetries int
	log        *zap.Logger
}

// Complete calls the backend with exponential backoff: 1s, 2s, 4s, ...
// Cancellation of ctx and permanent HTTP statuses are never retried.
func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			r.log.Debug("retrying model call",
				zap.String("backend", r.Name()),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := r.Backend.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", err
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
}
