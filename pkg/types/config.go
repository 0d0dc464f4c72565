// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. A single model call on a local
	// server can take well over a minute for a long bibliography.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "refcount/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LLMProvider identifies the language-model backend.
type LLMProvider string

const (
	ProviderOllama    LLMProvider = "ollama"
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderVertex    LLMProvider = "vertex"

	// ProviderHeuristic splits and matches entries with text rules instead
	// of a model. No endpoint or credentials are needed.
	ProviderHeuristic LLMProvider = "heuristic"
)

// LLMConfig holds the settings for the model that backs both capability
// calls. It is built once at startup and passed to the backend constructor.
type LLMConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend: ollama, anthropic, vertex, or heuristic.
	Provider LLMProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Endpoint is the base URL of the model server (e.g. "http://localhost:11434").
	// Ignored by the vertex provider.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Model is the model identifier (e.g. "llama3.2:latest").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// MaxTokens caps the output tokens of each call.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// APIKey authenticates against hosted providers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Project and Region locate the Vertex AI endpoint.
	Project string `json:"project,omitempty" yaml:"project,omitempty" mapstructure:"project"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty" mapstructure:"region"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond throttles calls to the backend. Zero disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ExtractionBackend identifies the PDF text extraction tool.
type ExtractionBackend string

const (
	ExtractNative    ExtractionBackend = "native"
	ExtractPdftotext ExtractionBackend = "pdftotext"
)

// ExtractionConfig holds settings for PDF text extraction.
type ExtractionConfig struct {
	// HTTPConfig applies to PDFs downloaded from URLs, arXiv and doi.org.
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the extraction tool: native or pdftotext.
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// FallbackPdftotext retries with pdftotext when the native backend
	// fails or yields no text.
	FallbackPdftotext bool `json:"fallback_pdftotext" yaml:"fallback_pdftotext" mapstructure:"fallback_pdftotext"`

	// MaxPages limits extraction to the first N pages. Zero means all pages.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`
}

// CountConfig holds settings for the counting pipeline.
type CountConfig struct {
	// Concurrency is the number of author-presence checks in flight at once.
	// One (the default) evaluates entries sequentially.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// Config groups all component configurations for one run.
type Config struct {
	LLM        LLMConfig        `json:"llm" yaml:"llm" mapstructure:"llm"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Count      CountConfig      `json:"count" yaml:"count" mapstructure:"count"`
}

// Default values applied when configuration leaves a field unset.
const (
	DefaultEndpoint    = "http://localhost:11434"
	DefaultModel       = "llama3.2:latest"
	DefaultMaxTokens   = 2000
	DefaultMaxRetries  = 3
	DefaultTimeout     = 120 * time.Second
	DefaultUserAgent   = "refcount/0.1"
	DefaultConcurrency = 1

	DefaultDownloadTimeout = 60 * time.Second
)

// WithDefaults returns a copy of c with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOllama
	}
	if c.LLM.Endpoint == "" && c.LLM.Provider == ProviderOllama {
		c.LLM.Endpoint = DefaultEndpoint
	}
	if c.LLM.Model == "" && c.LLM.Provider == ProviderOllama {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = DefaultMaxTokens
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = DefaultTimeout
	}
	if c.LLM.UserAgent == "" {
		c.LLM.UserAgent = DefaultUserAgent
	}
	if c.Extraction.Backend == "" {
		c.Extraction.Backend = ExtractNative
	}
	if c.Extraction.Timeout <= 0 {
		c.Extraction.Timeout = DefaultDownloadTimeout
	}
	if c.Extraction.UserAgent == "" {
		c.Extraction.UserAgent = DefaultUserAgent
	}
	if c.Count.Concurrency <= 0 {
		c.Count.Concurrency = DefaultConcurrency
	}
	return c
}
