// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/refcount/internal/secrets"
	"github.com/pdiddy/refcount/pkg/types"
)

const defaultExtractBackend = types.ExtractNative

// setDefaults registers every configuration key so AutomaticEnv can find
// REFCOUNT_* variables for nested keys. Endpoint and model stay empty here;
// their defaults depend on the provider and are filled by WithDefaults.
func setDefaults() {
	viper.SetDefault("log_level", "warn")

	viper.SetDefault("llm.provider", string(types.ProviderOllama))
	viper.SetDefault("llm.endpoint", "")
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.max_tokens", types.DefaultMaxTokens)
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.project", "")
	viper.SetDefault("llm.region", "us-central1")
	viper.SetDefault("llm.max_retries", types.DefaultMaxRetries)
	viper.SetDefault("llm.requests_per_second", 0)
	viper.SetDefault("llm.timeout", types.DefaultTimeout)
	viper.SetDefault("llm.user_agent", types.DefaultUserAgent)

	viper.SetDefault("extraction.backend", string(defaultExtractBackend))
	viper.SetDefault("extraction.fallback_pdftotext", true)
	viper.SetDefault("extraction.max_pages", 0)
	viper.SetDefault("extraction.timeout", types.DefaultDownloadTimeout)
	viper.SetDefault("extraction.user_agent", types.DefaultUserAgent)

	viper.SetDefault("count.concurrency", types.DefaultConcurrency)
}

// loadConfig decodes viper state into a types.Config, fills credentials
// from loaded secrets, and validates the result.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, &configError{err: fmt.Errorf("parsing configuration: %w", err)}
	}

	cfg.LLM.APIKey = secretDefault(secrets.KeyAnthropicAPIKey, cfg.LLM.APIKey)
	cfg.LLM.Project = secretDefault(secrets.KeyGoogleCloudProject, cfg.LLM.Project)
	cfg = cfg.WithDefaults()

	if err := validateConfig(cfg); err != nil {
		return cfg, &configError{err: err}
	}
	return cfg, nil
}

func validateConfig(cfg types.Config) error {
	switch cfg.LLM.Provider {
	case types.ProviderOllama, types.ProviderAnthropic, types.ProviderVertex, types.ProviderHeuristic:
	default:
		return fmt.Errorf("unknown provider %q (want ollama, anthropic, vertex or heuristic)", cfg.LLM.Provider)
	}
	switch cfg.Extraction.Backend {
	case types.ExtractNative, types.ExtractPdftotext:
	default:
		return fmt.Errorf("unknown PDF backend %q (want native or pdftotext)", cfg.Extraction.Backend)
	}
	if cfg.Extraction.MaxPages < 0 {
		return fmt.Errorf("max pages must not be negative, got %d", cfg.Extraction.MaxPages)
	}
	if cfg.LLM.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got %g", cfg.LLM.RequestsPerSecond)
	}
	return nil
}

// newLogger builds a console logger on stderr at the named level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
