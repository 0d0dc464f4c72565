// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the refcount CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/refcount/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/, the environment, and .env at startup.
var loadedSecrets map[string]string

// logger is the diagnostic logger, replaced in PersistentPreRunE.
var logger = zap.NewNop()

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the refcount CLI.
var rootCmd = &cobra.Command{
	Use:   "refcount",
	Short: "Count the bibliography entries of a PDF that cite an author",
	Long: `refcount finds the References, Bibliography or Works Cited section of a
PDF, asks a language model to split it into individual entries, and asks the
model again, entry by entry, whether the given author appears. It prints how
many entries name the author.

The model runs on a local Ollama server by default. Anthropic and Vertex AI
Gemini are available through --provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(viper.GetString("log_level"))
		if err != nil {
			return &configError{err: err}
		}
		logger = l

		s, err := secrets.Resolve(".secrets/", ".env")
		if err != nil {
			return &configError{err: err}
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./refcount.yaml or ~/.config/refcount/refcount.yaml)")
	pf.String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	pf.Int("max-pages", 0, "extract at most this many pages (0 = all)")
	pf.String("pdf-backend", string(defaultExtractBackend), "text extraction backend: native or pdftotext")

	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("extraction.max_pages", pf.Lookup("max-pages"))
	viper.BindPFlag("extraction.backend", pf.Lookup("pdf-backend"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("refcount")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refcount"))
		}
	}

	viper.SetEnvPrefix("REFCOUNT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
