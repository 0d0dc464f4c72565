// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/refcount/internal/bibliography"
	"github.com/pdiddy/refcount/internal/convert"
	"github.com/pdiddy/refcount/internal/counter"
	"github.com/pdiddy/refcount/internal/llm"
	"github.com/pdiddy/refcount/pkg/types"
)

// extractor turns a PDF source into its full text.
type extractor interface {
	Extract(ctx context.Context, source string) (string, error)
}

var countCmd = &cobra.Command{
	Use:   "count <pdf> --author NAME",
	Short: "Count reference entries that name an author",
	Long: `Count extracts the text of a PDF, locates its reference section, and
reports how many entries name the author.

The PDF may be a local path, gs://bucket/object, an http(s) URL, an arXiv ID
(2301.07041) or a DOI (10.1145/1234567.1234568).

When no References, Bibliography or Works Cited heading is found the whole
document is searched. Any model failure ends the run without a count.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		author, _ := cmd.Flags().GetString("author")
		format, _ := cmd.Flags().GetString("format")
		showEntries, _ := cmd.Flags().GetBool("show-entries")

		run := &countRun{
			cfg:         cfg,
			author:      author,
			format:      format,
			showEntries: showEntries,
			extract:     convert.NewExtractor(cfg.Extraction, logger),
			out:         cmd.OutOrStdout(),
			status:      cmd.ErrOrStderr(),
			log:         logger,
		}
		return run.run(cmd.Context(), args[0])
	},
}

func init() {
	f := countCmd.Flags()
	f.StringP("author", "a", "", "author name to search for (required)")
	f.String("format", formatText, "output format: text, json, or yaml")
	f.Bool("show-entries", false, "list every entry with its verdict (text format)")
	f.String("provider", string(types.ProviderOllama), "model provider: ollama, anthropic, vertex, or heuristic (no model)")
	f.String("endpoint", "", "model server base URL (default http://localhost:11434 for ollama)")
	f.StringP("model", "m", "", "model identifier (default llama3.2:latest for ollama)")
	f.Int("max-tokens", types.DefaultMaxTokens, "maximum output tokens per model call")
	f.Int("max-retries", types.DefaultMaxRetries, "retries per model call")
	f.Int("concurrency", types.DefaultConcurrency, "author checks in flight at once")
	countCmd.MarkFlagRequired("author")

	viper.BindPFlag("llm.provider", f.Lookup("provider"))
	viper.BindPFlag("llm.endpoint", f.Lookup("endpoint"))
	viper.BindPFlag("llm.model", f.Lookup("model"))
	viper.BindPFlag("llm.max_tokens", f.Lookup("max-tokens"))
	viper.BindPFlag("llm.max_retries", f.Lookup("max-retries"))
	viper.BindPFlag("count.concurrency", f.Lookup("concurrency"))

	rootCmd.AddCommand(countCmd)
}

// countRun holds everything one count invocation needs.
type countRun struct {
	cfg         types.Config
	author      string
	format      string
	showEntries bool
	extract     extractor
	out         io.Writer
	status      io.Writer // status lines when out carries structured output
	log         *zap.Logger
}

func (r *countRun) run(ctx context.Context, source string) error {
	if !validFormat(r.format) {
		return fmt.Errorf("unknown format %q (want text, json or yaml)", r.format)
	}
	statusOut := r.out
	if r.format != formatText {
		statusOut = r.status
	}

	text, err := r.extract.Extract(ctx, source)
	if err != nil {
		reportExtractError(statusOut, source, err)
		return err
	}
	fmt.Fprintln(statusOut, statusLine(r.author))

	caps, err := r.capabilities(ctx)
	if err != nil {
		return err
	}
	defer caps.close()

	c := counter.New(caps.splitter, caps.checker, r.cfg.Count,
		counter.WithModelName(caps.name),
		counter.WithLogger(r.log),
	)
	report, err := c.Count(ctx, text, r.author)
	if err != nil {
		return err
	}
	report.Source = source

	return writeReport(r.out, r.format, report, r.showEntries)
}

// reportExtractError prints the user-facing line for a failed extraction.
// A missing file is told apart from an unreadable one.
func reportExtractError(w io.Writer, source string, err error) {
	if errors.Is(err, convert.ErrMissingFile) {
		fmt.Fprintf(w, "PDF file not found at '%s'.\n", source)
		return
	}
	fmt.Fprintln(w, "Could not extract text from the PDF.")
}

// capabilitySet is the splitter and checker pair for one run.
type capabilitySet struct {
	splitter counter.Splitter
	checker  counter.Checker
	name     string
	close    func() error
}

// capabilities opens the configured provider. Model backends are probed
// first so an unreachable server fails before any counting starts.
func (r *countRun) capabilities(ctx context.Context) (capabilitySet, error) {
	if r.cfg.LLM.Provider == types.ProviderHeuristic {
		return capabilitySet{
			splitter: bibliography.Splitter{},
			checker:  bibliography.Checker{},
			name:     string(types.ProviderHeuristic),
			close:    func() error { return nil },
		}, nil
	}

	client, err := llm.Open(ctx, r.cfg.LLM, r.log)
	if err != nil {
		return capabilitySet{}, &configError{err: err}
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return capabilitySet{}, &counter.CapabilityError{Capability: counter.CapabilityConnect, Err: err}
	}
	return capabilitySet{
		splitter: llm.NewReferenceSplitter(client),
		checker:  llm.NewAuthorChecker(client),
		name:     client.Name(),
		close:    client.Close,
	}, nil
}
