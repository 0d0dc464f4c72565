// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package counter counts the bibliography entries of a document that name
// a given author. It locates the reference block, asks a Splitter for the
// individual entries, and asks a Checker about each one.
package counter

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/refcount/internal/section"
	"github.com/pdiddy/refcount/pkg/types"
)

// noReferences is compared case-insensitively against the splitter output.
const noReferences = "no references found."

// Splitter turns a text block into newline-delimited reference entries, or
// the phrase "No references found." when there are none.
type Splitter interface {
	SplitReferences(ctx context.Context, block string) (string, error)
}

// Checker judges whether a single reference entry names author. Calls are
// independent and may run concurrently.
type Checker interface {
	IsAuthorPresent(ctx context.Context, entry, author string) (bool, error)
}

// Counter runs the counting pipeline. It holds no per-run state and may be
// reused across documents.
type Counter struct {
	splitter    Splitter
	checker     Checker
	concurrency int
	model       string
	log         *zap.Logger
}

// Option configures a Counter.
type Option func(*Counter)

// WithModelName records the backend name in reports.
func WithModelName(name string) Option {
	return func(c *Counter) {
		c.model = name
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Counter) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Counter. cfg.Concurrency of 1 or less checks entries one
// at a time, in order.
func New(s Splitter, ch Checker, cfg types.CountConfig, opts ...Option) *Counter {
	c := &Counter{
		splitter:    s,
		checker:     ch,
		concurrency: cfg.Concurrency,
		log:         zap.NewNop(),
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CountReferencesByAuthor returns the number of reference entries in
// fullText that name author.
func (c *Counter) CountReferencesByAuthor(ctx context.Context, fullText, author string) (int, error) {
	report, err := c.Count(ctx, fullText, author)
	if err != nil {
		return 0, err
	}
	return report.Count, nil
}

// Count runs the pipeline and returns a report with one verdict per entry.
// When no reference heading is found the whole document is split. When the
// splitter reports no references the count is zero and the checker is never
// called. Any capability failure aborts the run with a *CapabilityError.
func (c *Counter) Count(ctx context.Context, fullText, author string) (types.CountReport, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return types.CountReport{}, ErrNoAuthor
	}
	if strings.TrimSpace(fullText) == "" {
		return types.CountReport{}, ErrEmptyDocument
	}

	report := types.CountReport{Author: author, Model: c.model}

	block := fullText
	if sec, ok := section.Find(fullText); ok && sec.Text != "" {
		block = sec.Text
		report.Heading = sec.Heading
		c.log.Debug("located reference section",
			zap.String("heading", sec.Heading),
			zap.Int("start", sec.Start),
			zap.Int("end", sec.End))
	} else {
		report.FullTextFallback = true
		c.log.Debug("no reference section found, using full text", zap.Int("length", len(fullText)))
	}

	raw, err := c.splitter.SplitReferences(ctx, block)
	if err != nil {
		return types.CountReport{}, &CapabilityError{Capability: CapabilitySplit, Err: err}
	}

	if IsNoReferences(raw) {
		report.NoReferences = true
		report.Entries = []types.EntryVerdict{}
		c.log.Debug("splitter found no references")
		return report, nil
	}

	entries := ParseEntries(raw)
	c.log.Debug("split references", zap.Int("entries", len(entries)))

	matches, err := c.checkAll(ctx, entries, author)
	if err != nil {
		return types.CountReport{}, err
	}

	report.Entries = make([]types.EntryVerdict, len(entries))
	for i, e := range entries {
		report.Entries[i] = types.EntryVerdict{Entry: e, Match: matches[i]}
		if matches[i] {
			report.Count++
		}
	}
	return report, nil
}

// checkAll runs the presence check for every entry. Results are indexed by
// entry so the order of completion does not matter.
func (c *Counter) checkAll(ctx context.Context, entries []string, author string) ([]bool, error) {
	matches := make([]bool, len(entries))

	if c.concurrency == 1 {
		for i, e := range entries {
			ok, err := c.check(ctx, e, author)
			if err != nil {
				return nil, err
			}
			matches[i] = ok
		}
		return matches, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, e := range entries {
		g.Go(func() error {
			ok, err := c.check(gctx, e, author)
			if err != nil {
				return err
			}
			matches[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *Counter) check(ctx context.Context, entry, author string) (bool, error) {
	ok, err := c.checker.IsAuthorPresent(ctx, entry, author)
	if err != nil {
		return false, &CapabilityError{Capability: CapabilityCheck, Entry: entry, Err: err}
	}
	c.log.Debug("checked entry", zap.String("entry", entry), zap.Bool("match", ok))
	return ok, nil
}

// IsNoReferences reports whether splitter output means "zero entries":
// blank, or the phrase "No references found." in any casing.
func IsNoReferences(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || strings.EqualFold(trimmed, noReferences)
}

// ParseEntries splits splitter output on line breaks, trims each line, and
// drops blank lines. Order is preserved.
func ParseEntries(raw string) []string {
	var entries []string
	for _, line := range strings.Split(raw, "\n") {
		if e := strings.TrimSpace(line); e != "" {
			entries = append(entries, e)
		}
	}
	return entries
}
