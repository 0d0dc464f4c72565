// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert extracts plain text from PDF files with pluggable
// backends. Sources may be local paths, gs://bucket/object URIs, http(s)
// URLs, arXiv IDs or DOIs.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"github.com/pdiddy/refcount/pkg/types"
)

var (
	// ErrMissingFile indicates the source PDF does not exist.
	ErrMissingFile = errors.New("PDF file not found")

	// ErrExtraction indicates the PDF could not be read by any backend.
	ErrExtraction = errors.New("could not extract text from the PDF")

	// ErrNoText indicates the PDF was read but contained no text, as with
	// scanned documents without an OCR layer.
	ErrNoText = errors.New("PDF contains no extractable text")
)

// Converter turns a local PDF file into plain text. Different backends
// (ledongthuc/pdf, pdftotext) implement this interface.
type Converter interface {
	// Convert reads the PDF at pdfPath and returns its text.
	Convert(ctx context.Context, pdfPath string) (string, error)

	// Name identifies the backend in logs.
	Name() string
}

// Extractor resolves a source to a local file and runs the configured
// converters over it.
type Extractor struct {
	primary  Converter
	fallback Converter
	fetch    fetchFunc // gs:// objects
	download fetchFunc // http(s) URLs
	probe    func(path string) (int, error)
	log      *zap.Logger
}

// NewExtractor builds an Extractor from cfg. The native backend is used
// unless cfg.Backend selects pdftotext; cfg.FallbackPdftotext adds pdftotext
// as a second attempt after the native backend.
func NewExtractor(cfg types.ExtractionConfig, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Extractor{
		fetch:    fetchGCS,
		download: newDownloader(cfg.HTTPConfig, log).fetch,
		probe:    api.PageCountFile,
		log:      log,
	}
	switch cfg.Backend {
	case types.ExtractPdftotext:
		e.primary = NewPdftotextConverter(cfg.MaxPages)
	default:
		e.primary = NewNativeConverter(cfg.MaxPages)
		if cfg.FallbackPdftotext {
			e.fallback = NewPdftotextConverter(cfg.MaxPages)
		}
	}
	return e
}

// Extract returns the full text of the PDF at source. Failures are
// reported as ErrMissingFile, ErrExtraction or ErrNoText so callers can
// tell them apart from an empty result.
func (e *Extractor) Extract(ctx context.Context, source string) (string, error) {
	kind, path := classifySource(source)
	switch kind {
	case sourceGCS, sourceURL:
		fetch := e.fetch
		if kind == sourceURL {
			fetch = e.download
			e.log.Info("downloading PDF", zap.String("source", source), zap.String("url", path))
		}
		local, cleanup, err := fetch(ctx, path)
		if err != nil {
			return "", err
		}
		defer cleanup()
		path = local
	default:
		if err := checkFile(path); err != nil {
			return "", err
		}
	}

	if pages, err := e.probe(path); err != nil {
		e.log.Warn("page count probe failed", zap.String("path", source), zap.Error(err))
	} else {
		e.log.Debug("probed PDF", zap.String("path", source), zap.Int("pages", pages))
	}

	text, err := e.run(ctx, e.primary, path)
	if (err != nil || strings.TrimSpace(text) == "") && e.fallback != nil {
		e.log.Info("falling back to second extractor",
			zap.String("from", e.primary.Name()),
			zap.String("to", e.fallback.Name()),
			zap.Error(err))
		text, err = e.run(ctx, e.fallback, path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtraction, source, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, source)
	}
	return text, nil
}

func (e *Extractor) run(ctx context.Context, c Converter, path string) (string, error) {
	text, err := c.Convert(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Name(), err)
	}
	e.log.Debug("extracted text", zap.String("backend", c.Name()), zap.Int("chars", len(text)))
	return text, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExtraction, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrExtraction, path)
	}
	return nil
}
