// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/refcount/internal/httputil"
	"github.com/pdiddy/refcount/pkg/types"
)

// sourceKind classifies what the user passed as the PDF argument.
type sourceKind int

const (
	sourceLocal sourceKind = iota
	sourceGCS
	sourceURL
)

// Base URLs for identifier resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	arxivPDFBase = "https://arxiv.org/pdf/"
	doiBase      = "https://doi.org/"
)

// arxivPattern matches arXiv IDs: "2301.07041", "arXiv:2301.07041", "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// classifySource decides how to obtain the PDF named by source and returns
// the location to read it from. An existing local file always wins, so a
// file literally named "2301.07041" is not mistaken for an arXiv ID.
func classifySource(source string) (sourceKind, string) {
	if _, err := os.Stat(source); err == nil {
		return sourceLocal, source
	}
	s := strings.TrimSpace(source)
	if isGCSURI(s) {
		return sourceGCS, s
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return sourceURL, s
	}
	if m := arxivPattern.FindStringSubmatch(s); m != nil {
		return sourceURL, arxivPDFBase + m[1]
	}
	if doiPattern.MatchString(s) {
		return sourceURL, doiBase + s
	}
	return sourceLocal, source
}

// downloader fetches PDFs over HTTP into temp files.
type downloader struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	log        *zap.Logger
}

func newDownloader(cfg types.HTTPConfig, log *zap.Logger) *downloader {
	return &downloader{
		client:     &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxRetries: types.DefaultMaxRetries,
		log:        log,
	}
}

// fetch downloads rawURL, following redirects (doi.org answers with one).
// A 404 or 410 is reported as ErrMissingFile. An HTML answer, typical of
// paywalls and landing pages, is rejected rather than handed to the parser.
func (d *downloader) fetch(ctx context.Context, rawURL string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: creating request for %s: %w", ErrExtraction, rawURL, err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, d.client, req, d.maxRetries, d.log)
	if err != nil {
		return "", nil, fmt.Errorf("%w: downloading %s: %w", ErrExtraction, rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", nil, fmt.Errorf("%w: %s (HTTP %d)", ErrMissingFile, rawURL, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", nil, fmt.Errorf("%w: HTTP %d from %s", ErrExtraction, resp.StatusCode, rawURL)
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "text/html" {
		return "", nil, fmt.Errorf("%w: %s returned an HTML page, not a PDF", ErrExtraction, rawURL)
	}

	d.log.Debug("downloaded PDF",
		zap.String("url", rawURL),
		zap.String("final_url", resp.Request.URL.String()),
		zap.Int64("bytes", resp.ContentLength))
	return copyToTemp(resp.Body)
}
