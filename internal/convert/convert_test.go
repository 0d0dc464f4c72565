// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/refcount/pkg/types"
)

// fakeConverter implements Converter for testing. It returns canned text or
// an error and records the path it was given.
type fakeConverter struct {
	name   string
	output string
	err    error
	paths  []string
	read   []string // file contents seen at call time
}

func (f *fakeConverter) Name() string { return f.name }

func (f *fakeConverter) Convert(_ context.Context, pdfPath string) (string, error) {
	f.paths = append(f.paths, pdfPath)
	if b, err := os.ReadFile(pdfPath); err == nil {
		f.read = append(f.read, string(b))
	}
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// setupPDF writes a placeholder PDF into a temp dir and returns its path.
func setupPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("fake pdf"), 0o644))
	return path
}

func newTestExtractor(primary, fallback Converter) *Extractor {
	return &Extractor{
		primary:  primary,
		fallback: fallback,
		probe:    func(string) (int, error) { return 3, nil },
		log:      zap.NewNop(),
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name        string
		primary     *fakeConverter
		fallback    *fakeConverter
		want        string
		wantErr     error
		wantFbCalls int
	}{
		{
			name:    "primary succeeds",
			primary: &fakeConverter{name: "native", output: "Intro\nReferences\nSmith, J.\n"},
			want:    "Intro\nReferences\nSmith, J.\n",
		},
		{
			name:        "primary fails, fallback succeeds",
			primary:     &fakeConverter{name: "native", err: errors.New("malformed xref")},
			fallback:    &fakeConverter{name: "pdftotext", output: "text from poppler"},
			want:        "text from poppler",
			wantFbCalls: 1,
		},
		{
			name:        "primary blank, fallback succeeds",
			primary:     &fakeConverter{name: "native", output: "  \n"},
			fallback:    &fakeConverter{name: "pdftotext", output: "layout text"},
			want:        "layout text",
			wantFbCalls: 1,
		},
		{
			name:    "primary fails, no fallback",
			primary: &fakeConverter{name: "native", err: errors.New("encrypted")},
			wantErr: ErrExtraction,
		},
		{
			name:        "both fail",
			primary:     &fakeConverter{name: "native", err: errors.New("bad")},
			fallback:    &fakeConverter{name: "pdftotext", err: errors.New("exit status 1")},
			wantErr:     ErrExtraction,
			wantFbCalls: 1,
		},
		{
			name:    "no text",
			primary: &fakeConverter{name: "native", output: "\n\n\t"},
			wantErr: ErrNoText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := setupPDF(t)
			var fb Converter
			if tt.fallback != nil {
				fb = tt.fallback
			}
			got, err := newTestExtractor(tt.primary, fb).Extract(context.Background(), path)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, []string{path}, tt.primary.paths)
			if tt.fallback != nil {
				assert.Len(t, tt.fallback.paths, tt.wantFbCalls)
			}
		})
	}
}

func TestExtract_ErrorNamesBackend(t *testing.T) {
	path := setupPDF(t)
	_, err := newTestExtractor(&fakeConverter{name: "native", err: errors.New("malformed xref")}, nil).
		Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "native: malformed xref")
	assert.Contains(t, err.Error(), path)
}

func TestExtract_MissingFile(t *testing.T) {
	primary := &fakeConverter{name: "native", output: "never"}
	_, err := newTestExtractor(primary, nil).
		Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.ErrorIs(t, err, ErrMissingFile)
	assert.Empty(t, primary.paths)
}

func TestExtract_Directory(t *testing.T) {
	_, err := newTestExtractor(&fakeConverter{name: "native"}, nil).Extract(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrExtraction)
	assert.NotErrorIs(t, err, ErrMissingFile)
}

func TestExtract_ProbeFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := newTestExtractor(&fakeConverter{name: "native", output: "text"}, nil)
	e.probe = func(string) (int, error) { return 0, errors.New("xref table broken") }
	e.log = zap.New(core)

	got, err := e.Extract(context.Background(), setupPDF(t))
	require.NoError(t, err)
	assert.Equal(t, "text", got)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "page count probe failed", logs.All()[0].Message)
}

func TestExtract_GCS(t *testing.T) {
	primary := &fakeConverter{name: "native", output: "remote text"}
	e := newTestExtractor(primary, nil)

	var fetched string
	var removed bool
	e.fetch = func(_ context.Context, uri string) (string, func(), error) {
		fetched = uri
		path, cleanup, err := copyToTemp(strings.NewReader("%PDF-1.4 remote"))
		return path, func() { removed = true; cleanup() }, err
	}

	got, err := e.Extract(context.Background(), "gs://papers/2024/smith.pdf")
	require.NoError(t, err)
	assert.Equal(t, "remote text", got)
	assert.Equal(t, "gs://papers/2024/smith.pdf", fetched)
	assert.Equal(t, []string{"%PDF-1.4 remote"}, primary.read)
	assert.True(t, removed)

	_, statErr := os.Stat(primary.paths[0])
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "temp file should be removed")
}

func TestExtract_GCSFetchError(t *testing.T) {
	e := newTestExtractor(&fakeConverter{name: "native"}, nil)
	e.fetch = func(context.Context, string) (string, func(), error) {
		return "", nil, ErrMissingFile
	}
	_, err := e.Extract(context.Background(), "gs://papers/missing.pdf")
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://papers/smith.pdf", "papers", "smith.pdf", false},
		{"gs://papers/2024/q1/smith.pdf", "papers", "2024/q1/smith.pdf", false},
		{"gs://papers", "", "", true},
		{"gs://papers/", "", "", true},
		{"gs:///smith.pdf", "", "", true},
		{"/tmp/smith.pdf", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := parseGCSURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestNewExtractor_Backends(t *testing.T) {
	e := NewExtractor(types.ExtractionConfig{}, nil)
	assert.Equal(t, "native", e.primary.Name())
	assert.Nil(t, e.fallback)

	e = NewExtractor(types.ExtractionConfig{FallbackPdftotext: true, MaxPages: 5}, nil)
	assert.Equal(t, "native", e.primary.Name())
	require.NotNil(t, e.fallback)
	assert.Equal(t, binPdftotext, e.fallback.Name())

	e = NewExtractor(types.ExtractionConfig{Backend: types.ExtractPdftotext, FallbackPdftotext: true}, nil)
	assert.Equal(t, binPdftotext, e.primary.Name())
	assert.Nil(t, e.fallback)
}

func TestNativeConverter_NotAPDF(t *testing.T) {
	_, err := NewNativeConverter(0).Convert(context.Background(), setupPDF(t))
	assert.Error(t, err)
}

func TestExtract_MalformedGCSURI(t *testing.T) {
	primary := &fakeConverter{name: "native"}
	e := newTestExtractor(primary, nil)
	e.fetch = fetchGCS

	_, err := e.Extract(context.Background(), "gs://bucket-only")
	assert.ErrorIs(t, err, ErrExtraction)
	assert.NotErrorIs(t, err, ErrMissingFile)
	assert.Empty(t, primary.paths)
}

// failingReader returns some bytes and then an error.
type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "%PDF-1.4 partial"), nil
	}
	return 0, io.ErrUnexpectedEOF
}

func TestCopyToTemp_ReadError(t *testing.T) {
	_, _, err := copyToTemp(&failingReader{})
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
