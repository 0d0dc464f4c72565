// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refcount/internal/convert"
	"github.com/pdiddy/refcount/internal/counter"
	"github.com/pdiddy/refcount/pkg/types"
)

func TestWriteReport_Text(t *testing.T) {
	r := types.CountReport{
		Author: "Lawrence",
		Entries: []types.EntryVerdict{
			{Entry: "Lawrence, D. (2019).", Match: true},
			{Entry: "Smith, J. (2020).", Match: false},
		},
		Count: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatText, r, false))
	assert.Equal(t, "Number of references by 'Lawrence': 1\n", buf.String())

	buf.Reset()
	r.FullTextFallback = true
	require.NoError(t, writeReport(&buf, formatText, r, true))
	assert.Equal(t, "[x] Lawrence, D. (2019).\n[ ] Smith, J. (2020).\n"+
		"(no reference heading found; searched the full text)\n"+
		"Number of references by 'Lawrence': 1\n", buf.String())
}

func TestWriteReport_NoReferences(t *testing.T) {
	var buf bytes.Buffer
	r := types.CountReport{Author: "Doe", NoReferences: true, Entries: []types.EntryVerdict{}}
	require.NoError(t, writeReport(&buf, formatText, r, true))
	assert.Equal(t, "No references found.\nNumber of references by 'Doe': 0\n", buf.String())
}

func TestWriteReport_YAMLKeys(t *testing.T) {
	var buf bytes.Buffer
	r := types.CountReport{Author: "Doe", Entries: []types.EntryVerdict{{Entry: "Doe, A.", Match: true}}, Count: 1}
	require.NoError(t, writeReport(&buf, formatYAML, r, false))
	assert.Contains(t, buf.String(), "author: Doe\n")
	assert.Contains(t, buf.String(), "count: 1\n")
	assert.Contains(t, buf.String(), "- entry: Doe, A.\n")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"missing file", fmt.Errorf("%w: a.pdf", convert.ErrMissingFile), ExitMissingFile},
		{"extraction", fmt.Errorf("%w: a.pdf: bad xref", convert.ErrExtraction), ExitExtraction},
		{"no text", fmt.Errorf("%w: scan.pdf", convert.ErrNoText), ExitExtraction},
		{"capability", &counter.CapabilityError{Capability: counter.CapabilitySplit, Err: errors.New("timeout")}, ExitCapability},
		{"config", &configError{err: errors.New("bad provider")}, ExitConfigError},
		{"wrapped config", fmt.Errorf("startup: %w", &configError{err: errors.New("x")}), ExitConfigError},
		{"empty document", counter.ErrEmptyDocument, ExitError},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestValidateConfig(t *testing.T) {
	ok := types.Config{}.WithDefaults()
	assert.NoError(t, validateConfig(ok))

	bad := ok
	bad.LLM.Provider = "openai"
	assert.ErrorContains(t, validateConfig(bad), "unknown provider")

	bad = ok
	bad.Extraction.Backend = "ocr"
	assert.ErrorContains(t, validateConfig(bad), "unknown PDF backend")

	bad = ok
	bad.Extraction.MaxPages = -1
	assert.Error(t, validateConfig(bad))
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = newLogger("loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestRunLocate(t *testing.T) {
	var out, status bytes.Buffer
	require.NoError(t, runLocate(context.Background(), fakeExtractor{text: samplePaper}, &out, &status, "paper.pdf"))
	assert.Equal(t, "Lawrence, D. (2019). Title A.\nSmith, J. (2020). Title B.\n", out.String())
	assert.Contains(t, status.String(), `Found "References" heading`)

	out.Reset()
	status.Reset()
	require.NoError(t, runLocate(context.Background(), fakeExtractor{text: "Intro\nbody\n"}, &out, &status, "essay.pdf"))
	assert.Empty(t, out.String())
	assert.Contains(t, status.String(), "No reference heading found")

	out.Reset()
	status.Reset()
	require.NoError(t, runLocate(context.Background(), fakeExtractor{text: "Intro\nbody\nReferences\n"}, &out, &status, "stub.pdf"))
	assert.Empty(t, out.String())
	assert.Contains(t, status.String(), "count would search the full text")
}

func TestRunLocate_MissingFile(t *testing.T) {
	var out, status bytes.Buffer
	err := runLocate(context.Background(), fakeExtractor{err: fmt.Errorf("%w: gone.pdf", convert.ErrMissingFile)}, &out, &status, "gone.pdf")
	assert.ErrorIs(t, err, convert.ErrMissingFile)
	assert.Equal(t, "PDF file not found at 'gone.pdf'.\n", status.String())
}
