// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PdftotextConverter shells out to poppler's pdftotext.
type PdftotextConverter struct {
	maxPages int
	exec     executor
}

// NewPdftotextConverter creates a converter that reads at most maxPages
// pages (0 means all).
func NewPdftotextConverter(maxPages int) *PdftotextConverter {
	return &PdftotextConverter{maxPages: maxPages, exec: osExecutor{}}
}

// Name implements Converter.
func (p *PdftotextConverter) Name() string { return binPdftotext }

// Convert runs pdftotext in layout mode and returns its stdout.
func (p *PdftotextConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	if _, err := p.exec.LookPath(binPdftotext); err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", binPdftotext, err)
	}
	out, err := p.exec.Output(ctx, binPdftotext, p.args(pdfPath)...)
	if err != nil {
		return "", fmt.Errorf("running %s on %s: %w", binPdftotext, pdfPath, err)
	}
	return string(out), nil
}

func (p *PdftotextConverter) args(pdfPath string) []string {
	args := []string{"-layout"}
	if p.maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(p.maxPages))
	}
	return append(args, pdfPath, "-")
}
