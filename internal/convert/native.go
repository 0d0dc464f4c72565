// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// NativeConverter extracts text in-process with github.com/ledongthuc/pdf.
type NativeConverter struct {
	maxPages int
}

// NewNativeConverter creates a converter that reads at most maxPages pages
// (0 means all).
func NewNativeConverter(maxPages int) *NativeConverter {
	return &NativeConverter{maxPages: maxPages}
}

// Name implements Converter.
func (n *NativeConverter) Name() string { return "native" }

// Convert reads each page's plain text. Pages that fail to decode are
// skipped; pages are joined with a newline so a heading at the top of a
// page still starts a line.
func (n *NativeConverter) Convert(ctx context.Context, pdfPath string) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing %s: %v", pdfPath, r)
		}
	}()

	f, reader, err := pdflib.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	if n.maxPages > 0 && numPages > n.maxPages {
		numPages = n.maxPages
	}

	var buf strings.Builder
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(pageText)
	}
	return buf.String(), nil
}
