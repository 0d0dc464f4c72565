// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refcount/pkg/types"
)

// Output formats for --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) bool {
	switch f {
	case formatText, formatJSON, formatYAML:
		return true
	}
	return false
}

// statusLine is printed before the pipeline starts.
func statusLine(author string) string {
	return fmt.Sprintf("Searching for references by '%s'...", author)
}

// writeReport prints r in the given format. Text output is the single
// count line, preceded by one marked line per entry when showEntries is set.
func writeReport(w io.Writer, format string, r types.CountReport, showEntries bool) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	if showEntries {
		switch {
		case r.NoReferences:
			fmt.Fprintln(w, "No references found.")
		default:
			for _, e := range r.Entries {
				mark := " "
				if e.Match {
					mark = "x"
				}
				fmt.Fprintf(w, "[%s] %s\n", mark, e.Entry)
			}
		}
		if r.FullTextFallback {
			fmt.Fprintln(w, "(no reference heading found; searched the full text)")
		}
	}
	_, err := fmt.Fprintf(w, "Number of references by '%s': %d\n", r.Author, r.Count)
	return err
}
