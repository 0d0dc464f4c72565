// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

// NoReferencesReply is the exact reply the splitter prompt asks for when a
// block holds no references.
const NoReferencesReply = "No references found."

// splitPromptTmpl asks the model to rewrite a text block as one reference per line.
var splitPromptTmpl = template.Must(template.New("split").Parse(`You extract individual academic reference entries from a block of text taken from a PDF.

The text may contain line breaks in the middle of entries, page headers, page numbers, or other noise.

Rules:
- Output each complete reference entry on its own line.
- Join entries that were broken across several lines back into one line.
- Keep the original wording of each entry. Do not number, bullet, or summarise entries.
- Do not add any text before or after the list.
- If the block contains no references, reply with exactly: {{.NoReferences}}

Text block:
{{.Block}}
`))

// presencePromptTmpl asks for a short reasoning and a JSON verdict.
var presencePromptTmpl = template.Must(template.New("presence").Parse(`You decide whether a specific author appears in the author list of an academic reference entry.

Reference entry:
{{.Entry}}

Author to find:
{{.Author}}

Think step by step about the names listed in the entry: consider surnames, initials, and different name orders. An author who is only mentioned in the title does not count.

Respond with a single JSON object and nothing else:
{"reasoning": "<one or two sentences>", "is_present": true or false}
`))

// ReferenceSplitter turns a text block into newline-delimited reference entries.
type ReferenceSplitter struct {
	backend Backend
}

// NewReferenceSplitter creates a splitter that prompts b.
func NewReferenceSplitter(b Backend) *ReferenceSplitter {
	return &ReferenceSplitter{backend: b}
}

// SplitReferences returns the model's newline-delimited entries for block,
// or NoReferencesReply.
func (s *ReferenceSplitter) SplitReferences(ctx context.Context, block string) (string, error) {
	prompt, err := render(splitPromptTmpl, struct {
		Block        string
		NoReferences string
	}{Block: block, NoReferences: NoReferencesReply})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	out, err := s.backend.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return stripCodeFence(out), nil
}

// AuthorChecker judges whether a reference entry names an author.
type AuthorChecker struct {
	backend Backend
}

// NewAuthorChecker creates a checker that prompts b.
func NewAuthorChecker(b Backend) *AuthorChecker {
	return &AuthorChecker{backend: b}
}

// IsAuthorPresent asks the model whether author appears in entry.
func (c *AuthorChecker) IsAuthorPresent(ctx context.Context, entry, author string) (bool, error) {
	prompt, err := render(presencePromptTmpl, struct {
		Entry  string
		Author string
	}{Entry: entry, Author: author})
	if err != nil {
		return false, fmt.Errorf("rendering prompt: %w", err)
	}

	out, err := c.backend.Complete(ctx, prompt)
	if err != nil {
		return false, err
	}
	return parsePresence(out)
}

// presenceReply is the JSON verdict. IsPresent is untyped because small
// models sometimes quote booleans.
type presenceReply struct {
	Reasoning string `json:"reasoning"`
	IsPresent any    `json:"is_present"`
}

// parsePresence reads a verdict from a model reply. It prefers the JSON
// object and falls back to a leading yes/no/true/false word.
func parsePresence(reply string) (bool, error) {
	text := stripCodeFence(strings.TrimSpace(reply))

	if i, j := strings.Index(text, "{"), strings.LastIndex(text, "}"); i >= 0 && j > i {
		var v presenceReply
		if err := json.Unmarshal([]byte(text[i:j+1]), &v); err == nil {
			if b, ok := asBool(v.IsPresent); ok {
				return b, nil
			}
		}
	}

	fields := strings.Fields(text)
	if len(fields) > 0 {
		if b, ok := asBool(strings.Trim(fields[0], ".,:;!\"'*`")); ok {
			return b, nil
		}
	}

	return false, fmt.Errorf("%w: %q", ErrMalformedResponse, truncate(reply, 120))
}

// asBool interprets JSON booleans and the words true/false/yes/no.
func asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	}
	return false, false
}

// stripCodeFence removes a Markdown code fence wrapped around the whole reply.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncate shortens s to at most n bytes without splitting a character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// render executes tmpl with data.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
