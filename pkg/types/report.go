// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EntryVerdict records the author-presence judgment for one reference entry.
type EntryVerdict struct {
	// Entry is the trimmed reference text as returned by the splitter.
	Entry string `json:"entry" yaml:"entry"`

	// Match is true when the checker judged the author present.
	Match bool `json:"match" yaml:"match"`
}

// CountReport is the outcome of one counting run. It lives for the
// duration of a single invocation and is only ever printed.
type CountReport struct {
	// Author is the name that was searched for.
	Author string `json:"author" yaml:"author"`

	// Source is the PDF path or URI the text came from, if known.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Model identifies the backend and model that made the judgments.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Heading is the section heading that was found, empty on fallback.
	Heading string `json:"heading,omitempty" yaml:"heading,omitempty"`

	// FullTextFallback is true when no reference heading was found and the
	// whole document was handed to the splitter.
	FullTextFallback bool `json:"full_text_fallback" yaml:"full_text_fallback"`

	// NoReferences is true when the splitter reported that the block
	// contains no references.
	NoReferences bool `json:"no_references" yaml:"no_references"`

	// Entries lists every reference entry with its verdict, in splitter order.
	Entries []EntryVerdict `json:"entries" yaml:"entries"`

	// Count is the number of entries that mention Author.
	Count int `json:"count" yaml:"count"`
}
