// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibliography splits reference blocks into entries and matches
// author names against them with plain text heuristics. It backs the
// offline "heuristic" provider, which needs no language model and is less
// accurate on messy PDF text.
package bibliography

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NoReferences is the splitter reply for a block without entries.
const NoReferences = "No references found."

var (
	// numberedRe matches entry markers such as "[12]" or "12." at line start.
	numberedRe = regexp.MustCompile(`^(?:\[(\d+)\]|(\d{1,3})\.)\s+`)

	// authorStartRe matches a line that opens like an author list:
	// "Smith, J.", "Smith, John", or "Smith J,".
	authorStartRe = regexp.MustCompile(`^\p{Lu}[\p{L}'\-]+(?:,\s+\p{Lu}(?:\.|\p{Ll}+)|\s+\p{Lu}{1,3}[,.])`)

	// yearRe matches a 4-digit year with an optional disambiguation letter.
	yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})[a-z]?\b`)

	// initialRe matches single-letter initials so they survive sentence splitting.
	initialRe = regexp.MustCompile(`\b(\p{Lu})\.`)
)

// Split groups the lines of a reference block into entries. Numbered
// blocks ("[1] ...", "1. ...") start an entry at every marker. Otherwise a
// line that opens with an author list starts an entry when the previous
// line ended a sentence, and blank lines always end one.
func Split(block string) []string {
	lines := strings.Split(block, "\n")

	numbered := false
	for _, l := range lines {
		if numberedRe.MatchString(strings.TrimSpace(l)) {
			numbered = true
			break
		}
	}

	var (
		entries []string
		cur     []string
	)
	flush := func() {
		if len(cur) > 0 {
			entries = append(entries, joinLines(cur))
			cur = nil
		}
	}

	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			if !numbered {
				flush()
			}
			continue
		}

		var starts bool
		if numbered {
			starts = numberedRe.MatchString(t)
		} else {
			starts = authorStartRe.MatchString(t) && (len(cur) == 0 || strings.HasSuffix(cur[len(cur)-1], "."))
		}
		if starts {
			flush()
		}
		cur = append(cur, t)
	}
	flush()
	return entries
}

// joinLines rejoins a wrapped entry, undoing end-of-line hyphenation when
// the next line continues in lower case.
func joinLines(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			prev := lines[i-1]
			first, _ := utf8.DecodeRuneInString(l)
			if strings.HasSuffix(prev, "-") && unicode.IsLower(first) {
				s := b.String()
				b.Reset()
				b.WriteString(s[:len(s)-1])
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(l)
	}
	return b.String()
}

// AuthorSegment returns the part of entry that holds the author list: the
// text before the first year, or before the first sentence break when the
// entry has no year. Entry markers are dropped.
func AuthorSegment(entry string) string {
	entry = strings.TrimSpace(numberedRe.ReplaceAllString(strings.TrimSpace(entry), ""))
	if loc := yearRe.FindStringIndex(entry); loc != nil && loc[0] > 0 {
		return strings.TrimRight(entry[:loc[0]], " \t(,.")
	}
	if parts := splitOnPeriods(entry); len(parts) > 0 {
		return parts[0]
	}
	return entry
}

// splitOnPeriods splits text at sentence breaks, leaving initials, "et al."
// and "e.g."/"i.e." intact.
func splitOnPeriods(text string) []string {
	safe := strings.ReplaceAll(text, "et al.", "et al\x00")
	safe = strings.ReplaceAll(safe, "e.g.", "e\x00g\x00")
	safe = strings.ReplaceAll(safe, "i.e.", "i\x00e\x00")
	safe = initialRe.ReplaceAllString(safe, "${1}\x00")

	var result []string
	for _, p := range strings.Split(safe, ". ") {
		p = strings.ReplaceAll(p, "\x00", ".")
		p = strings.TrimSpace(strings.TrimRight(p, "."))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Surname extracts the family name to search for from an author query:
// the part before a comma ("Lawrence, D."), otherwise the last word
// ("David Lawrence"), otherwise the whole query.
func Surname(author string) string {
	author = strings.TrimSpace(author)
	if before, _, ok := strings.Cut(author, ","); ok {
		return strings.TrimSpace(before)
	}
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	// Keep particles: "van der Berg" stays whole.
	for i, f := range fields[:len(fields)-1] {
		if isParticle(f) {
			return strings.Join(fields[i:], " ")
		}
	}
	return fields[len(fields)-1]
}

func isParticle(s string) bool {
	switch strings.ToLower(s) {
	case "van", "von", "der", "de", "del", "della", "di", "da", "du", "le", "la", "ter", "ten":
		return true
	}
	return false
}

// MentionsAuthor reports whether the author list of entry contains the
// surname of author as a whole word sequence, ignoring case.
func MentionsAuthor(entry, author string) bool {
	want := tokens(Surname(author))
	if len(want) == 0 {
		return false
	}
	have := tokens(AuthorSegment(entry))
	for i := 0; i+len(want) <= len(have); i++ {
		match := true
		for j, w := range want {
			if have[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// tokens lower-cases s and splits it into runs of letters.
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// Splitter implements the reference-splitting capability without a model.
type Splitter struct{}

// SplitReferences returns one entry per line, or NoReferences.
func (Splitter) SplitReferences(_ context.Context, block string) (string, error) {
	entries := Split(block)
	if len(entries) == 0 {
		return NoReferences, nil
	}
	return strings.Join(entries, "\n"), nil
}

// Checker implements the author-presence capability without a model.
type Checker struct{}

// IsAuthorPresent matches the author's surname against the entry's author list.
func (Checker) IsAuthorPresent(_ context.Context, entry, author string) (bool, error) {
	return MentionsAuthor(entry, author), nil
}
