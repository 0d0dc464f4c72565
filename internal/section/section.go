// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package section locates the bibliography within plain document text.
//
// The locator is a heading heuristic over unstructured text. It cannot tell a
// real section heading from a reference entry that happens to be a short
// capitalised phrase on its own line (e.g. a wrapped "Lawrence Berkeley
// Laboratory"); such a line ends the block early.
package section

import (
	"regexp"
	"strings"
)

var (
	// headingRe matches a line holding only a bibliography heading. The
	// trailing \s*\n also consumes blank lines that follow the heading.
	headingRe = regexp.MustCompile(`(?im)^[ \t]*(references|bibliography|works cited)\s*\n`)

	// nextSectionRe matches a line of one to three capitalised words,
	// e.g. "Conclusion" or "Supplementary Materials".
	nextSectionRe = regexp.MustCompile(`^[ \t]*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){0,2})[ \t\r]*$`)
)

// headingWords never end a reference block, whatever their case.
var headingWords = map[string]bool{
	"references":   true,
	"bibliography": true,
	"works cited":  true,
}

// Section is a located reference block. Text is always fullText[Start:End].
type Section struct {
	// Heading is the heading line as it appears in the document, trimmed.
	Heading string

	// Start and End are byte offsets into the document text.
	Start int
	End   int

	// Text is the block between the heading and the next section.
	Text string
}

// Find returns the reference block of fullText. The boolean is false when
// no References, Bibliography, or Works Cited heading exists.
func Find(fullText string) (Section, bool) {
	m := headingRe.FindStringSubmatchIndex(fullText)
	if m == nil {
		return Section{}, false
	}

	start := m[1]
	rest := fullText[start:]
	end := start + nextSectionStart(rest)

	return Section{
		Heading: fullText[m[2]:m[3]],
		Start:   start,
		End:     end,
		Text:    fullText[start:end],
	}, true
}

// Locate returns the text most likely to hold the bibliography, or the
// empty string when no heading was found. Callers fall back to the full text.
func Locate(fullText string) string {
	sec, ok := Find(fullText)
	if !ok {
		return ""
	}
	return sec.Text
}

// nextSectionStart returns the offset in block where the next section
// begins, or len(block). A candidate line must follow a line break and be
// terminated by one; the first line of the block is never a candidate.
func nextSectionStart(block string) int {
	pos := 0
	for pos < len(block) {
		nl := strings.IndexByte(block[pos:], '\n')
		if nl < 0 {
			break
		}
		if pos > 0 && isSectionHeading(block[pos:pos+nl]) {
			return precedingBreak(block, pos)
		}
		pos += nl + 1
	}
	return len(block)
}

// isSectionHeading reports whether line looks like the heading of a
// following section.
func isSectionHeading(line string) bool {
	m := nextSectionRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	name := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
	return !headingWords[name]
}

// precedingBreak returns the offset of the first line break in the
// whitespace run that precedes lineStart, so the block ends right after
// its last non-blank line.
func precedingBreak(block string, lineStart int) int {
	trimmed := len(strings.TrimRight(block[:lineStart], " \t\r\n\f\v"))
	return trimmed + strings.IndexByte(block[trimmed:lineStart], '\n')
}
