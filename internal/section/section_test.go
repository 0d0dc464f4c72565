// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "no heading",
			text: "Introduction\nSome text.\nConclusion\nMore text.\n",
			want: "",
		},
		{
			name: "heading word inside a sentence",
			text: "We list our references\nbelow the fold.\n",
			want: "",
		},
		{
			name: "stops at next section",
			text: "Intro text\nReferences\nSmith, J. (2020).\nDoe, A. (2021).\nConclusion\nMore text",
			want: "Smith, J. (2020).\nDoe, A. (2021).",
		},
		{
			name: "bibliography is the last section",
			text: "Body\nBibliography\nSmith, J. (2020).\nDoe, A. (2021).\n",
			want: "Smith, J. (2020).\nDoe, A. (2021).\n",
		},
		{
			name: "upper case heading",
			text: "Body\nREFERENCES\nSmith, J. (2020).\nAppendix\nTables\n",
			want: "Smith, J. (2020).",
		},
		{
			name: "works cited with surrounding spaces",
			text: "Body\n  Works Cited  \nSmith, J. (2020).\nFurther Reading\nx\n",
			want: "Smith, J. (2020).",
		},
		{
			name: "blank lines around the block",
			text: "References\n\nSmith, J.\n\n\nAuthor Contributions\nx\n",
			want: "Smith, J.",
		},
		{
			name: "heading word in another case does not end the block",
			text: "References\nSmith, J.\nBibliography\nDoe, A.\n",
			want: "Smith, J.\nBibliography\nDoe, A.\n",
		},
		{
			name: "three capitalised words end the block",
			text: "References\nSmith, J.\nSupplementary Material Index\nx\n",
			want: "Smith, J.",
		},
		{
			name: "four capitalised words do not end the block",
			text: "References\nSmith, J.\nThanks Go To Everyone\nDoe, A.\n",
			want: "Smith, J.\nThanks Go To Everyone\nDoe, A.\n",
		},
		{
			name: "unterminated final line is not a heading",
			text: "References\nSmith, J.\nAppendix",
			want: "Smith, J.\nAppendix",
		},
		{
			name: "first heading wins",
			text: "References\nSmith, J.\nAppendix\nx\nBibliography\nDoe, A.\n",
			want: "Smith, J.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Locate(tt.text))
		})
	}
}

// A reference entry that is a short capitalised phrase on its own line is
// mistaken for the next heading. This pins the known behaviour.
func TestLocate_ShortCapitalisedEntryEndsBlock(t *testing.T) {
	text := "References\nSmith, J. (2020). Title A.\nLawrence Berkeley Laboratory\nDoe, A. (2021). Title B.\n"
	assert.Equal(t, "Smith, J. (2020). Title A.", Locate(text))
}

func TestFind(t *testing.T) {
	text := "Intro\n\nReferences\nSmith, J. (2020).\nDoe, A. (2021).\nConclusion\nMore text"

	sec, ok := Find(text)
	require.True(t, ok)
	assert.Equal(t, "References", sec.Heading)
	assert.Equal(t, text[sec.Start:sec.End], sec.Text)
	assert.Equal(t, "Smith, J. (2020).\nDoe, A. (2021).", sec.Text)
}

func TestFind_NoHeading(t *testing.T) {
	sec, ok := Find("nothing to see here\n")
	assert.False(t, ok)
	assert.Equal(t, Section{}, sec)
}

func TestFind_BlockIsSubstring(t *testing.T) {
	docs := []string{
		"References\nA\n",
		"x\nbibliography\n\n\nSmith\nDoe\nMethods\n",
		"WORKS CITED\nLawrence, D. (2019).\n\nIndex\n",
		"References\n",
	}
	for _, doc := range docs {
		sec, ok := Find(doc)
		require.True(t, ok, doc)
		assert.LessOrEqual(t, sec.Start, sec.End)
		assert.Equal(t, doc[sec.Start:sec.End], sec.Text)
	}
}
