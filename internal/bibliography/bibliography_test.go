// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibliography

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  []string
	}{
		{
			name:  "one entry per line",
			block: "Smith, J. (2020).\nDoe, A. (2021).",
			want:  []string{"Smith, J. (2020).", "Doe, A. (2021)."},
		},
		{
			name:  "wrapped author-year entries",
			block: "Lawrence, D. (2019). A study of\nthings. Journal A.\nSmith, J. (2020). Title B.\n",
			want: []string{
				"Lawrence, D. (2019). A study of things. Journal A.",
				"Smith, J. (2020). Title B.",
			},
		},
		{
			name:  "hyphenated line break",
			block: "Lawrence, D. (2019). Compu-\ntational methods.",
			want:  []string{"Lawrence, D. (2019). Computational methods."},
		},
		{
			name:  "author line after unfinished sentence continues the entry",
			block: "Lawrence, D. (2019). Joint work with\nSmith, J. on things.",
			want:  []string{"Lawrence, D. (2019). Joint work with Smith, J. on things."},
		},
		{
			name:  "numbered entries across blank lines",
			block: "[1] Lawrence, D. Title A.\nJournal.\n\n[2] Smith, J. Title B.\n",
			want:  []string{"[1] Lawrence, D. Title A. Journal.", "[2] Smith, J. Title B."},
		},
		{
			name:  "dot-numbered entries",
			block: "1. Lawrence, D. Title A.\n2. Smith, J. Title B.",
			want:  []string{"1. Lawrence, D. Title A.", "2. Smith, J. Title B."},
		},
		{
			name:  "blank lines separate unnumbered entries",
			block: "some loose text\n\nmore loose text",
			want:  []string{"some loose text", "more loose text"},
		},
		{
			name:  "empty block",
			block: " \n\n ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.block))
		})
	}
}

func TestAuthorSegment(t *testing.T) {
	tests := []struct {
		entry string
		want  string
	}{
		{"Lawrence, D. (2019). Title A.", "Lawrence, D"},
		{"[3] van der Berg, A. and Smith, J. 2018. Title.", "van der Berg, A. and Smith, J"},
		{"Smith, J. and Doe, A. Untitled work. Press.", "Smith, J. and Doe, A. Untitled work"},
		{"2019. Anonymous report.", "2019"},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			assert.Equal(t, tt.want, AuthorSegment(tt.entry))
		})
	}
}

func TestSurname(t *testing.T) {
	assert.Equal(t, "Lawrence", Surname("Lawrence"))
	assert.Equal(t, "Lawrence", Surname("Lawrence, D."))
	assert.Equal(t, "Lawrence", Surname("David Lawrence"))
	assert.Equal(t, "van der Berg", Surname("Anna van der Berg"))
	assert.Equal(t, "", Surname("   "))
}

func TestMentionsAuthor(t *testing.T) {
	tests := []struct {
		name   string
		entry  string
		author string
		want   bool
	}{
		{"listed author", "Lawrence, D. (2019). Title A.", "Lawrence", true},
		{"other author", "Smith, J. (2020). Title B.", "Lawrence", false},
		{"name only in title", "Smith, J. (2020). Lawrence of Arabia revisited.", "Lawrence", false},
		{"second author", "Smith, J., & Lawrence, D. (2018). Title.", "D. Lawrence", true},
		{"case-insensitive", "LAWRENCE, D. (2019). Title.", "lawrence", true},
		{"prefix is not a match", "Lawrenceson, P. (2001). Title.", "Lawrence", false},
		{"particle surname", "[3] van der Berg, A. and Smith, J. 2018. Title.", "Anna van der Berg", true},
		{"non-ASCII surname", "Müller, K. (2021). Title.", "Müller", true},
		{"empty author", "Lawrence, D. (2019).", " ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MentionsAuthor(tt.entry, tt.author))
		})
	}
}

func TestSplitterAndChecker(t *testing.T) {
	ctx := context.Background()

	out, err := Splitter{}.SplitReferences(ctx, "Lawrence, D. (2019). Title A.\nSmith, J. (2020). Title B.")
	require.NoError(t, err)
	assert.Equal(t, "Lawrence, D. (2019). Title A.\nSmith, J. (2020). Title B.", out)

	out, err = Splitter{}.SplitReferences(ctx, "\n\n")
	require.NoError(t, err)
	assert.Equal(t, NoReferences, out)

	ok, err := Checker{}.IsAuthorPresent(ctx, "Lawrence, D. (2019). Title A.", "Lawrence")
	require.NoError(t, err)
	assert.True(t, ok)
}
