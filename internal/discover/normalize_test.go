// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func TestBaseID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/2401.01234v2", "2401.01234"},
		{"https://arxiv.org/abs/2401.01234", "2401.01234"},
		{"oai:arXiv.org:2401.01234v1", "2401.01234"},
		{"2401.01234v12", "2401.01234"},
		{"http://arxiv.org/abs/hep-th/9901001v3", "hep-th/9901001"},
		{"http://arxiv.org/abs/2401.01234v2/", "2401.01234"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseID(tt.in), "BaseID(%q)", tt.in)
	}
}

func TestNormalize(t *testing.T) {
	r := Record{
		EntryID:   "http://arxiv.org/abs/2401.01234v2",
		Title:     "  Attention\n  Is All   You Need ",
		Summary:   "We propose\n\tthe Transformer.\n",
		Authors:   []string{"Ashish Vaswani", " ", "Noam  Shazeer"},
		Published: time.Date(2024, 1, 2, 18, 59, 3, 0, time.UTC),
	}
	p := Normalize(r)

	assert.Equal(t, "2401.01234", p.ID)
	assert.Equal(t, "Attention Is All You Need", p.Title)
	assert.Equal(t, "We propose the Transformer.", p.Abstract)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, p.Authors)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), p.Published)
	assert.Equal(t, "https://arxiv.org/abs/2401.01234v2", p.URL)
	assert.Equal(t, p.URL, p.Link)
	assert.Equal(t, "2024-01-02", p.PublishedDate())
}

func TestNormalizeMissingOptionalFields(t *testing.T) {
	p := Normalize(Record{EntryID: "http://arxiv.org/abs/2401.00001v1"})
	assert.Equal(t, "2401.00001", p.ID)
	assert.Empty(t, p.Abstract)
	assert.NotNil(t, p.Authors)
	assert.Empty(t, p.Authors)
	assert.True(t, p.Published.IsZero())
	assert.Equal(t, "", p.PublishedDate())
}

func TestNormalizeIdempotent(t *testing.T) {
	first := Normalize(rec("2401.00001", "A  title", time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)))
	again := Normalize(Record{
		EntryID:   first.Link,
		Title:     first.Title,
		Summary:   first.Abstract,
		Authors:   first.Authors,
		Published: first.Published,
	})
	assert.Equal(t, first, again)
}

func TestDedupeFirstSeenWins(t *testing.T) {
	papers := []types.Paper{
		{ID: "a", Title: "first a"},
		{ID: "b", Title: "first b"},
		{ID: "a", Title: "second a"},
	}
	got := Dedupe(papers)
	assert.Equal(t, []types.Paper{{ID: "a", Title: "first a"}, {ID: "b", Title: "first b"}}, got)
	assert.Equal(t, got, Dedupe(got), "dedupe of a deduplicated list is a no-op")
}

func TestWindow(t *testing.T) {
	_, bounded := Unbounded.Cutoff(testNow)
	assert.False(t, bounded)

	_, bounded = WindowDays(-1).Cutoff(testNow)
	assert.False(t, bounded)

	cutoff, bounded := WindowDays(1).Cutoff(testNow)
	assert.True(t, bounded)
	assert.Equal(t, testNow.Add(-24*time.Hour), cutoff)

	cutoff, bounded = WindowDays(0).Cutoff(testNow)
	assert.True(t, bounded)
	assert.Equal(t, testNow, cutoff)

	assert.Equal(t, "unbounded", Unbounded.String())
	assert.Equal(t, "2h0m0s", Within(2*time.Hour).String())
}
