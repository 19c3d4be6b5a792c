// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/pkg/types"
)

var versionSuffix = regexp.MustCompile(`v\d+$`)

// BaseID returns the arXiv id without its version suffix and without any URL
// or feed namespace prefix:
//
//	http://arxiv.org/abs/2401.01234v2 -> 2401.01234
//	oai:arXiv.org:2401.01234v1        -> 2401.01234
//	http://arxiv.org/abs/hep-th/9901001v3 -> hep-th/9901001
func BaseID(entryID string) string {
	id := strings.TrimSpace(entryID)
	id = strings.TrimRight(id, "/")
	switch {
	case strings.Contains(id, "/abs/"):
		id = id[strings.Index(id, "/abs/")+len("/abs/"):]
	case strings.HasPrefix(id, feedIDPrefix):
		id = strings.TrimPrefix(id, feedIDPrefix)
	}
	return versionSuffix.ReplaceAllString(id, "")
}

// Normalize maps a provider record to the canonical Paper. It never fails:
// missing authors or abstract become empty values. Applying it to a record
// rebuilt from its own output yields the same Paper.
func Normalize(r Record) types.Paper {
	link := strings.Replace(strings.TrimSpace(r.EntryID), "http://", "https://", 1)
	authors := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		if a = collapse(a); a != "" {
			authors = append(authors, a)
		}
	}
	return types.Paper{
		ID:        BaseID(r.EntryID),
		Title:     collapse(r.Title),
		Abstract:  collapse(r.Summary),
		Authors:   authors,
		Published: dateOnly(r.Published),
		URL:       link,
		Link:      link,
	}
}

// Dedupe keeps the first paper for every id, preserving order. Later
// duplicates are dropped, not merged. Dedupe of a deduplicated list returns
// an equal list.
func Dedupe(papers []types.Paper) []types.Paper {
	seen := make(map[string]bool, len(papers))
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
