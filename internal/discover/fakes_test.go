// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func hoursAgo(h int) time.Time { return testNow.Add(-time.Duration(h) * time.Hour) }

type fakeFeed struct {
	feed    Feed
	err     error
	gotPath string
}

func (f *fakeFeed) FetchFeed(_ context.Context, path string) (Feed, error) {
	f.gotPath = path
	return f.feed, f.err
}

// fakeMetadata returns records for the requested ids in reverse order, since
// lookups do not promise request order.
type fakeMetadata struct {
	batches [][]string
	err     error
}

func (m *fakeMetadata) Lookup(_ context.Context, ids []string) ([]Record, error) {
	m.batches = append(m.batches, append([]string(nil), ids...))
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Record, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, Record{
			EntryID:   "http://arxiv.org/abs/" + ids[i],
			Title:     "Paper " + ids[i],
			Summary:   "Abstract of " + ids[i],
			Published: testNow,
		})
	}
	return out, nil
}

// fakeSearch serves fixed streams keyed by expression and counts how many
// records each stream actually yielded.
type fakeSearch struct {
	mu       sync.Mutex
	streams  map[string][]Record
	errs     map[string]error
	consumed map[string]int
	requests []SearchRequest
}

func (s *fakeSearch) Search(_ context.Context, req SearchRequest) iter.Seq2[Record, error] {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	return func(yield func(Record, error) bool) {
		if err := s.errs[req.Expression]; err != nil {
			yield(Record{}, err)
			return
		}
		for i, r := range s.streams[req.Expression] {
			if req.Limit > 0 && i >= req.Limit {
				return
			}
			s.mu.Lock()
			if s.consumed == nil {
				s.consumed = make(map[string]int)
			}
			s.consumed[req.Expression]++
			s.mu.Unlock()
			if !yield(r, nil) {
				return
			}
		}
	}
}

func rec(id, title string, published time.Time) Record {
	return Record{
		EntryID:   fmt.Sprintf("http://arxiv.org/abs/%sv1", id),
		Title:     title,
		Summary:   "  summary of\n " + title + "  ",
		Authors:   []string{"Ada Lovelace"},
		Published: published,
	}
}
