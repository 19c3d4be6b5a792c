// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/query"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	// MetadataBatchSize is the number of ids resolved per metadata lookup.
	MetadataBatchSize = 20

	// feedIDPrefix namespaces entry ids in the announcement feed.
	feedIDPrefix = "oai:arXiv.org:"

	// feedErrorMarker appears in the feed title when arXiv rejects the query.
	feedErrorMarker = "Feed error for query"

	announceNew = "new"
)

// FeedDiscoverer discovers papers from the chronological announcement feed
// and resolves their metadata through a MetadataSource.
type FeedDiscoverer struct {
	Feed     FeedSource
	Metadata MetadataSource

	// Window filters out entries published before now minus the window.
	Window Window

	// OnlyNew drops entries whose announce marker is present and not "new".
	OnlyNew bool

	// MaxResults truncates the id list; 0 or negative means unbounded.
	MaxResults int

	// Now overrides the clock in tests.
	Now    func() time.Time
	Logger *zap.Logger
}

// Discover fetches the feed for q, filters and truncates the announced ids,
// and resolves them in batches of MetadataBatchSize.
func (d *FeedDiscoverer) Discover(ctx context.Context, q query.Query) ([]types.Paper, error) {
	log := loggerOrNop(d.Logger)
	path := q.FeedPath()

	feed, err := d.Feed.FetchFeed(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", path, err)
	}
	if strings.Contains(feed.Title, feedErrorMarker) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, path)
	}

	ids := d.announcedIDs(feed)
	log.Info("feed scanned",
		zap.String("query", path),
		zap.Int("entries", len(feed.Entries)),
		zap.Int("fresh", len(ids)),
		zap.Stringer("window", d.Window))
	if d.MaxResults > 0 && len(ids) > d.MaxResults {
		ids = ids[:d.MaxResults]
	}
	if len(ids) == 0 {
		return []types.Paper{}, nil
	}

	var papers []types.Paper
	for start := 0; start < len(ids); start += MetadataBatchSize {
		end := min(start+MetadataBatchSize, len(ids))
		records, err := d.Metadata.Lookup(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("resolving metadata for ids %d-%d: %w", start+1, end, err)
		}
		for _, r := range records {
			papers = append(papers, Normalize(r))
		}
		log.Debug("metadata batch resolved", zap.Int("requested", end-start), zap.Int("resolved", len(records)))
	}
	return Dedupe(papers), nil
}

// announcedIDs applies the announce-type and freshness filters in feed order.
func (d *FeedDiscoverer) announcedIDs(feed Feed) []string {
	cutoff, bounded := d.Window.Cutoff(nowOrDefault(d.Now))

	var ids []string
	seen := make(map[string]bool)
	for _, e := range feed.Entries {
		if d.OnlyNew && e.AnnounceType != "" && e.AnnounceType != announceNew {
			continue
		}
		if bounded {
			ts := e.Published
			if ts.IsZero() {
				ts = e.Updated
			}
			if !ts.IsZero() && ts.Before(cutoff) {
				continue
			}
		}
		id := strings.TrimPrefix(strings.TrimSpace(e.ID), feedIDPrefix)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
