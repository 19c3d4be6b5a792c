// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// rssFeedBase is the arXiv announcement feed. Declared as a var so tests
// can substitute an httptest server.
var rssFeedBase = "https://rss.arxiv.org/atom/"

// RSSFeed fetches the arXiv announcement feed with gofeed.
type RSSFeed struct {
	Client    *http.Client
	UserAgent string
}

// FetchFeed fetches and parses the feed for path (e.g. "cs.AI+cs.LG").
func (f *RSSFeed) FetchFeed(ctx context.Context, path string) (Feed, error) {
	fp := gofeed.NewParser()
	if f.Client != nil {
		fp.Client = f.Client
	}
	if f.UserAgent != "" {
		fp.UserAgent = f.UserAgent
	}

	parsed, err := fp.ParseURLWithContext(rssFeedBase+path, ctx)
	if err != nil {
		return Feed{}, fmt.Errorf("parsing feed: %w", err)
	}

	feed := Feed{Title: parsed.Title, Entries: make([]FeedEntry, 0, len(parsed.Items))}
	for _, item := range parsed.Items {
		e := FeedEntry{
			ID:           item.GUID,
			AnnounceType: extensionValue(item.Extensions, "arxiv", "announce_type"),
		}
		if e.ID == "" {
			e.ID = item.Link
		}
		if item.PublishedParsed != nil {
			e.Published = item.PublishedParsed.UTC()
		}
		if item.UpdatedParsed != nil {
			e.Updated = item.UpdatedParsed.UTC()
		}
		feed.Entries = append(feed.Entries, e)
	}
	return feed, nil
}

// extensionValue returns the first non-blank value of the ns:name extension
// element, or "".
func extensionValue(exts ext.Extensions, ns, name string) string {
	for _, e := range exts[ns][name] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}
