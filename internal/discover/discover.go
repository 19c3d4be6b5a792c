// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover turns a parsed query into candidate papers. Two
// discoverers share the same output contract: FeedDiscoverer reads the
// arXiv announcement feed and resolves metadata in batches, APIDiscoverer
// streams date-sorted search results and stops at the freshness cutoff.
package discover

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/query"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrInvalidQuery is returned when the feed reports that the query itself
// is malformed.
var ErrInvalidQuery = errors.New("invalid arxiv query")

// ErrUnknownSource is returned by New for a source other than rss or api.
var ErrUnknownSource = errors.New("unknown arxiv source")

// Discoverer resolves a query into canonical papers. An empty result with a
// nil error means nothing new was announced.
type Discoverer interface {
	Discover(ctx context.Context, q query.Query) ([]types.Paper, error)
}

// Record is a raw provider record as returned by the arXiv API.
type Record struct {
	// EntryID is the provider entry id, e.g. "http://arxiv.org/abs/2401.01234v2".
	EntryID   string
	Title     string
	Summary   string
	Authors   []string
	Published time.Time
	Updated   time.Time
}

// Feed is an announcement feed as seen by FeedDiscoverer.
type Feed struct {
	Title   string
	Entries []FeedEntry
}

// FeedEntry is one announcement.
type FeedEntry struct {
	// ID is the namespaced entry id, e.g. "oai:arXiv.org:2401.01234v1".
	ID string

	// AnnounceType is "new", "cross", "replace", ... or "" when the feed
	// carries no marker.
	AnnounceType string

	Published time.Time
	Updated   time.Time
}

// FeedSource fetches the announcement feed for a rendered query path.
type FeedSource interface {
	FetchFeed(ctx context.Context, path string) (Feed, error)
}

// MetadataSource resolves up to MetadataBatchSize ids to records. The order
// of the returned records need not match ids.
type MetadataSource interface {
	Lookup(ctx context.Context, ids []string) ([]Record, error)
}

// SearchRequest is a date-descending search.
type SearchRequest struct {
	Expression string

	// Limit caps the number of records the stream yields; 0 means no cap.
	Limit int
}

// SearchSource streams search results newest first. The stream fetches
// lazily; callers stop it by breaking out of the range loop. A non-nil
// error is yielded at most once and ends the stream.
type SearchSource interface {
	Search(ctx context.Context, req SearchRequest) iter.Seq2[Record, error]
}

// Window is the freshness window. The zero value is Unbounded.
type Window struct {
	d       time.Duration
	bounded bool
}

// Unbounded disables time filtering.
var Unbounded = Window{}

// Within returns a window of d. A negative d is Unbounded.
func Within(d time.Duration) Window {
	if d < 0 {
		return Unbounded
	}
	return Window{d: d, bounded: true}
}

// WindowDays converts the configured days_back; negative means unbounded.
func WindowDays(days int) Window {
	if days < 0 {
		return Unbounded
	}
	return Within(time.Duration(days) * 24 * time.Hour)
}

// Cutoff returns now minus the window, and false when unbounded.
func (w Window) Cutoff(now time.Time) (time.Time, bool) {
	if !w.bounded {
		return time.Time{}, false
	}
	return now.Add(-w.d), true
}

func (w Window) String() string {
	if !w.bounded {
		return "unbounded"
	}
	return w.d.String()
}

// New builds the discoverer selected by cfg.Source, wired to the live arXiv
// endpoints. The returned discoverer logs through logger.
func New(cfg types.ArxivConfig, httpCfg types.HTTPConfig, client *http.Client, logger *zap.Logger) (Discoverer, error) {
	api := NewArxivAPI(client, cfg, httpCfg)
	window := WindowDays(cfg.DaysBack)

	switch cfg.Source {
	case types.SourceRSS, "":
		return &FeedDiscoverer{
			Feed:       &RSSFeed{Client: client, UserAgent: httpCfg.UserAgent},
			Metadata:   api,
			Window:     window,
			OnlyNew:    cfg.OnlyNew,
			MaxResults: cfg.MaxResults,
			Logger:     logger,
		}, nil
	case types.SourceAPI:
		return &APIDiscoverer{
			Search:     api,
			Window:     window,
			MaxResults: cfg.MaxResults,
			Parallel:   cfg.ParallelSearches,
			Logger:     logger,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownSource, cfg.Source, types.SourceRSS, types.SourceAPI)
	}
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func nowOrDefault(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now()
}
