// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-digest/internal/query"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// APIDiscoverer discovers papers by streaming date-descending search results.
type APIDiscoverer struct {
	Search SearchSource

	// Window stops each stream at the first record older than now minus
	// the window.
	Window Window

	// MaxResults caps every stream and the merged output; 0 or negative
	// means unbounded.
	MaxResults int

	// Parallel bounds concurrent category searches. Values below 2 search
	// categories one at a time.
	Parallel int

	Now    func() time.Time
	Logger *zap.Logger
}

// Discover runs one search per category for category lists, merging with
// first-seen-wins dedup and a newest-first sort, or a single search for a
// literal expression.
func (d *APIDiscoverer) Discover(ctx context.Context, q query.Query) ([]types.Paper, error) {
	cutoff, bounded := d.Window.Cutoff(nowOrDefault(d.Now))
	stop := func(r Record) bool {
		return bounded && !r.Published.IsZero() && r.Published.Before(cutoff)
	}

	var papers []types.Paper
	if q.Kind == query.KindCategories {
		merged, err := d.searchCategories(ctx, q.Categories, stop)
		if err != nil {
			return nil, err
		}
		papers = merged
	} else {
		found, err := d.collect(ctx, SearchRequest{Expression: q.Expression, Limit: d.limit()}, stop)
		if err != nil {
			return nil, fmt.Errorf("searching %q: %w", q.Expression, err)
		}
		papers = Dedupe(found)
	}

	if d.MaxResults > 0 && len(papers) > d.MaxResults {
		papers = papers[:d.MaxResults]
	}
	loggerOrNop(d.Logger).Info("api search complete",
		zap.Stringer("kind", q.Kind),
		zap.Int("papers", len(papers)),
		zap.Stringer("window", d.Window))
	return papers, nil
}

// searchCategories searches every category, possibly in parallel, then
// merges the per-category results in category order so the output does
// not depend on completion order.
func (d *APIDiscoverer) searchCategories(ctx context.Context, categories []string, stop func(Record) bool) ([]types.Paper, error) {
	perCategory := make([][]types.Paper, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, d.Parallel))
	for i, cat := range categories {
		g.Go(func() error {
			found, err := d.collect(gctx, SearchRequest{Expression: query.CategoryExpression(cat), Limit: d.limit()}, stop)
			if err != nil {
				return fmt.Errorf("searching category %s: %w", cat, err)
			}
			perCategory[i] = found
			loggerOrNop(d.Logger).Debug("category searched", zap.String("category", cat), zap.Int("fresh", len(found)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []types.Paper
	for _, found := range perCategory {
		all = append(all, found...)
	}
	merged := Dedupe(all)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Published.After(merged[j].Published)
	})
	return merged, nil
}

// collect consumes one stream until it ends, errors, or yields a record for
// which stop is true. Records after a stale one are never fetched.
func (d *APIDiscoverer) collect(ctx context.Context, req SearchRequest, stop func(Record) bool) ([]types.Paper, error) {
	var out []types.Paper
	for rec, err := range d.Search.Search(ctx, req) {
		if err != nil {
			return nil, err
		}
		if stop(rec) {
			break
		}
		out = append(out, Normalize(rec))
	}
	return out, nil
}

func (d *APIDiscoverer) limit() int {
	if d.MaxResults > 0 {
		return d.MaxResults
	}
	return 0
}
