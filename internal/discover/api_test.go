// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func categoryStreams() map[string][]Record {
	return map[string][]Record{
		"cat:cs.AI": {
			rec("2603.00010", "AI newest", hoursAgo(1)),
			rec("2603.00020", "Shared paper from AI", hoursAgo(5)),
			rec("2603.00030", "AI stale", hoursAgo(30)),
			rec("2603.00040", "AI never read", hoursAgo(40)),
		},
		"cat:cs.LG": {
			rec("2603.00020", "Shared paper from LG", hoursAgo(5)),
			rec("2603.00050", "LG fresh", hoursAgo(2)),
			rec("2603.00060", "LG stale", hoursAgo(50)),
		},
	}
}

func TestAPIDiscover_CategoryMergeDedupSort(t *testing.T) {
	search := &fakeSearch{streams: categoryStreams()}
	d := &APIDiscoverer{Search: search, Window: WindowDays(1), MaxResults: 10, Now: fixedNow}

	papers, err := d.Discover(context.Background(), mustParse(t, "cs.AI+cs.LG"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2603.00010", "2603.00020", "2603.00050"}, ids(papers))
	for _, p := range papers {
		if p.ID == "2603.00020" {
			assert.Equal(t, "Shared paper from AI", p.Title, "first-seen stream wins")
		}
	}
	for i := 1; i < len(papers); i++ {
		assert.False(t, papers[i].Published.After(papers[i-1].Published), "sorted newest first")
	}
}

func TestAPIDiscover_StopsAtFirstStaleRecord(t *testing.T) {
	search := &fakeSearch{streams: categoryStreams()}
	d := &APIDiscoverer{Search: search, Window: WindowDays(1), Now: fixedNow}

	_, err := d.Discover(context.Background(), mustParse(t, "cs.AI+cs.LG"))
	require.NoError(t, err)

	// The stale record is pulled (that is how staleness is detected) but
	// nothing after it.
	assert.Equal(t, 3, search.consumed["cat:cs.AI"])
	assert.Equal(t, 3, search.consumed["cat:cs.LG"])
}

func TestAPIDiscover_TruncatesMergedOutput(t *testing.T) {
	search := &fakeSearch{streams: categoryStreams()}
	d := &APIDiscoverer{Search: search, Window: Unbounded, MaxResults: 2, Now: fixedNow}

	papers, err := d.Discover(context.Background(), mustParse(t, "cs.AI+cs.LG"))
	require.NoError(t, err)

	require.Len(t, papers, 2)
	assert.Equal(t, "2603.00010", papers[0].ID)
	for _, req := range search.requests {
		assert.Equal(t, 2, req.Limit, "each stream is capped at max results")
	}
}

func TestAPIDiscover_ParallelIsDeterministic(t *testing.T) {
	defer goleak.VerifyNone(t)

	streams := categoryStreams()
	streams["cat:stat.ML"] = []Record{
		rec("2603.00020", "Shared paper from ML", hoursAgo(5)),
		rec("2603.00070", "ML fresh", hoursAgo(3)),
	}
	want := []string{"2603.00010", "2603.00050", "2603.00070", "2603.00020"}

	for i := 0; i < 20; i++ {
		d := &APIDiscoverer{Search: &fakeSearch{streams: streams}, Window: WindowDays(1), Parallel: 3, Now: fixedNow}
		papers, err := d.Discover(context.Background(), mustParse(t, "cs.AI+cs.LG+stat.ML"))
		require.NoError(t, err)
		got := ids(papers)
		assert.ElementsMatch(t, want, got)
		assert.Equal(t, "2603.00010", got[0])
		for _, p := range papers {
			if p.ID == "2603.00020" {
				assert.Equal(t, "Shared paper from AI", p.Title)
			}
		}
	}
}

func TestAPIDiscover_Literal(t *testing.T) {
	search := &fakeSearch{streams: map[string][]Record{
		"ti:agents AND cat:cs.AI": {
			rec("2603.00100", "Agents one", hoursAgo(1)),
			rec("2603.00100", "Agents one again", hoursAgo(1)),
			rec("2603.00101", "Agents two", hoursAgo(2)),
			rec("2603.00102", "Agents old", hoursAgo(100)),
			rec("2603.00103", "Agents older", hoursAgo(200)),
		},
	}}
	d := &APIDiscoverer{Search: search, Window: WindowDays(2), Now: fixedNow}

	papers, err := d.Discover(context.Background(), mustParse(t, "ti:agents+AND+cat:cs.AI"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2603.00100", "2603.00101"}, ids(papers))
	assert.Equal(t, "Agents one", papers[0].Title)
	assert.Equal(t, 4, search.consumed["ti:agents AND cat:cs.AI"])
	require.Len(t, search.requests, 1)
}

func TestAPIDiscover_EmptyIsNotAnError(t *testing.T) {
	d := &APIDiscoverer{Search: &fakeSearch{}, Window: WindowDays(1), Now: fixedNow}
	papers, err := d.Discover(context.Background(), mustParse(t, "cs.AI"))
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestAPIDiscover_UpstreamErrorPropagates(t *testing.T) {
	boom := errors.New("HTTP 500")
	search := &fakeSearch{
		streams: categoryStreams(),
		errs:    map[string]error{"cat:cs.LG": boom},
	}
	d := &APIDiscoverer{Search: search, Window: WindowDays(1), Now: fixedNow}

	papers, err := d.Discover(context.Background(), mustParse(t, "cs.AI+cs.LG"))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "cs.LG")
	assert.Nil(t, papers)
}
