// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultPageSize  = 100
	defaultPageDelay = 3 * time.Second

	// arxivErrorID prefixes the id of the single entry arXiv returns when it
	// rejects a request.
	arxivErrorID = "http://arxiv.org/api/errors"

	// emptyPageRetries is how often an unexpectedly empty page is re-fetched.
	emptyPageRetries = 3
)

// ErrEmptyPage is returned when arXiv keeps answering a search page with no
// entries although its reported total says more results exist.
var ErrEmptyPage = errors.New("arXiv returned an empty page before the reported total")

// ArxivAPI talks to the arXiv query API. It implements both MetadataSource
// (id_list lookups) and SearchSource (paginated, newest-first searches).
// Requests share one limiter so parallel searches still honour the page
// delay.
type ArxivAPI struct {
	Client     *http.Client
	UserAgent  string
	PageSize   int
	MaxRetries int

	limiter *rate.Limiter
}

// NewArxivAPI returns a client configured from cfg. A zero PageDelay uses
// arXiv's requested three seconds between calls.
func NewArxivAPI(client *http.Client, cfg types.ArxivConfig, httpCfg types.HTTPConfig) *ArxivAPI {
	delay := cfg.PageDelay
	if delay <= 0 {
		delay = defaultPageDelay
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ArxivAPI{
		Client:    client,
		UserAgent: httpCfg.UserAgent,
		PageSize:  pageSize,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Lookup resolves a batch of ids.
func (a *ArxivAPI) Lookup(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{
		"id_list":     {strings.Join(ids, ",")},
		"start":       {"0"},
		"max_results": {strconv.Itoa(len(ids))},
	}
	records, _, err := a.fetch(ctx, params)
	return records, err
}

// Search streams results for req newest first, fetching one page at a time
// as the consumer advances. Paging continues past short pages until the
// reported total is reached. A page that comes back empty before the total
// is re-fetched up to emptyPageRetries times and then ends the stream with
// ErrEmptyPage.
func (a *ArxivAPI) Search(ctx context.Context, req SearchRequest) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		pageSize := a.PageSize
		if pageSize <= 0 {
			pageSize = defaultPageSize
		}

		for start := 0; ; {
			size := pageSize
			if req.Limit > 0 {
				size = min(size, req.Limit-start)
			}
			if size <= 0 {
				return
			}

			params := url.Values{
				"search_query": {req.Expression},
				"start":        {strconv.Itoa(start)},
				"max_results":  {strconv.Itoa(size)},
				"sortBy":       {"submittedDate"},
				"sortOrder":    {"descending"},
			}
			page, total, err := a.fetchPage(ctx, params, start)
			if err != nil {
				yield(Record{}, err)
				return
			}
			for _, r := range page {
				if !yield(r, nil) {
					return
				}
			}

			start += len(page)
			switch {
			case total >= 0 && start >= total:
				return
			case total < 0 && len(page) < size:
				// Without a total a short page is the only end marker.
				return
			}
		}
	}
}

// fetchPage fetches one search page, re-fetching while arXiv returns an
// empty page short of the reported total.
func (a *ArxivAPI) fetchPage(ctx context.Context, params url.Values, start int) ([]Record, int, error) {
	for attempt := 0; ; attempt++ {
		page, total, err := a.fetch(ctx, params)
		if err != nil || len(page) > 0 || total < 0 || start >= total {
			return page, total, err
		}
		if attempt == emptyPageRetries {
			return nil, total, fmt.Errorf("%w: start=%d total=%d after %d attempts", ErrEmptyPage, start, total, attempt+1)
		}
	}
}

// fetch performs one API call and returns its records and the reported
// total result count (-1 when absent).
func (a *ArxivAPI) fetch(ctx context.Context, params url.Values) ([]Record, int, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("waiting for arXiv rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	if a.UserAgent != "" {
		req.Header.Set("User-Agent", a.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, a.MaxRetries)
	if err != nil {
		return nil, 0, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("arXiv API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing arXiv response: %w", err)
	}

	records := make([]Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		if strings.HasPrefix(item.GUID, arxivErrorID) {
			return nil, 0, fmt.Errorf("arXiv API error: %s", strings.TrimSpace(item.Description))
		}
		records = append(records, recordFromItem(item))
	}
	return records, totalResults(feed), nil
}

func recordFromItem(item *gofeed.Item) Record {
	r := Record{
		EntryID: item.GUID,
		Title:   item.Title,
		Summary: item.Description,
	}
	if r.EntryID == "" {
		r.EntryID = item.Link
	}
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			r.Authors = append(r.Authors, p.Name)
		}
	}
	if item.PublishedParsed != nil {
		r.Published = item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		r.Updated = item.UpdatedParsed.UTC()
	}
	return r
}

func totalResults(feed *gofeed.Feed) int {
	v := extensionValue(feed.Extensions, "opensearch", "totalResults")
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
