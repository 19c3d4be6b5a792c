// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// SourceZotero labels papers synced from Zotero.
const SourceZotero = "zotero"

// zoteroAPIBase is the Zotero web API root. Package-level var for test
// substitution.
var zoteroAPIBase = "https://api.zotero.org"

const zoteroPageSize = 100

// DefaultItemTypes are the Zotero item types synced when none are configured.
var DefaultItemTypes = []string{"conferencePaper", "journalArticle", "preprint"}

// ErrZoteroCredentials is returned when the library id or API key is missing.
var ErrZoteroCredentials = errors.New("zotero library_id and api_key are required")

// Zotero fetches library items from the Zotero web API.
type Zotero struct {
	Config     types.ZoteroConfig
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	Logger     *zap.Logger
}

type zoteroItem struct {
	Key  string `json:"key"`
	Data struct {
		Title        string `json:"title"`
		AbstractNote string `json:"abstractNote"`
		DateAdded    string `json:"dateAdded"`
		Creators     []struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Name      string `json:"name"`
		} `json:"creators"`
	} `json:"data"`
}

// Fetch pages through the library and returns items that carry an
// abstract, stopping at Config.MaxItems when it is positive.
func (z *Zotero) Fetch(ctx context.Context) ([]types.CorpusPaper, error) {
	if z.Config.LibraryID == "" || z.Config.APIKey == "" {
		return nil, ErrZoteroCredentials
	}
	logger := z.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var out []types.CorpusPaper
	for start := 0; ; start += zoteroPageSize {
		items, total, err := z.page(ctx, start)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			p := it.paper()
			if p.Abstract == "" {
				continue
			}
			out = append(out, p)
			if z.Config.MaxItems > 0 && len(out) >= z.Config.MaxItems {
				return out, nil
			}
		}
		logger.Debug("zotero page fetched", zap.Int("start", start), zap.Int("items", len(items)), zap.Int("total", total))

		if len(items) < zoteroPageSize || (total > 0 && start+len(items) >= total) {
			return out, nil
		}
	}
}

func (z *Zotero) page(ctx context.Context, start int) ([]zoteroItem, int, error) {
	libType := z.Config.LibraryType
	if libType == "" {
		libType = "user"
	}
	itemTypes := z.Config.ItemTypes
	if len(itemTypes) == 0 {
		itemTypes = DefaultItemTypes
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(zoteroPageSize))
	params.Set("start", strconv.Itoa(start))
	params.Set("itemType", strings.Join(itemTypes, " || "))
	endpoint := fmt.Sprintf("%s/%ss/%s/items?%s", zoteroAPIBase, libType, url.PathEscape(z.Config.LibraryID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", "3")
	req.Header.Set("Zotero-API-Key", z.Config.APIKey)
	if z.UserAgent != "" {
		req.Header.Set("User-Agent", z.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, z.Client, req, z.MaxRetries)
	if err != nil {
		return nil, 0, fmt.Errorf("zotero request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("zotero returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var items []zoteroItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, 0, fmt.Errorf("decoding zotero response: %w", err)
	}
	total, _ := strconv.Atoi(resp.Header.Get("Total-Results"))
	return items, total, nil
}

func (it zoteroItem) paper() types.CorpusPaper {
	p := types.CorpusPaper{
		Key:      it.Key,
		Title:    strings.TrimSpace(it.Data.Title),
		Abstract: strings.Join(strings.Fields(it.Data.AbstractNote), " "),
	}
	for _, c := range it.Data.Creators {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = strings.TrimSpace(c.FirstName + " " + c.LastName)
		}
		if name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	p.AddedAt, _ = time.Parse(time.RFC3339, it.Data.DateAdded)
	return p
}

// Fetcher lists library papers. *Zotero satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]types.CorpusPaper, error)
}

// Sync replaces the Zotero papers in store with a fresh fetch. Nothing is
// removed when the fetch fails.
func Sync(ctx context.Context, store *Store, f Fetcher) (UpsertSummary, error) {
	papers, err := f.Fetch(ctx)
	if err != nil {
		return UpsertSummary{}, fmt.Errorf("fetching library: %w", err)
	}
	if _, err := store.DeleteSource(ctx, SourceZotero); err != nil {
		return UpsertSummary{}, err
	}
	return store.Upsert(ctx, SourceZotero, papers)
}
