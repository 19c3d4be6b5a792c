// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/chunk"
	"github.com/pdiddy/paper-digest/internal/corpus"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultUserAgent identifies paper-digest to arXiv and Zotero.
const DefaultUserAgent = "paper-digest/0.1 (+https://github.com/pdiddy/paper-digest)"

// FeishuHardLimit is the default message limit for Feishu cards, in code
// points. Card payloads are capped at 30 KB and CJK text takes three bytes
// per character.
const FeishuHardLimit = 8000

// defaults lists every known key. Registering a default also makes the key
// visible to AutomaticEnv during Unmarshal.
var defaults = map[string]any{
	"arxiv.query":             "cs.AI+cs.CL+cs.LG",
	"arxiv.source":            string(types.SourceRSS),
	"arxiv.max_results":       30,
	"arxiv.days_back":         1,
	"arxiv.only_new":          true,
	"arxiv.parallel_searches": 1,
	"arxiv.page_size":         100,
	"arxiv.page_delay":        3 * time.Second,

	"http.timeout":    30 * time.Second,
	"http.user_agent": DefaultUserAgent,

	"corpus.db_path":             corpus.DefaultDBPath,
	"corpus.max_corpus":          400,
	"corpus.zotero.library_id":   "",
	"corpus.zotero.api_key":      "",
	"corpus.zotero.library_type": "user",
	"corpus.zotero.item_types":   corpus.DefaultItemTypes,
	"corpus.zotero.max_items":    0,

	"rank.method":          string(types.RankLexical),
	"rank.top_k":           5,
	"rank.embedding_model": "text-embedding-3-small",

	"llm.base_url":    llm.DefaultBaseURL,
	"llm.api_key":     "",
	"llm.model":       "gpt-4o-mini",
	"llm.temperature": 0.0,
	"llm.max_retries": 3,

	"enrich.translate_abstract": true,
	"enrich.target_language":    "Chinese",
	"enrich.tldr":               true,
	"enrich.tldr_language":      "Chinese",
	"enrich.tldr_max_words":     80,
	"enrich.keywords":           false,
	"enrich.max_keywords":       6,

	"delivery.title":         "arXiv Daily Picks",
	"delivery.send_empty":    true,
	"delivery.message_delay": time.Second,
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// hardLimitFor returns the default message limit of a channel kind.
func hardLimitFor(kind types.ChannelKind) int {
	if kind == types.ChannelFeishu {
		return FeishuHardLimit
	}
	return chunk.DefaultHardLimit
}

func applyChannelDefaults(cfg *types.Config) {
	for i := range cfg.Delivery.Channels {
		ch := &cfg.Delivery.Channels[i]
		if ch.Name == "" {
			ch.Name = string(ch.Kind)
		}
		if ch.HardLimit == 0 {
			ch.HardLimit = hardLimitFor(ch.Kind)
		}
	}
}
