// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Source selects which discoverer resolves the arXiv query.
type Source string

const (
	// SourceRSS discovers ids from the arXiv announcement feed and resolves
	// metadata through the API.
	SourceRSS Source = "rss"

	// SourceAPI queries the arXiv search API directly.
	SourceAPI Source = "api"
)

// HTTPConfig holds shared HTTP settings used by every outbound client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ArxivConfig holds discovery settings.
type ArxivConfig struct {
	// Query is the raw query: a category list ("cs.AI+cs.LG") or an API
	// search expression ("cat:cs.AI OR ti:agents").
	Query string `json:"query" yaml:"query"`

	// Source is "rss" (default) or "api".
	Source Source `json:"source" yaml:"source"`

	// MaxResults caps the candidate list; 0 or negative means unbounded.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// DaysBack is the freshness window in days; negative disables time
	// filtering.
	DaysBack int `json:"days_back" yaml:"days_back"`

	// OnlyNew keeps only first announcements in RSS mode.
	OnlyNew bool `json:"only_new" yaml:"only_new"`

	// ParallelSearches bounds concurrent per-category searches in API mode
	// (1 = sequential).
	ParallelSearches int `json:"parallel_searches" yaml:"parallel_searches"`

	// PageSize is the number of results requested per API page.
	PageSize int `json:"page_size" yaml:"page_size"`

	// PageDelay is the minimum delay between consecutive API requests.
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`
}

// ZoteroConfig holds credentials for syncing the corpus from Zotero.
type ZoteroConfig struct {
	LibraryID   string   `json:"library_id" yaml:"library_id"`
	APIKey      string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	LibraryType string   `json:"library_type" yaml:"library_type"`
	ItemTypes   []string `json:"item_types" yaml:"item_types"`

	// MaxItems caps the number of items fetched; 0 means all.
	MaxItems int `json:"max_items" yaml:"max_items"`
}

// CorpusConfig holds settings for the reference corpus.
type CorpusConfig struct {
	// DBPath is the SQLite file holding the corpus.
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxCorpus caps how many of the newest corpus papers are used for
	// ranking; 0 means all.
	MaxCorpus int `json:"max_corpus" yaml:"max_corpus"`

	Zotero ZoteroConfig `json:"zotero" yaml:"zotero"`
}

// RankMethod selects the reranker implementation.
type RankMethod string

const (
	RankLexical   RankMethod = "lexical"
	RankEmbedding RankMethod = "embedding"
)

// RankConfig holds reranking settings.
type RankConfig struct {
	Method RankMethod `json:"method" yaml:"method"`

	// TopK is the number of papers kept after reranking.
	TopK int `json:"top_k" yaml:"top_k"`

	// EmbeddingModel is the model passed to the /embeddings endpoint.
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`
}

// LLMConfig holds settings for the OpenAI-compatible chat API.
type LLMConfig struct {
	BaseURL     string  `json:"base_url" yaml:"base_url"`
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of 429 retries per request (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EnrichConfig selects which LLM enrichments are applied.
type EnrichConfig struct {
	TranslateAbstract bool   `json:"translate_abstract" yaml:"translate_abstract"`
	TargetLanguage    string `json:"target_language" yaml:"target_language"`
	TLDR              bool   `json:"tldr" yaml:"tldr"`
	TLDRLanguage      string `json:"tldr_language" yaml:"tldr_language"`
	TLDRMaxWords      int    `json:"tldr_max_words" yaml:"tldr_max_words"`
	Keywords          bool   `json:"keywords" yaml:"keywords"`
	MaxKeywords       int    `json:"max_keywords" yaml:"max_keywords"`
}

// ChannelKind identifies the webhook protocol of a delivery channel.
type ChannelKind string

const (
	ChannelWeCom  ChannelKind = "wecom"
	ChannelFeishu ChannelKind = "feishu"
)

// ChannelConfig describes one webhook destination.
type ChannelConfig struct {
	Name       string      `json:"name" yaml:"name"`
	Kind       ChannelKind `json:"kind" yaml:"kind"`
	WebhookURL string      `json:"webhook_url" yaml:"webhook_url"`

	// HardLimit is the maximum message size the channel accepts: UTF-8 bytes
	// for wecom, characters (code points) for feishu.
	HardLimit int `json:"hard_limit" yaml:"hard_limit"`

	// SoftBudget is the packing target, strictly below HardLimit.
	SoftBudget int `json:"soft_budget" yaml:"soft_budget"`

	// HeaderTemplate is the Feishu card header color.
	HeaderTemplate string `json:"header_template,omitempty" yaml:"header_template,omitempty"`
}

// DeliveryConfig holds settings for rendering and sending digests.
type DeliveryConfig struct {
	// Title heads every digest.
	Title string `json:"title" yaml:"title"`

	// SendEmpty delivers a "0 papers" digest when nothing was found.
	SendEmpty bool `json:"send_empty" yaml:"send_empty"`

	// MessageDelay is the minimum delay between messages on one channel.
	MessageDelay time.Duration `json:"message_delay" yaml:"message_delay"`

	Channels []ChannelConfig `json:"channels" yaml:"channels"`
}

// Config is the root of paper-digest.yaml.
type Config struct {
	Arxiv    ArxivConfig    `json:"arxiv" yaml:"arxiv"`
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Corpus   CorpusConfig   `json:"corpus" yaml:"corpus"`
	Rank     RankConfig     `json:"rank" yaml:"rank"`
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Enrich   EnrichConfig   `json:"enrich" yaml:"enrich"`
	Delivery DeliveryConfig `json:"delivery" yaml:"delivery"`
}
