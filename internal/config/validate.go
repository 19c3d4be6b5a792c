// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/pdiddy/paper-digest/internal/query"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// minHardLimit is the smallest channel limit the chunker accepts plus one.
const minHardLimit = 65

// Validate reports every problem in cfg. It runs before any network call.
func Validate(cfg *types.Config) []error {
	var errs []error

	if strings.TrimSpace(cfg.Arxiv.Query) == "" {
		errs = append(errs, errors.Wrap(query.ErrEmptyQuery, "arxiv.query"))
	}
	switch cfg.Arxiv.Source {
	case "", types.SourceRSS, types.SourceAPI:
	default:
		errs = append(errs, errors.Wrapf(ErrUnknownSource, "arxiv.source %q", cfg.Arxiv.Source))
	}
	if cfg.Arxiv.ParallelSearches < 0 {
		errs = append(errs, errors.Errorf("arxiv.parallel_searches must not be negative, got %d", cfg.Arxiv.ParallelSearches))
	}
	if cfg.Arxiv.PageSize < 0 || cfg.Arxiv.PageSize > 2000 {
		errs = append(errs, errors.Errorf("arxiv.page_size must be between 1 and 2000, got %d", cfg.Arxiv.PageSize))
	}
	if cfg.HTTP.Timeout < 0 {
		errs = append(errs, errors.Errorf("http.timeout must not be negative, got %s", cfg.HTTP.Timeout))
	}

	switch cfg.Rank.Method {
	case "", types.RankLexical:
	case types.RankEmbedding:
		if cfg.Rank.EmbeddingModel == "" {
			errs = append(errs, errors.New("rank.embedding_model is required for the embedding method"))
		}
	default:
		errs = append(errs, errors.Errorf("rank.method %q: expected %q or %q", cfg.Rank.Method, types.RankLexical, types.RankEmbedding))
	}
	if cfg.Rank.TopK < 0 {
		errs = append(errs, errors.Errorf("rank.top_k must not be negative, got %d", cfg.Rank.TopK))
	}

	enrich := cfg.Enrich.TranslateAbstract || cfg.Enrich.TLDR || cfg.Enrich.Keywords
	if enrich && cfg.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required when enrichment is enabled"))
	}

	if cfg.Delivery.MessageDelay < 0 {
		errs = append(errs, errors.Errorf("delivery.message_delay must not be negative, got %s", cfg.Delivery.MessageDelay))
	}
	for i, ch := range cfg.Delivery.Channels {
		errs = append(errs, validateChannel(i, ch)...)
	}
	return errs
}

func validateChannel(i int, ch types.ChannelConfig) []error {
	var errs []error
	name := strconv.Itoa(i)
	if ch.Name != "" {
		name = ch.Name
	}
	switch ch.Kind {
	case types.ChannelWeCom, types.ChannelFeishu:
	default:
		errs = append(errs, errors.Errorf("delivery.channels[%s].kind %q: expected %q or %q", name, ch.Kind, types.ChannelWeCom, types.ChannelFeishu))
	}
	if ch.WebhookURL == "" {
		errs = append(errs, errors.Errorf("delivery.channels[%s].webhook_url is required", name))
	}
	if ch.HardLimit != 0 && ch.HardLimit < minHardLimit {
		errs = append(errs, errors.Errorf("delivery.channels[%s].hard_limit must be at least %d, got %d", name, minHardLimit, ch.HardLimit))
	}
	if ch.SoftBudget < 0 || (ch.SoftBudget > 0 && ch.HardLimit > 0 && ch.SoftBudget >= ch.HardLimit) {
		errs = append(errs, errors.Errorf("delivery.channels[%s].soft_budget %d must be below hard_limit %d", name, ch.SoftBudget, ch.HardLimit))
	}
	return errs
}
