// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/chunk"
	"github.com/pdiddy/paper-digest/internal/corpus"
	"github.com/pdiddy/paper-digest/internal/deliver"
	"github.com/pdiddy/paper-digest/internal/discover"
	"github.com/pdiddy/paper-digest/internal/enrich"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/query"
	"github.com/pdiddy/paper-digest/internal/rank"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// BuildOptions carries the process-level dependencies of Build.
type BuildOptions struct {
	DryRun  bool
	Preview io.Writer
	Logger  *zap.Logger
}

// Build wires a Pipeline from configuration. The returned close function
// releases the corpus database. Configuration problems surface here,
// before any network call.
func Build(cfg *types.Config, opts BuildOptions) (*Pipeline, func() error, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	q, err := query.Parse(cfg.Arxiv.Query)
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Delivery.Channels) == 0 && !opts.DryRun {
		return nil, nil, fmt.Errorf("no delivery channels configured")
	}

	client := &http.Client{Timeout: cfg.HTTP.Timeout}

	disc, err := discover.New(cfg.Arxiv, cfg.HTTP, client, logger)
	if err != nil {
		return nil, nil, err
	}

	llmClient := llm.New(cfg.LLM, client)
	var embedder rank.Embedder
	if cfg.Rank.Method == types.RankEmbedding {
		embedder = &llm.Embedder{Client: llmClient, Model: cfg.Rank.EmbeddingModel}
	}
	reranker, err := rank.New(cfg.Rank, embedder)
	if err != nil {
		return nil, nil, err
	}

	channels, err := Channels(cfg.Delivery, client)
	if err != nil {
		return nil, nil, err
	}

	store, err := corpus.Open(cfg.Corpus.DBPath)
	if err != nil {
		return nil, nil, err
	}

	p := &Pipeline{
		Query:        q,
		Discoverer:   disc,
		Corpus:       store,
		MaxCorpus:    cfg.Corpus.MaxCorpus,
		Reranker:     reranker,
		Enricher:     &enrich.Enricher{LLM: llmClient, Config: cfg.Enrich, Logger: logger},
		Channels:     channels,
		SendEmpty:    cfg.Delivery.SendEmpty,
		MessageDelay: cfg.Delivery.MessageDelay,
		DryRun:       opts.DryRun,
		Preview:      opts.Preview,
		Logger:       logger,
	}
	return p, store.Close, nil
}

// Channels builds a chunker and transport for every configured channel.
// WeCom robots limit markdown content in UTF-8 bytes, so their chunkers
// count bytes.
func Channels(cfg types.DeliveryConfig, client *http.Client) ([]Channel, error) {
	channels := make([]Channel, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		chunker, err := chunk.New(cfg.Title, ch.HardLimit, ch.SoftBudget)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", ch.Name, err)
		}
		if ch.Kind == types.ChannelWeCom {
			chunker.Measure = chunk.Bytes
		}
		transport, err := deliver.NewTransport(ch, cfg.Title, client)
		if err != nil {
			return nil, err
		}
		channels = append(channels, Channel{Name: ch.Name, Chunker: chunker, Transport: transport})
	}
	return channels, nil
}
