// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one digest: discover candidates, rank them against
// the reference corpus, enrich the best, then render and deliver them to
// every configured channel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/chunk"
	"github.com/pdiddy/paper-digest/internal/deliver"
	"github.com/pdiddy/paper-digest/internal/discover"
	"github.com/pdiddy/paper-digest/internal/enrich"
	"github.com/pdiddy/paper-digest/internal/query"
	"github.com/pdiddy/paper-digest/internal/rank"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrDeliveryFailed is returned by Run when at least one message was not
// accepted. Every message is still attempted first.
var ErrDeliveryFailed = errors.New("delivery failed")

// CorpusSource lists reference papers newest first. *corpus.Store
// satisfies it.
type CorpusSource interface {
	List(ctx context.Context, limit int) ([]types.CorpusPaper, error)
}

// Enricher adds model-generated fields. *enrich.Enricher satisfies it.
type Enricher interface {
	Enabled() bool
	Enrich(ctx context.Context, papers []types.Paper) ([]types.Paper, enrich.Summary)
}

// Channel is one delivery destination with its own size limits.
type Channel struct {
	Name      string
	Chunker   *chunk.Chunker
	Transport deliver.Transport
}

// Pipeline holds the collaborators of a run.
type Pipeline struct {
	Query      query.Query
	Discoverer discover.Discoverer

	// Corpus and Reranker are optional; without them candidates keep
	// discovery order.
	Corpus    CorpusSource
	MaxCorpus int
	Reranker  rank.Reranker

	// Enricher is optional.
	Enricher Enricher

	Channels     []Channel
	SendEmpty    bool
	MessageDelay time.Duration

	// DryRun renders messages to Preview instead of sending them.
	DryRun  bool
	Preview io.Writer

	Logger *zap.Logger
}

// ChannelReport is the delivery outcome for one channel.
type ChannelReport struct {
	Name     string
	Messages int
	Report   deliver.Report
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Candidates int
	Selected   int
	Channels   []ChannelReport
}

// Run executes the pipeline once.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", sum.RunID))
	start := time.Now()

	logger.Info("run started", zap.Stringer("query", p.Query), zap.Int("channels", len(p.Channels)), zap.Bool("dry_run", p.DryRun))

	candidates, err := p.Discoverer.Discover(ctx, p.Query)
	if err != nil {
		return sum, fmt.Errorf("discovering papers: %w", err)
	}
	sum.Candidates = len(candidates)
	logger.Info("candidates discovered", zap.Int("count", len(candidates)))

	if len(candidates) == 0 && !p.SendEmpty {
		logger.Info("no new papers, nothing to send")
		return sum, nil
	}

	selected, err := p.rank(ctx, candidates, logger)
	if err != nil {
		return sum, err
	}
	if p.Enricher != nil && p.Enricher.Enabled() && len(selected) > 0 {
		selected, _ = p.Enricher.Enrich(ctx, selected)
	}
	sum.Selected = len(selected)

	var deliveryErrs []error
	for _, ch := range p.Channels {
		msgs := ch.Chunker.Chunk(selected)
		chLogger := logger.With(zap.String("channel", ch.Name))

		if p.DryRun {
			p.preview(ch, msgs)
			sum.Channels = append(sum.Channels, ChannelReport{Name: ch.Name, Messages: len(msgs)})
			continue
		}

		report := deliver.Dispatch(ctx, ch.Transport, msgs, p.MessageDelay, chLogger)
		sum.Channels = append(sum.Channels, ChannelReport{Name: ch.Name, Messages: len(msgs), Report: report})
		chLogger.Info("channel delivered", zap.Int("sent", report.Sent), zap.Int("failed", report.Failed))
		if !report.OK() {
			deliveryErrs = append(deliveryErrs, fmt.Errorf("channel %s: %w", ch.Name, report.Err()))
		}
	}

	logger.Info("run finished",
		zap.Int("candidates", sum.Candidates),
		zap.Int("selected", sum.Selected),
		zap.Duration("elapsed", time.Since(start)))

	if len(deliveryErrs) > 0 {
		return sum, fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.Join(deliveryErrs...))
	}
	return sum, nil
}

func (p *Pipeline) rank(ctx context.Context, candidates []types.Paper, logger *zap.Logger) ([]types.Paper, error) {
	if p.Reranker == nil || len(candidates) == 0 {
		return candidates, nil
	}

	var corpus []types.CorpusPaper
	if p.Corpus != nil {
		var err error
		corpus, err = p.Corpus.List(ctx, p.MaxCorpus)
		if err != nil {
			return nil, fmt.Errorf("loading corpus: %w", err)
		}
	}
	if len(corpus) == 0 {
		logger.Warn("reference corpus is empty, keeping discovery order")
	}

	ranked, err := p.Reranker.Rerank(ctx, candidates, corpus)
	if err != nil {
		return nil, fmt.Errorf("ranking papers: %w", err)
	}
	logger.Info("candidates ranked", zap.Int("corpus", len(corpus)), zap.Int("selected", len(ranked)))
	return ranked, nil
}

func (p *Pipeline) preview(ch Channel, msgs []string) {
	w := p.Preview
	if w == nil {
		w = io.Discard
	}
	for i, m := range msgs {
		fmt.Fprintf(w, "===== %s: message %d/%d (%d %s) =====\n%s\n\n", ch.Name, i+1, len(msgs), ch.Chunker.Size(m), ch.Chunker.Measure, m)
	}
}
