// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/paper-digest/internal/chunk"
	"github.com/pdiddy/paper-digest/internal/deliver"
	"github.com/pdiddy/paper-digest/internal/enrich"
	"github.com/pdiddy/paper-digest/internal/query"
	"github.com/pdiddy/paper-digest/internal/rank"
	"github.com/pdiddy/paper-digest/pkg/types"
)

type fakeDiscoverer struct {
	papers []types.Paper
	err    error
	got    query.Query
}

func (f *fakeDiscoverer) Discover(_ context.Context, q query.Query) ([]types.Paper, error) {
	f.got = q
	return f.papers, f.err
}

type fakeCorpus struct {
	papers []types.CorpusPaper
	limit  int
	err    error
}

func (f *fakeCorpus) List(_ context.Context, limit int) ([]types.CorpusPaper, error) {
	f.limit = limit
	return f.papers, f.err
}

type fakeEnricher struct{ calls int }

func (f *fakeEnricher) Enabled() bool { return true }

func (f *fakeEnricher) Enrich(_ context.Context, papers []types.Paper) ([]types.Paper, enrich.Summary) {
	f.calls++
	out := make([]types.Paper, len(papers))
	for i, p := range papers {
		p.TLDR = "summary of " + p.ID
		out[i] = p
	}
	return out, enrich.Summary{Papers: len(papers), Succeeded: len(papers)}
}

type recordingTransport struct {
	mu     sync.Mutex
	msgs   []string
	failAt map[int]bool
}

func (r *recordingTransport) Send(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := len(r.msgs)
	r.msgs = append(r.msgs, text)
	if r.failAt[i] {
		return fmt.Errorf("%w: errcode=93000", deliver.ErrRejected)
	}
	return nil
}

func mustQuery(t *testing.T, s string) query.Query {
	t.Helper()
	q, err := query.Parse(s)
	require.NoError(t, err)
	return q
}

func channel(t *testing.T, name string, hard int, tr deliver.Transport) Channel {
	t.Helper()
	c, err := chunk.New("Daily arXiv", hard, 0)
	require.NoError(t, err)
	c.Now = func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }
	return Channel{Name: name, Chunker: c, Transport: tr}
}

func paper(id, title, abstract string) types.Paper {
	return types.Paper{ID: id, Title: title, Abstract: abstract, Link: "https://arxiv.org/abs/" + id, URL: "https://arxiv.org/abs/" + id}
}

func TestRun_NoPapersSendsHeaderOnly(t *testing.T) {
	tr := &recordingTransport{}
	disc := &fakeDiscoverer{papers: []types.Paper{}}
	enr := &fakeEnricher{}
	p := &Pipeline{
		Query:      mustQuery(t, "cs.AI+cs.LG"),
		Discoverer: disc,
		Reranker:   &rank.Lexical{TopK: 5},
		Enricher:   enr,
		Channels:   []Channel{channel(t, "wecom", 4096, tr)},
		SendEmpty:  true,
	}

	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, query.KindCategories, disc.got.Kind)
	require.Len(t, tr.msgs, 1)
	assert.Contains(t, tr.msgs[0], "found **0** papers")
	assert.Zero(t, enr.calls)
	assert.Equal(t, 0, sum.Candidates)
	require.Len(t, sum.Channels, 1)
	assert.Equal(t, 1, sum.Channels[0].Report.Sent)
}

func TestRun_NoPapersSkippedWithoutSendEmpty(t *testing.T) {
	tr := &recordingTransport{}
	p := &Pipeline{
		Query:      mustQuery(t, "cs.AI"),
		Discoverer: &fakeDiscoverer{},
		Channels:   []Channel{channel(t, "wecom", 4096, tr)},
	}

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tr.msgs)
	assert.Empty(t, sum.Channels)
}

func TestRun_RanksEnrichesAndDelivers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	wecom := &recordingTransport{}
	feishu := &recordingTransport{}
	corpus := &fakeCorpus{papers: []types.CorpusPaper{
		{Key: "k1", Title: "Diffusion models for protein design", Abstract: "Protein structure generation with diffusion.", AddedAt: time.Now()},
	}}
	p := &Pipeline{
		Query: mustQuery(t, "q-bio.BM"),
		Discoverer: &fakeDiscoverer{papers: []types.Paper{
			paper("2603.00001", "Tax law history", "A survey of taxation."),
			paper("2603.00002", "Protein diffusion", "Diffusion generates protein structures."),
			paper("2603.00003", "Sorting networks", "Comparator networks."),
		}},
		Corpus:    corpus,
		MaxCorpus: 400,
		Reranker:  &rank.Lexical{TopK: 2},
		Enricher:  &fakeEnricher{},
		Channels: []Channel{
			channel(t, "wecom", 4096, wecom),
			channel(t, "feishu", 8000, feishu),
		},
		Logger: zap.New(core),
	}

	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 400, corpus.limit)
	assert.Equal(t, 3, sum.Candidates)
	assert.Equal(t, 2, sum.Selected)
	_, err = uuid.Parse(sum.RunID)
	assert.NoError(t, err)

	for _, tr := range []*recordingTransport{wecom, feishu} {
		require.Len(t, tr.msgs, 1)
		msg := tr.msgs[0]
		assert.Contains(t, msg, "found **2** papers")
		assert.Less(t, strings.Index(msg, "**1. [Protein diffusion]"), strings.Index(msg, "**2. "))
		assert.Contains(t, msg, "**TLDR:** summary of 2603.00002")
	}

	for _, entry := range logs.All() {
		assert.Equal(t, sum.RunID, entry.ContextMap()["run_id"], entry.Message)
	}
	assert.Equal(t, 1, logs.FilterMessage("run finished").Len())
}

func TestRun_DeliveryFailureAttemptsEverything(t *testing.T) {
	bad := &recordingTransport{failAt: map[int]bool{0: true}}
	good := &recordingTransport{}
	p := &Pipeline{
		Query:      mustQuery(t, "cs.AI"),
		Discoverer: &fakeDiscoverer{papers: []types.Paper{paper("2603.00001", "A", "a")}},
		Channels:   []Channel{channel(t, "bad", 4096, bad), channel(t, "good", 4096, good)},
	}

	sum, err := p.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.ErrorIs(t, err, deliver.ErrRejected)
	assert.Len(t, bad.msgs, 1)
	assert.Len(t, good.msgs, 1)
	require.Len(t, sum.Channels, 2)
	assert.Equal(t, 1, sum.Channels[0].Report.Failed)
	assert.True(t, sum.Channels[1].Report.OK())
}

func TestRun_DryRunWritesPreview(t *testing.T) {
	tr := &recordingTransport{}
	var out bytes.Buffer
	p := &Pipeline{
		Query:      mustQuery(t, "cs.AI"),
		Discoverer: &fakeDiscoverer{papers: []types.Paper{paper("2603.00001", "A paper", "a")}},
		Channels:   []Channel{channel(t, "wecom", 4096, tr)},
		DryRun:     true,
		Preview:    &out,
	}

	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, tr.msgs)
	assert.Contains(t, out.String(), "===== wecom: message 1/1")
	assert.Contains(t, out.String(), "**1. [A paper]")
	assert.Equal(t, 1, sum.Channels[0].Messages)
}

func TestRun_UpstreamErrors(t *testing.T) {
	boom := errors.New("feed down")
	p := &Pipeline{Query: mustQuery(t, "cs.AI"), Discoverer: &fakeDiscoverer{err: boom}}
	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)

	p = &Pipeline{
		Query:      mustQuery(t, "cs.AI"),
		Discoverer: &fakeDiscoverer{papers: []types.Paper{paper("1", "A", "a")}},
		Corpus:     &fakeCorpus{err: errors.New("db locked")},
		Reranker:   &rank.Lexical{},
	}
	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading corpus")
}

func TestChannels(t *testing.T) {
	chs, err := Channels(types.DeliveryConfig{Title: "T", Channels: []types.ChannelConfig{
		{Name: "w", Kind: types.ChannelWeCom, WebhookURL: "https://x", HardLimit: 4096},
		{Name: "f", Kind: types.ChannelFeishu, WebhookURL: "https://y", HardLimit: 8000, SoftBudget: 7000},
	}}, nil)
	require.NoError(t, err)

	require.Len(t, chs, 2)
	assert.Equal(t, 4096, chs[0].Chunker.HardLimit)
	assert.Equal(t, chunk.Bytes, chs[0].Chunker.Measure, "wecom counts bytes")
	assert.Equal(t, chunk.CodePoints, chs[1].Chunker.Measure)
	assert.Equal(t, 7000, chs[1].Chunker.SoftBudget)
	assert.IsType(t, &deliver.Feishu{}, chs[1].Transport)

	_, err = Channels(types.DeliveryConfig{Channels: []types.ChannelConfig{
		{Name: "w", Kind: types.ChannelWeCom, WebhookURL: "https://x", HardLimit: 100, SoftBudget: 200},
	}}, nil)
	assert.ErrorIs(t, err, chunk.ErrBudget)
}
