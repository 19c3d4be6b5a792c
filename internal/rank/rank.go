// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders candidate papers by similarity to the reader's
// reference corpus.
//
// A candidate's score is the weighted mean of its cosine similarity to every
// corpus paper. Corpus papers are weighted by recency: the newest addition
// has weight 1/(1+log10(1)), the next 1/(1+log10(2)), and so on, normalized to
// sum to one. Two vectorizers are available: a lexical TF-IDF model that runs
// offline and an embedding model behind an OpenAI-compatible endpoint.
package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultTopK is the number of papers kept when no limit is configured.
const DefaultTopK = 5

// ErrUnknownMethod is returned by New for an unsupported rank method.
var ErrUnknownMethod = errors.New("unknown rank method")

// Reranker scores candidates against a corpus and returns the best TopK in
// descending score order, each carrying its Score.
type Reranker interface {
	Rerank(ctx context.Context, candidates []types.Paper, corpus []types.CorpusPaper) ([]types.Paper, error)
}

// Embedder turns texts into dense vectors. *llm.Embedder satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// New returns the Reranker selected by cfg. The embedder is required only
// for the embedding method.
func New(cfg types.RankConfig, embedder Embedder) (Reranker, error) {
	switch cfg.Method {
	case "", types.RankLexical:
		return &Lexical{TopK: cfg.TopK}, nil
	case types.RankEmbedding:
		if embedder == nil {
			return nil, fmt.Errorf("%w: embedding method needs an embedder", ErrUnknownMethod)
		}
		return &Embedding{Embedder: embedder, TopK: cfg.TopK}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMethod, cfg.Method)
	}
}

// SortCorpus orders corpus papers newest first, the order the decay weights
// assume. Papers without a date sort last.
func SortCorpus(corpus []types.CorpusPaper) []types.CorpusPaper {
	out := slices.Clone(corpus)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out
}

// DecayWeights returns n recency weights summing to one.
func DecayWeights(n int) []float64 {
	w := make([]float64, n)
	var total float64
	for i := range w {
		w[i] = 1 / (1 + math.Log10(float64(i+1)))
		total += w[i]
	}
	for i := range w {
		w[i] /= total
	}
	return w
}

// score computes the decay-weighted similarity of each candidate to the
// corpus, which must already be sorted newest first.
func score(nCandidates, nCorpus int, sim func(c, k int) float64) []float64 {
	weights := DecayWeights(nCorpus)
	scores := make([]float64, nCandidates)
	for c := range scores {
		for k, w := range weights {
			scores[c] += w * sim(c, k)
		}
	}
	return scores
}

// top attaches scores and keeps the topK best, ties broken by input order.
func top(candidates []types.Paper, scores []float64, topK int) []types.Paper {
	if topK <= 0 {
		topK = DefaultTopK
	}
	ranked := make([]types.Paper, len(candidates))
	for i, p := range candidates {
		ranked[i] = p.WithScore(scores[i])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Score > *ranked[j].Score
	})
	return ranked[:min(topK, len(ranked))]
}

// passthrough keeps discovery order when there is nothing to compare with.
func passthrough(candidates []types.Paper, topK int) []types.Paper {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return slices.Clone(candidates[:min(topK, len(candidates))])
}

func paperText(title, abstract string) string {
	if title == "" {
		return abstract
	}
	return title + "\n" + abstract
}
