// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

var day0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func candidate(id, title, abstract string) types.Paper {
	return types.Paper{ID: id, Title: title, Abstract: abstract}
}

func ids(papers []types.Paper) []string {
	out := make([]string, len(papers))
	for i, p := range papers {
		out[i] = p.ID
	}
	return out
}

func TestDecayWeights(t *testing.T) {
	w := DecayWeights(4)

	require.Len(t, w, 4)
	var sum float64
	for i, v := range w {
		sum += v
		if i > 0 {
			assert.Less(t, v, w[i-1], "weights decrease with age")
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Empty(t, DecayWeights(0))
}

func TestSortCorpus(t *testing.T) {
	corpus := []types.CorpusPaper{
		{Key: "old", AddedAt: day0},
		{Key: "undated"},
		{Key: "new", AddedAt: day0.AddDate(0, 1, 0)},
	}

	sorted := SortCorpus(corpus)

	assert.Equal(t, "new", sorted[0].Key)
	assert.Equal(t, "old", sorted[1].Key)
	assert.Equal(t, "undated", sorted[2].Key)
	assert.Equal(t, "old", corpus[0].Key, "input untouched")
}

func TestLexical_PrefersSimilarPapers(t *testing.T) {
	corpus := []types.CorpusPaper{
		{Key: "k1", Title: "Graph neural networks for molecules", Abstract: "Message passing graph networks predict molecular properties.", AddedAt: day0},
		{Key: "k2", Title: "Scalable graph learning", Abstract: "Graph neural networks on large graphs.", AddedAt: day0.AddDate(0, 0, 1)},
	}
	candidates := []types.Paper{
		candidate("c1", "Protein folding with diffusion", "Diffusion models generate protein structures."),
		candidate("c2", "Graph neural networks for drug discovery", "Message passing networks over molecular graphs."),
		candidate("c3", "Tax policy in the 19th century", "A historical survey."),
	}

	ranked, err := (&Lexical{TopK: 2}).Rerank(context.Background(), candidates, corpus)
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "c2", ranked[0].ID)
	require.NotNil(t, ranked[0].Score)
	require.NotNil(t, ranked[1].Score)
	assert.Greater(t, *ranked[0].Score, *ranked[1].Score)
	assert.LessOrEqual(t, *ranked[0].Score, 1.0)
	assert.Nil(t, candidates[1].Score, "candidates are not modified")
}

func TestLexical_EmptyCorpusKeepsOrder(t *testing.T) {
	candidates := []types.Paper{candidate("a", "A", ""), candidate("b", "B", ""), candidate("c", "C", "")}

	ranked, err := (&Lexical{TopK: 2}).Rerank(context.Background(), candidates, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids(ranked))
	assert.Nil(t, ranked[0].Score)
}

func TestLexical_NoCandidates(t *testing.T) {
	ranked, err := (&Lexical{}).Rerank(context.Background(), nil, []types.CorpusPaper{{Key: "k"}})
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"graph", "networks", "gnns", "2024"}, Tokenize("The Graph-Networks (GNNs) of 2024, a"))
	assert.Equal(t, []string{"图神经网络"}, Tokenize("图神经网络"))
}

type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func TestEmbedding_RecentCorpusWeighsMore(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"A\n": {1, 0},
		"B\n": {0, 1},
		"X\n": {1, 0},
		"Y\n": {0, 1},
	}}
	corpus := []types.CorpusPaper{
		{Key: "old", Title: "Y", AddedAt: day0},
		{Key: "new", Title: "X", AddedAt: day0.AddDate(0, 0, 7)},
	}
	candidates := []types.Paper{candidate("b", "B", ""), candidate("a", "A", "")}

	ranked, err := (&Embedding{Embedder: emb, TopK: 5}).Rerank(context.Background(), candidates, corpus)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids(ranked))
	w := DecayWeights(2)
	assert.InDelta(t, w[0], *ranked[0].Score, 1e-9)
	assert.InDelta(t, w[1], *ranked[1].Score, 1e-9)
}

func TestEmbedding_Error(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("boom")}

	_, err := (&Embedding{Embedder: emb}).Rerank(context.Background(),
		[]types.Paper{candidate("a", "A", "")}, []types.CorpusPaper{{Key: "k", Title: "K"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Zero(t, Cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Zero(t, Cosine([]float64{1}, []float64{1, 1}))
}

func TestNew(t *testing.T) {
	r, err := New(types.RankConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Lexical{}, r)

	r, err = New(types.RankConfig{Method: types.RankEmbedding, TopK: 3}, &fakeEmbedder{})
	require.NoError(t, err)
	assert.Equal(t, 3, r.(*Embedding).TopK)

	_, err = New(types.RankConfig{Method: types.RankEmbedding}, nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = New(types.RankConfig{Method: "bm25"}, nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
