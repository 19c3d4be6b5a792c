// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"fmt"
	"math"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Embedding ranks with dense vectors from an embedding model. Candidates
// are embedded from title and abstract, corpus papers likewise.
type Embedding struct {
	Embedder Embedder
	TopK     int
}

// Rerank implements Reranker.
func (e *Embedding) Rerank(ctx context.Context, candidates []types.Paper, corpus []types.CorpusPaper) ([]types.Paper, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(corpus) == 0 {
		return passthrough(candidates, e.TopK), nil
	}
	corpus = SortCorpus(corpus)

	texts := make([]string, 0, len(candidates)+len(corpus))
	for _, p := range candidates {
		texts = append(texts, paperText(p.Title, p.Abstract))
	}
	for _, p := range corpus {
		texts = append(texts, paperText(p.Title, p.Abstract))
	}

	vecs, err := e.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding papers: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding papers: expected %d vectors, got %d", len(texts), len(vecs))
	}

	cand, ref := vecs[:len(candidates)], vecs[len(candidates):]
	scores := score(len(cand), len(ref), func(c, k int) float64 {
		return Cosine(cand[c], ref[k])
	})
	return top(candidates, scores, e.TopK), nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or their lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
