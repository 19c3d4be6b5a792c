// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Lexical ranks with TF-IDF vectors built over the candidates and corpus
// together.
type Lexical struct {
	TopK int
}

// sparse is a TF-IDF vector keyed by term id, with its precomputed norm.
type sparse struct {
	weights map[int]float64
	norm    float64
}

// Rerank implements Reranker.
func (l *Lexical) Rerank(ctx context.Context, candidates []types.Paper, corpus []types.CorpusPaper) ([]types.Paper, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(corpus) == 0 {
		return passthrough(candidates, l.TopK), nil
	}
	corpus = SortCorpus(corpus)

	docs := make([][]string, 0, len(candidates)+len(corpus))
	for _, p := range candidates {
		docs = append(docs, Tokenize(paperText(p.Title, p.Abstract)))
	}
	for _, p := range corpus {
		docs = append(docs, Tokenize(paperText(p.Title, p.Abstract)))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vecs := tfidf(docs)
	cand, ref := vecs[:len(candidates)], vecs[len(candidates):]
	scores := score(len(cand), len(ref), func(c, k int) float64 {
		return cosineSparse(cand[c], ref[k])
	})
	return top(candidates, scores, l.TopK), nil
}

// stopwords are dropped before weighting.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "that": true, "the": true,
	"this": true, "to": true, "we": true, "with": true, "our": true, "which": true,
}

// Tokenize lowercases s and splits it into terms of two or more letters or
// digits, dropping common English stopwords.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// tfidf builds smoothed TF-IDF vectors: tf * (ln((1+N)/(1+df)) + 1).
func tfidf(docs [][]string) []sparse {
	ids := make(map[string]int)
	df := make(map[int]int)
	counts := make([]map[int]int, len(docs))
	for i, doc := range docs {
		counts[i] = make(map[int]int)
		for _, term := range doc {
			id, ok := ids[term]
			if !ok {
				id = len(ids)
				ids[term] = id
			}
			if counts[i][id] == 0 {
				df[id]++
			}
			counts[i][id]++
		}
	}

	n := float64(len(docs))
	vecs := make([]sparse, len(docs))
	for i, c := range counts {
		v := sparse{weights: make(map[int]float64, len(c))}
		for id, tf := range c {
			w := float64(tf) * (math.Log((1+n)/(1+float64(df[id]))) + 1)
			v.weights[id] = w
			v.norm += w * w
		}
		v.norm = math.Sqrt(v.norm)
		vecs[i] = v
	}
	return vecs
}

func cosineSparse(a, b sparse) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	if len(a.weights) > len(b.weights) {
		a, b = b, a
	}
	var dot float64
	for id, w := range a.weights {
		dot += w * b.weights[id]
	}
	return dot / (a.norm * b.norm)
}
