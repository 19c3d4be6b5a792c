// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline:
// the canonical Paper produced by discovery and enriched downstream, and the
// configuration tree decoded from paper-digest.yaml.
package types

import "time"

// DateLayout is the calendar-date layout used when a Paper's published date
// is rendered or persisted.
const DateLayout = "2006-01-02"

// Paper is the canonical record for a discovered paper. Discovery fills the
// metadata fields; ranking and LLM enrichment fill the optional fields.
// A Paper is treated as immutable once normalized: enrichment works on copies.
type Paper struct {
	// ID is the provider identifier without its version suffix (e.g. "2401.01234").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Abstract is the abstract collapsed onto a single line.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the announcement date at UTC midnight; the time of day is
	// always zero.
	Published time.Time `json:"published" yaml:"published"`

	// URL and Link carry the same https abstract-page URL.
	URL  string `json:"url" yaml:"url"`
	Link string `json:"link" yaml:"link"`

	// Score is the relevance score assigned by the reranker, nil when unranked.
	Score *float64 `json:"score,omitempty" yaml:"score,omitempty"`

	// AbstractZH is the translated abstract.
	AbstractZH string `json:"abstract_zh,omitempty" yaml:"abstract_zh,omitempty"`

	// TLDR is a model-generated summary.
	TLDR string `json:"tldr,omitempty" yaml:"tldr,omitempty"`

	// Tags lists model-generated keywords in order of importance.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// PublishedDate returns the published date formatted as YYYY-MM-DD, or ""
// when the date is unknown.
func (p Paper) PublishedDate() string {
	if p.Published.IsZero() {
		return ""
	}
	return p.Published.Format(DateLayout)
}

// WithScore returns a copy of p carrying the given relevance score.
func (p Paper) WithScore(score float64) Paper {
	p.Score = &score
	return p
}

// CorpusPaper is a reference paper from the user's library. The reranker
// compares candidates against these.
type CorpusPaper struct {
	// Key is the library item key (Zotero key or an id chosen by the importer).
	Key string `json:"key" yaml:"key"`

	Title    string   `json:"title" yaml:"title"`
	Abstract string   `json:"abstract" yaml:"abstract"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// AddedAt is when the item entered the library. Newer items weigh more
	// during reranking.
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}
