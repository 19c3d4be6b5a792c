// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query parses the configured arXiv query into either a category
// list or a literal search expression.
package query

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyQuery is returned by Parse when the query is blank.
var ErrEmptyQuery = errors.New("arxiv query is empty")

// categoryRe matches a single arXiv category token such as "cs.AI" or
// "astro-ph.CO".
var categoryRe = regexp.MustCompile(`^[a-zA-Z-]+\.[a-zA-Z0-9-]+$`)

// tokenSep splits category lists written as "cs.AI+cs.LG", "cs.AI, cs.LG"
// or "cs.AI cs.LG".
var tokenSep = regexp.MustCompile(`[+,\s]+`)

// Kind tags the two query shapes.
type Kind int

const (
	KindCategories Kind = iota + 1
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindCategories:
		return "categories"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Query is a parsed query. Exactly one of Categories or Expression is set,
// according to Kind.
type Query struct {
	Kind       Kind
	Categories []string
	Expression string
}

// Parse classifies s. A string without ':' whose tokens are all category
// shaped becomes a category list (order kept, repeats dropped). Anything
// else is a literal search expression with '+' decoded to spaces, so that
// URL-encoded queries copied into the config still work.
func Parse(s string) (Query, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Query{}, ErrEmptyQuery
	}

	if cats, ok := categories(s); ok {
		return Query{Kind: KindCategories, Categories: cats}, nil
	}
	return Query{Kind: KindLiteral, Expression: strings.ReplaceAll(s, "+", " ")}, nil
}

func categories(s string) ([]string, bool) {
	if strings.Contains(s, ":") {
		return nil, false
	}
	var out []string
	seen := make(map[string]bool)
	for _, tok := range tokenSep.Split(s, -1) {
		if tok == "" {
			continue
		}
		if !categoryRe.MatchString(tok) {
			return nil, false
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out, len(out) > 0
}

// FeedPath renders the query in the announcement feed's path syntax
// ("cs.AI+cs.LG"). Literal expressions are re-encoded with '+' for spaces;
// the feed rejects most of them, which surfaces as an invalid-query error.
func (q Query) FeedPath() string {
	if q.Kind == KindCategories {
		return strings.Join(q.Categories, "+")
	}
	return strings.Join(strings.Fields(q.Expression), "+")
}

// SearchExpression renders the query as an arXiv API search_query value.
func (q Query) SearchExpression() string {
	if q.Kind == KindCategories {
		parts := make([]string, len(q.Categories))
		for i, c := range q.Categories {
			parts[i] = CategoryExpression(c)
		}
		return strings.Join(parts, " OR ")
	}
	return q.Expression
}

// CategoryExpression returns the API expression restricting results to one
// category.
func CategoryExpression(category string) string {
	return "cat:" + category
}

func (q Query) String() string {
	if q.Kind == KindCategories {
		return strings.Join(q.Categories, "+")
	}
	return q.Expression
}
