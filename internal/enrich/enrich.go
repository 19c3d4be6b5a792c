// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich adds model-generated fields to ranked papers: a translated
// abstract, a TLDR and keyword tags. Enrichment is best effort; a failed call
// is logged and leaves its field empty.
package enrich

import (
	"context"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	defaultLanguage    = "Chinese"
	defaultTLDRWords   = 80
	defaultMaxKeywords = 6
)

// Completer produces a model reply for a system and user prompt.
// *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Summary counts the enrichment calls of one run.
type Summary struct {
	Papers    int
	Succeeded int
	Failed    int
}

// Enricher applies the enrichments selected in Config.
type Enricher struct {
	LLM    Completer
	Config types.EnrichConfig
	Logger *zap.Logger
}

// Enabled reports whether any enrichment is selected.
func (e *Enricher) Enabled() bool {
	return e.Config.TranslateAbstract || e.Config.TLDR || e.Config.Keywords
}

// Enrich returns enriched copies of papers in the same order. The input
// slice is not modified.
func (e *Enricher) Enrich(ctx context.Context, papers []types.Paper) ([]types.Paper, Summary) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]types.Paper, len(papers))
	sum := Summary{Papers: len(papers)}
	for i, p := range papers {
		p.Tags = append([]string(nil), p.Tags...)
		if ctx.Err() != nil {
			out[i] = p
			continue
		}

		if e.Config.TranslateAbstract && p.Abstract != "" {
			text, err := e.ask(ctx, translateTmpl, promptData{Abstract: p.Abstract, Language: orDefault(e.Config.TargetLanguage, defaultLanguage)})
			p.AbstractZH = e.record(logger, &sum, p.ID, "translate", text, err)
		}
		if e.Config.TLDR {
			text, err := e.ask(ctx, tldrTmpl, promptData{
				Title:    p.Title,
				Abstract: p.Abstract,
				Language: orDefault(e.Config.TLDRLanguage, defaultLanguage),
				MaxWords: positiveOr(e.Config.TLDRMaxWords, defaultTLDRWords),
			})
			p.TLDR = e.record(logger, &sum, p.ID, "tldr", text, err)
		}
		if e.Config.Keywords {
			limit := positiveOr(e.Config.MaxKeywords, defaultMaxKeywords)
			text, err := e.ask(ctx, keywordsTmpl, promptData{Title: p.Title, Abstract: p.Abstract, Max: limit})
			if tags := ParseKeywords(e.record(logger, &sum, p.ID, "keywords", text, err), limit); len(tags) > 0 {
				p.Tags = tags
			}
		}
		out[i] = p
	}

	logger.Info("enrichment finished",
		zap.Int("papers", sum.Papers),
		zap.Int("calls_ok", sum.Succeeded),
		zap.Int("calls_failed", sum.Failed))
	return out, sum
}

func (e *Enricher) ask(ctx context.Context, tmpl *template.Template, data promptData) (string, error) {
	prompt, err := render(tmpl, data)
	if err != nil {
		return "", err
	}
	return e.LLM.Complete(ctx, systemPrompt, prompt)
}

func (e *Enricher) record(logger *zap.Logger, sum *Summary, id, task, text string, err error) string {
	if err != nil {
		sum.Failed++
		logger.Warn("enrichment failed", zap.String("paper", id), zap.String("task", task), zap.Error(err))
		return ""
	}
	sum.Succeeded++
	return text
}

// ParseKeywords splits a model reply into at most limit distinct keywords.
func ParseKeywords(reply string, limit int) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '，' || r == ';' || r == '、' || r == '\n'
	})

	seen := make(map[string]bool)
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(strings.Trim(strings.TrimSpace(f), `-*#"'.`))
		key := strings.ToLower(f)
		if f == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
		if len(out) == limit {
			break
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func positiveOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
