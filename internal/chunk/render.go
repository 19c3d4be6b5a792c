// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	titleCap       = 150
	maxAuthors     = 5
	headAuthors    = 4
	maxKeywords    = 6
	keywordsBudget = 80
	ellipsis       = "..."
)

// bodyLadder lists the body lengths tried, longest first, when fitting a
// paper into the soft budget.
var bodyLadder = []int{600, 400, 250, 150, 100}

// renderFitted renders paper idx with the longest body from bodyLadder that
// keeps the block within the soft budget next to a header of headerLen.
// When even the shortest rendering is too long, it is cut with the
// truncation marker.
func (c *Chunker) renderFitted(idx int, p types.Paper, headerLen int) string {
	budget := c.SoftBudget - headerLen

	var block string
	for _, limit := range bodyLadder {
		block = renderPaper(idx, p, limit)
		if c.Size(block) <= budget {
			return block
		}
	}
	return c.cut(block, budget)
}

// renderPaper renders one paper as markdown with its body capped at
// bodyLimit code points.
func renderPaper(idx int, p types.Paper, bodyLimit int) string {
	link := p.Link
	if link == "" {
		link = p.URL
	}
	title := capText(strings.TrimSpace(p.Title), titleCap)
	if title == "" {
		title = "Untitled"
	}

	var lines []string
	if link != "" {
		lines = append(lines, fmt.Sprintf("**%d. [%s](%s)**", idx, title, link))
	} else {
		lines = append(lines, fmt.Sprintf("**%d. %s**", idx, title))
	}

	scoreLine := scoreText(p.Score)
	if short := shortLink(link); short != "" {
		scoreLine += fmt.Sprintf(" | [%s](%s)", short, link)
	}
	lines = append(lines, scoreLine)

	if authors := authorLine(p.Authors); authors != "" {
		lines = append(lines, "**Authors:** "+authors)
	}
	if keywords := keywordLine(p.Tags); keywords != "" {
		lines = append(lines, "**Keywords:** "+keywords)
	}
	if label, body := bodyText(p); body != "" {
		lines = append(lines, label+" "+capText(body, bodyLimit))
	}
	return strings.Join(lines, "\n")
}

// bodyText picks the TLDR, else the translated abstract, else the abstract.
func bodyText(p types.Paper) (label, body string) {
	if tldr := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p.TLDR), "TLDR:")); tldr != "" {
		return "**TLDR:**", tldr
	}
	if zh := strings.TrimSpace(p.AbstractZH); zh != "" {
		return "**Abstract (translated):**", zh
	}
	return "**Abstract:**", strings.TrimSpace(p.Abstract)
}

// Stars converts a relevance score in [0, 1] to a one-to-five star rating.
func Stars(score float64) string {
	level := int(math.RoundToEven(score * 5))
	level = max(1, min(5, level))
	return strings.Repeat("⭐", level)
}

func scoreText(score *float64) string {
	if score == nil {
		return "Relevance: N/A"
	}
	return fmt.Sprintf("%s Relevance: %.2f", Stars(*score), *score)
}

// shortLink drops the scheme and trailing slash for display.
func shortLink(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	return strings.TrimRight(url, "/")
}

// authorLine lists up to maxAuthors names; longer lists show the first
// headAuthors, an ellipsis, and the last author.
func authorLine(authors []string) string {
	if len(authors) > maxAuthors {
		sample := append(append([]string{}, authors[:headAuthors]...), ellipsis, authors[len(authors)-1])
		return strings.Join(sample, ", ")
	}
	return strings.Join(authors, ", ")
}

// keywordLine joins up to maxKeywords tags, stopping before the line would
// exceed keywordsBudget.
func keywordLine(tags []string) string {
	var kept []string
	length := 0
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(kept) == maxKeywords {
			break
		}
		add := Len(tag)
		if len(kept) > 0 {
			add += 2
		}
		if length+add > keywordsBudget {
			break
		}
		kept = append(kept, tag)
		length += add
	}
	return strings.Join(kept, ", ")
}

// capText limits s to n code points, marking the cut with an ellipsis.
func capText(s string, n int) string {
	if Len(s) <= n {
		return s
	}
	return truncateRunes(s, n) + ellipsis
}
