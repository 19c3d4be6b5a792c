// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Output formats accepted by Format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Format writes papers to w in the named format.
func Format(papers []types.Paper, format string, w io.Writer) error {
	switch format {
	case "", FormatTable:
		WriteTable(papers, w)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(papers)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteTable prints one line per paper.
func WriteTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-60s  %-20s  %s\n", "#", "ID", "Title", "Authors", "Published")
	fmt.Fprintln(w, strings.Repeat("-", 112))
	for i, p := range papers {
		fmt.Fprintf(w, "%-4d  %-12s  %s  %s  %s\n",
			i+1, p.ID, pad(p.Title, 60), pad(authorSummary(p.Authors), 20), p.PublishedDate())
	}
	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

func authorSummary(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	default:
		return authors[0] + " et al."
	}
}

// pad fits s into exactly width runes.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n > width {
		r := []rune(s)
		return string(r[:width-3]) + "..."
	} else if n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
