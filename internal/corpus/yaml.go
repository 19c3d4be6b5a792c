// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// SourceFile labels papers imported from YAML files.
const SourceFile = "file"

// File is the layout of a corpus import file:
//
//	papers:
//	  - title: Attention Is All You Need
//	    abstract: The dominant sequence transduction models ...
//	    authors: [Ashish Vaswani, Noam Shazeer]
//	    added_at: 2025-06-01T00:00:00Z
type File struct {
	Papers []types.CorpusPaper `yaml:"papers"`
}

// ReadYAML decodes a corpus file. Papers without a key get one derived from
// their title so that re-importing a file updates rather than duplicates.
func ReadYAML(r io.Reader) ([]types.CorpusPaper, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing corpus file: %w", err)
	}

	for i := range f.Papers {
		p := &f.Papers[i]
		p.Title = strings.TrimSpace(p.Title)
		p.Abstract = strings.Join(strings.Fields(p.Abstract), " ")
		if p.Key == "" {
			p.Key = TitleKey(p.Title)
		}
	}
	return f.Papers, nil
}

// TitleKey derives a stable key from a title.
func TitleKey(title string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.Join(strings.Fields(title), " "))))
	return "file-" + hex.EncodeToString(sum[:6])
}
