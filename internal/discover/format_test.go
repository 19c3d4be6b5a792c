// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func formatPapers() []types.Paper {
	return []types.Paper{
		{
			ID:        "2603.01234",
			Title:     strings.Repeat("Long title ", 10),
			Authors:   []string{"Ada Lovelace", "Alan Turing"},
			Published: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			Link:      "https://arxiv.org/abs/2603.01234",
		},
		{ID: "2603.05678", Title: "Short", Authors: []string{"Grace Hopper"}},
	}
}

func TestFormat_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Format(formatPapers(), FormatTable, &buf))

	out := buf.String()
	assert.Contains(t, out, "2603.01234")
	assert.Contains(t, out, "Ada Lovelace et al.")
	assert.Contains(t, out, "2026-03-09")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "2 papers")
}

func TestFormat_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Format(nil, "", &buf))
	assert.Equal(t, "No papers found.\n", buf.String())
}

func TestFormat_Structured(t *testing.T) {
	var js bytes.Buffer
	require.NoError(t, Format(formatPapers(), FormatJSON, &js))
	var fromJSON []types.Paper
	require.NoError(t, json.Unmarshal(js.Bytes(), &fromJSON))
	assert.Equal(t, "2603.05678", fromJSON[1].ID)

	var ym bytes.Buffer
	require.NoError(t, Format(formatPapers(), FormatYAML, &ym))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &fromYAML))
	assert.Equal(t, "Short", fromYAML[1]["title"])
}

func TestFormat_Unknown(t *testing.T) {
	assert.Error(t, Format(nil, "csv", &bytes.Buffer{}))
}
