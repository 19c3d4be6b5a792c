// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/discover"
	"github.com/pdiddy/paper-digest/internal/query"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List today's candidate papers without ranking or sending",
	Long: `Discover resolves the configured arXiv query and prints the normalized
candidates. Categories ("cs.AI+cs.LG") go through the announcement feed in
rss mode or one search per category in api mode; anything else is sent to
the search API as a literal expression.`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		cfg.Arxiv.Query = q
	}
	if src, _ := cmd.Flags().GetString("source"); src != "" {
		cfg.Arxiv.Source = types.Source(src)
	}
	if cmd.Flags().Changed("max-results") {
		cfg.Arxiv.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	format, _ := cmd.Flags().GetString("format")

	q, err := query.Parse(cfg.Arxiv.Query)
	if err != nil {
		return err
	}
	d, err := discover.New(cfg.Arxiv, cfg.HTTP, &http.Client{Timeout: cfg.HTTP.Timeout}, logger)
	if err != nil {
		return err
	}

	papers, err := d.Discover(context.Background(), q)
	if err != nil {
		return err
	}
	return discover.Format(papers, format, cmd.OutOrStdout())
}

func init() {
	discoverCmd.Flags().String("query", "", "override arxiv.query")
	discoverCmd.Flags().String("source", "", "override arxiv.source: rss or api")
	discoverCmd.Flags().Int("max-results", 0, "override arxiv.max_results (0 = unbounded)")
	discoverCmd.Flags().String("format", discover.FormatTable, "output format: table, json or yaml")

	rootCmd.AddCommand(discoverCmd)
}
