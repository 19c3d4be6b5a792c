// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/corpus"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the reference corpus used for ranking",
	Long: `Corpus manages the local SQLite database of papers you already care about.
Candidates are ranked by their similarity to these papers, with recently
added papers weighing more. Fill it from a Zotero library or from YAML files.`,
}

// --- import subcommand ---

var corpusImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import reference papers from YAML files",
	Long: `Import reads YAML files with a top-level "papers" list (key, title,
abstract, authors, added_at) and stores them. Entries without an abstract
are skipped; entries without a key get one derived from the title.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorpusImport,
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := corpus.Open(cfg.Corpus.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	for _, path := range args {
		papers, err := readCorpusFile(path)
		if err != nil {
			return err
		}
		sum, err := store.Upsert(ctx, corpus.SourceFile, papers)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		logger.Info("imported corpus file", zap.String("path", path), zap.Int("stored", sum.Stored), zap.Int("skipped", sum.Skipped))
	}
	return nil
}

func readCorpusFile(path string) ([]types.CorpusPaper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	papers, err := corpus.ReadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return papers, nil
}

// --- sync subcommand ---

var corpusSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the Zotero papers in the corpus with a fresh fetch",
	Long: `Sync downloads the configured item types from the Zotero web API and
replaces every previously synced Zotero paper. Imported files are kept.
Needs corpus.zotero.library_id and api_key (or the ZOTERO_ID and
ZOTERO_KEY environment variables).`,
	RunE: runCorpusSync,
}

func runCorpusSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := corpus.Open(cfg.Corpus.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	z := &corpus.Zotero{
		Config:    cfg.Corpus.Zotero,
		Client:    &http.Client{Timeout: cfg.HTTP.Timeout},
		UserAgent: cfg.HTTP.UserAgent,
		Logger:    logger,
	}
	sum, err := corpus.Sync(context.Background(), store, z)
	if err != nil {
		return err
	}
	logger.Info("zotero sync finished", zap.Int("stored", sum.Stored), zap.Int("skipped", sum.Skipped))
	return nil
}

// --- list subcommand ---

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the newest corpus papers",
	RunE:  runCorpusList,
}

func runCorpusList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := corpus.Open(cfg.Corpus.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	papers, err := store.List(ctx, limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, p := range papers {
		fmt.Fprintf(w, "%s  %-12s  %s\n", p.AddedAt.Format(types.DateLayout), p.Key, p.Title)
	}
	fmt.Fprintf(w, "\n%d of %d papers\n", len(papers), total)
	return nil
}

func init() {
	corpusListCmd.Flags().Int("limit", 20, "number of papers to show (0 = all)")

	corpusCmd.AddCommand(corpusImportCmd)
	corpusCmd.AddCommand(corpusSyncCmd)
	corpusCmd.AddCommand(corpusListCmd)
	rootCmd.AddCommand(corpusCmd)
}
