// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover, rank and deliver today's digest",
	Long: `Run executes the whole pipeline once: discover candidates from arXiv,
rank them against the reference corpus, enrich the selection with the LLM
when enabled, and send the digest to every configured channel.

Every message is attempted even when some fail; the command exits non-zero
if any message was not accepted. With --dry-run the messages are printed
to stdout instead of being sent.`,
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if topK, _ := cmd.Flags().GetInt("top-k"); topK > 0 {
		cfg.Rank.TopK = topK
	}

	p, closeStore, err := pipeline.Build(cfg, pipeline.BuildOptions{
		DryRun:  dryRun,
		Preview: cmd.OutOrStdout(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing corpus", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := p.Run(ctx)
	if err != nil {
		logger.Error("run failed", zap.String("run_id", sum.RunID), zap.Error(err))
		return err
	}
	return nil
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "print messages instead of sending them")
	runCmd.Flags().Int("top-k", 0, "override rank.top_k for this run")

	rootCmd.AddCommand(runCmd)
}
