// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-digest CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/config"
	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built from --log-level and --log-format before any command runs.
var logger = zap.NewNop()

// rootCmd is the base command for the paper-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-digest",
	Short: "Daily arXiv digests delivered to chat webhooks",
	Long: `paper-digest discovers new arXiv papers for a set of categories or a search
expression, ranks them against a reference corpus of papers you already
read, optionally summarizes them with an LLM, and posts the best ones to
WeCom or Feishu group robots as size-limited markdown messages.

Run "paper-digest run" from a scheduler once a day. The corpus and webhook
subcommands help set things up.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := logging.New(level, format)
		if err != nil {
			return err
		}
		logger = l
		zap.ReplaceGlobals(l)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug("loaded secrets", zap.Strings("names", secrets.Names(s)))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-digest.yaml or ~/.config/paper-digest/paper-digest.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of secret files (llm-api-key, wecom-webhook, ...)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", logging.FormatConsole, "log format: console or json")
}

// loadConfig reads the configuration named by --config.
func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, used, err := config.Load(config.Options{File: file, Secrets: loadedSecrets})
	if err != nil {
		return nil, err
	}
	if used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
