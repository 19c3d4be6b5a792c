// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/pipeline"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Check delivery channels",
}

var webhookTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a short probe message to every configured channel",
	Long: `Test posts one short markdown message to each channel (or only the one
named by --channel) and reports whether the robot accepted it.`,
	RunE: runWebhookTest,
}

func runWebhookTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetString("channel")

	channels, err := pipeline.Channels(cfg.Delivery, &http.Client{Timeout: cfg.HTTP.Timeout})
	if err != nil {
		return err
	}

	ctx := context.Background()
	msg := fmt.Sprintf("**%s**\n\nWebhook check from paper-digest at %s.", cfg.Delivery.Title, time.Now().Format(time.RFC3339))
	sent, failed := 0, 0
	for _, ch := range channels {
		if only != "" && ch.Name != only {
			continue
		}
		if err := ch.Transport.Send(ctx, msg); err != nil {
			failed++
			logger.Error("webhook check failed", zap.String("channel", ch.Name), zap.Error(err))
			continue
		}
		sent++
		logger.Info("webhook check ok", zap.String("channel", ch.Name))
	}

	switch {
	case sent+failed == 0:
		return fmt.Errorf("no matching channel configured")
	case failed > 0:
		return fmt.Errorf("%d of %d channel(s) failed", failed, sent+failed)
	}
	return nil
}

func init() {
	webhookTestCmd.Flags().String("channel", "", "only test the channel with this name")

	webhookCmd.AddCommand(webhookTestCmd)
	rootCmd.AddCommand(webhookCmd)
}
