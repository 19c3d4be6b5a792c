// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deliver posts rendered digest messages to chat webhooks.
//
// A Transport sends one message and reports whether the webhook accepted
// it. Dispatch sends a channel's messages in order, spacing them by the
// configured delay, and keeps going after a failed message so that one
// rejection does not cost the reader the rest of the digest.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-digest/pkg/types"
)

var (
	// ErrRejected is returned when the webhook answers with a non-2xx status
	// or a non-zero error code.
	ErrRejected = errors.New("webhook rejected message")

	// ErrMalformedAck is returned when the webhook reply cannot be decoded.
	ErrMalformedAck = errors.New("malformed webhook acknowledgement")

	// ErrUnknownKind is returned by NewTransport for an unsupported channel.
	ErrUnknownKind = errors.New("unknown channel kind")
)

// Transport sends one message to a webhook.
type Transport interface {
	Send(ctx context.Context, text string) error
}

// NewTransport builds the transport for a configured channel. Title is used
// as the card header by transports that have one.
func NewTransport(ch types.ChannelConfig, title string, client *http.Client) (Transport, error) {
	if ch.WebhookURL == "" {
		return nil, fmt.Errorf("channel %q: webhook_url is empty", ch.Name)
	}
	switch ch.Kind {
	case types.ChannelWeCom:
		return &WeCom{URL: ch.WebhookURL, Client: client}, nil
	case types.ChannelFeishu:
		return &Feishu{URL: ch.WebhookURL, Title: title, Template: ch.HeaderTemplate, Client: client}, nil
	default:
		return nil, fmt.Errorf("%w %q for channel %q", ErrUnknownKind, ch.Kind, ch.Name)
	}
}

// Report summarizes one Dispatch call.
type Report struct {
	Sent   int
	Failed int
	Errors []error
}

// OK reports whether every message was accepted.
func (r Report) OK() bool {
	return r.Failed == 0
}

// Err joins the collected errors, or returns nil.
func (r Report) Err() error {
	return errors.Join(r.Errors...)
}

// Dispatch sends msgs in order through t, waiting at least delay between
// consecutive sends. A failed send is logged and counted, and the remaining
// messages are still attempted. When ctx ends the unsent messages count as
// failed.
func Dispatch(ctx context.Context, t Transport, msgs []string, delay time.Duration, logger *zap.Logger) Report {
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var report Report
	for i, msg := range msgs {
		fields := []zap.Field{zap.Int("part", i+1), zap.Int("parts", len(msgs)), zap.Int("chars", utf8.RuneCountInString(msg)), zap.Int("bytes", len(msg))}

		if err := limiter.Wait(ctx); err != nil {
			remaining := len(msgs) - i
			report.Failed += remaining
			report.Errors = append(report.Errors, fmt.Errorf("%d message(s) not sent: %w", remaining, err))
			logger.Warn("delivery interrupted", append(fields, zap.Error(err))...)
			break
		}

		if err := t.Send(ctx, msg); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Errorf("message %d/%d: %w", i+1, len(msgs), err))
			logger.Warn("message failed", append(fields, zap.Error(err))...)
			continue
		}
		report.Sent++
		logger.Info("message sent", fields...)
	}
	return report
}
