// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/camwatch/internal/config"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	defaultWebhookRate    = 1
	defaultWebhookBurst   = 5

	// maxErrorBody caps how much of a failed response is kept in the error.
	maxErrorBody = 512
)

// WebhookStatusError is returned when the webhook answers with a non-2xx
// status.
type WebhookStatusError struct {
	StatusCode int
	Body       string
}

func (e *WebhookStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Webhook POSTs alerts as JSON to a URL.
type Webhook struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewWebhook creates a webhook sink from cfg. Zero timeout, rate or burst
// take defaults.
func NewWebhook(cfg config.WebhookConfig) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = defaultWebhookRate
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultWebhookBurst
	}

	return &Webhook{
		url: cfg.URL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Notify implements Notifier. It waits for the rate limiter, so a burst of
// alerts is spread out rather than dropped.
func (w *Webhook) Notify(ctx context.Context, title, body string) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit: %w", err)
	}

	payload, err := json.Marshal(newAlert(title, body))
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "camwatch")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &WebhookStatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
