// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
)

const (
	// DefaultClientTimeout is the default HTTP client timeout for webhook deliveries
	DefaultClientTimeout = 30 * time.Second
	// DefaultMaxTries bounds in-process retry attempts per delivery. Failed
	// deliveries beyond this are picked up again by the timeout sweeper.
	DefaultMaxTries = 3
)

// Config holds the configuration for the HTTP notifier
type Config struct {
	DestinationURL string
	SharedToken    string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: override retry attempts
	MaxTries int
}

// HTTPNotifier delivers consolidated artifact notifications to the configured
// downstream webhook.
type HTTPNotifier struct {
	config     Config
	httpClient *http.Client
}

// Ensure HTTPNotifier implements the domain interface
var _ domain.Notifier = (*HTTPNotifier)(nil)

// NewHTTPNotifier creates a new HTTP webhook notifier
func NewHTTPNotifier(config Config) *HTTPNotifier {
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxTries == 0 {
		config.MaxTries = DefaultMaxTries
	}

	return &HTTPNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// IsConfigured reports whether a destination URL is set.
func (n *HTTPNotifier) IsConfigured() bool {
	return n.config.DestinationURL != ""
}

// Send posts the payload to the destination webhook. Transient failures (5xx,
// 429, network errors) are retried with exponential backoff; any remaining
// failure is returned so the caller can mark the record for a later retry.
func (n *HTTPNotifier) Send(ctx context.Context, payload *models.DispatchPayload) error {
	if !n.IsConfigured() {
		return domain.NewUnavailableError("webhook destination is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.NewInternalError("failed to marshal dispatch payload", err)
	}

	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.DestinationURL, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if n.config.SharedToken != "" {
			req.Header.Set("Authorization", "Bearer "+n.config.SharedToken)
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return struct{}{}, fmt.Errorf("webhook destination returned status %d", resp.StatusCode)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			respBody, _ := io.ReadAll(resp.Body)
			slog.ErrorContext(ctx, "webhook destination rejected payload",
				"status", resp.StatusCode, "body", string(respBody))
			return struct{}{}, backoff.Permanent(fmt.Errorf("webhook destination returned status %d", resp.StatusCode))
		}

		return struct{}{}, nil
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(n.config.MaxTries)),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver webhook notification",
			logging.ErrKey, err, "conference_id", payload.ConferenceID)
		return domain.NewInternalError("failed to deliver webhook notification", err)
	}

	slog.InfoContext(ctx, "delivered webhook notification",
		"conference_id", payload.ConferenceID,
		"partial", payload.Partial,
	)
	return nil
}
