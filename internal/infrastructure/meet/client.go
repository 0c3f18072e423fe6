// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package meet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
)

const (
	// BaseURL is the base URL for the Google Meet REST API
	BaseURL = "https://meet.googleapis.com/v2"
	// DefaultClientTimeout is the default HTTP client timeout for Meet API requests
	DefaultClientTimeout = 30 * time.Second
	// DefaultMaxRetries bounds retry attempts for transient Meet API failures
	DefaultMaxRetries = 3

	// clientCacheTTL bounds how long an impersonated HTTP client is reused.
	// Token sources refresh themselves, so this only caps cache growth.
	clientCacheTTL = 45 * time.Minute

	// MeetReadonlyScope is the OAuth scope for reading conference records and artifacts
	MeetReadonlyScope = "https://www.googleapis.com/auth/meetings.space.readonly"
)

// Config holds the configuration for the Meet API client. The service account
// uses domain-wide delegation, so every request runs impersonating a concrete
// Workspace user.
type Config struct {
	ServiceAccountEmail string
	PrivateKey          []byte
	PrivateKeyID        string
	TokenURL            string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: override retry attempts
	MaxRetries int
}

// Client represents a Google Meet API client with per-user impersonation
type Client struct {
	config Config
	// clients caches authenticated HTTP clients keyed by impersonated email
	clients *gocache.Cache
}

// NewClient creates a new Meet API client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.TokenURL == "" {
		config.TokenURL = google.JWTTokenURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}

	return &Client{
		config:  config,
		clients: gocache.New(clientCacheTTL, 2*clientCacheTTL),
	}
}

// IsConfigured reports whether service account credentials are present.
func (c *Client) IsConfigured() bool {
	return c.config.ServiceAccountEmail != "" && len(c.config.PrivateKey) > 0
}

// clientFor returns an HTTP client whose token source impersonates the given user.
func (c *Client) clientFor(ctx context.Context, asEmail string) (*http.Client, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("meet API credentials not configured")
	}
	if asEmail == "" {
		return nil, fmt.Errorf("impersonation email is required")
	}

	if cached, ok := c.clients.Get(asEmail); ok {
		return cached.(*http.Client), nil
	}

	jwtConfig := &jwt.Config{
		Email:        c.config.ServiceAccountEmail,
		PrivateKey:   c.config.PrivateKey,
		PrivateKeyID: c.config.PrivateKeyID,
		Scopes:       []string{MeetReadonlyScope},
		TokenURL:     c.config.TokenURL,
		Subject:      asEmail,
	}

	httpClient := &http.Client{
		Timeout: c.config.Timeout,
		Transport: &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: jwtConfig.TokenSource(ctx),
		},
	}

	c.clients.Set(asEmail, httpClient, gocache.DefaultExpiration)
	return httpClient, nil
}

// apiError is a non-retryable Meet API failure
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("meet API error (%s): %s", errResp.Error.Status, errResp.Error.Message)
	}
	return fmt.Sprintf("meet API error (status %d)", e.StatusCode)
}

// IsNotFound reports whether the error is a Meet API 404.
func IsNotFound(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// getJSON performs an authenticated GET against the Meet API and decodes the
// response into out. Transient failures (5xx, 429, network errors) are retried
// with exponential backoff.
func (c *Client) getJSON(ctx context.Context, asEmail, path string, out any) error {
	httpClient, err := c.clientFor(ctx, asEmail)
	if err != nil {
		return err
	}

	url := c.config.BaseURL + path

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			// Network errors are retryable.
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &apiError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, backoff.Permanent(&apiError{StatusCode: resp.StatusCode, Body: string(body)})
		}

		return body, nil
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.config.MaxRetries)),
	)
	if err != nil {
		slog.ErrorContext(ctx, "meet API request failed", logging.ErrKey, err, "path", path)
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		slog.ErrorContext(ctx, "failed to decode meet API response", logging.ErrKey, err, "path", path)
		return fmt.Errorf("failed to decode meet API response: %w", err)
	}

	return nil
}
