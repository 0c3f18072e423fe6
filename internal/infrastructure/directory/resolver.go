// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
)

const (
	// BaseURL is the base URL for the Admin SDK Directory API
	BaseURL = "https://admin.googleapis.com/admin/directory/v1"
	// DefaultClientTimeout is the default HTTP client timeout for directory lookups
	DefaultClientTimeout = 15 * time.Second

	// DirectoryReadonlyScope is the OAuth scope for reading directory users
	DirectoryReadonlyScope = "https://www.googleapis.com/auth/admin.directory.user.readonly"

	// resolutionCacheTTL bounds how long a resolved email is reused. Directory
	// ids are stable, so a long TTL is safe.
	resolutionCacheTTL = 12 * time.Hour
)

// Config holds the configuration for the directory resolver. Lookups run
// impersonating a Workspace admin via domain-wide delegation.
type Config struct {
	ServiceAccountEmail string
	PrivateKey          []byte
	PrivateKeyID        string
	AdminEmail          string
	TokenURL            string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Resolver resolves Workspace actor references ("users/<id>") to primary emails.
type Resolver struct {
	config     Config
	httpClient *http.Client
	cache      *gocache.Cache
}

// Ensure Resolver implements the domain interface
var _ domain.DirectoryResolver = (*Resolver)(nil)

// NewResolver creates a new directory resolver
func NewResolver(config Config) *Resolver {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.TokenURL == "" {
		config.TokenURL = google.JWTTokenURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}

	r := &Resolver{
		config: config,
		cache:  gocache.New(resolutionCacheTTL, 2*resolutionCacheTTL),
	}

	if config.ServiceAccountEmail != "" && len(config.PrivateKey) > 0 && config.AdminEmail != "" {
		jwtConfig := &jwt.Config{
			Email:        config.ServiceAccountEmail,
			PrivateKey:   config.PrivateKey,
			PrivateKeyID: config.PrivateKeyID,
			Scopes:       []string{DirectoryReadonlyScope},
			TokenURL:     config.TokenURL,
			Subject:      config.AdminEmail,
		}
		r.httpClient = &http.Client{
			Timeout: config.Timeout,
			Transport: &oauth2.Transport{
				Base:   http.DefaultTransport,
				Source: jwtConfig.TokenSource(context.Background()),
			},
		}
	}

	return r
}

// IsConfigured reports whether directory lookups can be performed.
func (r *Resolver) IsConfigured() bool {
	return r.httpClient != nil
}

// ResolveEmail resolves an actor reference to a primary email address.
// References that already look like emails pass through unchanged.
func (r *Resolver) ResolveEmail(ctx context.Context, actorRef string) (string, error) {
	if actorRef == "" {
		return "", domain.NewValidationError("actor reference is required")
	}

	if strings.Contains(actorRef, "@") {
		return actorRef, nil
	}

	userID := strings.TrimPrefix(actorRef, "users/")

	if cached, ok := r.cache.Get(userID); ok {
		return cached.(string), nil
	}

	if !r.IsConfigured() {
		return "", domain.NewUnavailableError("directory resolver is not configured")
	}

	email, err := r.lookupUser(ctx, userID)
	if err != nil {
		return "", err
	}

	r.cache.Set(userID, email, gocache.DefaultExpiration)
	return email, nil
}

func (r *Resolver) lookupUser(ctx context.Context, userID string) (string, error) {
	url := fmt.Sprintf("%s/users/%s?fields=primaryEmail", r.config.BaseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.NewInternalError("failed to create directory request", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "directory lookup failed", logging.ErrKey, err, "user_id", userID)
		return "", domain.NewInternalError("directory lookup failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.NewNotFoundError(fmt.Sprintf("directory user '%s' not found", userID))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.ErrorContext(ctx, "directory API returned error",
			"status", resp.StatusCode, "body", string(body), "user_id", userID)
		return "", domain.NewInternalError(fmt.Sprintf("directory API returned status %d", resp.StatusCode))
	}

	var user struct {
		PrimaryEmail string `json:"primaryEmail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", domain.NewInternalError("failed to decode directory response", err)
	}
	if user.PrimaryEmail == "" {
		return "", domain.NewNotFoundError(fmt.Sprintf("directory user '%s' has no primary email", userID))
	}

	return user.PrimaryEmail, nil
}
