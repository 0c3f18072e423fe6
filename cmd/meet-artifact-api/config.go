// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/pkg/constants"
)

// flags are the command line flags for the meet artifact service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the meet artifact service.
type environment struct {
	Port    string
	NatsURL string

	ArtifactTimeout     time.Duration
	SweepInterval       time.Duration
	SweepConcurrency    int
	MaxDispatchAttempts int
	MonitoredUsers      []string

	WebhookDestinationURL string
	WebhookSharedToken    string
	PushVerificationToken string
	ManualTriggerToken    string

	Google googleConfig
}

// googleConfig holds the Workspace service account configuration used for
// both the Meet API and Directory API clients.
type googleConfig struct {
	ServiceAccountEmail string
	PrivateKey          string
	PrivateKeyID        string
	AdminEmail          string
	ImpersonationEmail  string
}

// parseFlags parses command line flags for the meet artifact service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the meet artifact service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://lfx-platform-nats.lfx.svc.cluster.local:4222"
	}

	webhookDestinationURL := os.Getenv("WEBHOOK_DESTINATION_URL")
	if webhookDestinationURL == "" {
		slog.Error("WEBHOOK_DESTINATION_URL environment variable is required but not set")
		os.Exit(1)
	}
	if _, err := url.Parse(webhookDestinationURL); err != nil {
		slog.With(logging.ErrKey, err, "url", webhookDestinationURL).Error("invalid WEBHOOK_DESTINATION_URL provided")
		os.Exit(1)
	}

	return environment{
		Port:                port,
		NatsURL:             natsURL,
		ArtifactTimeout:     parseDurationEnv("ARTIFACT_TIMEOUT", constants.DefaultArtifactTimeout),
		SweepInterval:       parseDurationEnv("SWEEP_INTERVAL", constants.DefaultSweepInterval),
		SweepConcurrency:    parseIntEnv("SWEEP_CONCURRENCY", constants.DefaultSweepConcurrency),
		MaxDispatchAttempts: parseIntEnv("MAX_DISPATCH_ATTEMPTS", constants.DefaultMaxDispatchAttempts),
		MonitoredUsers:      parseListEnv("MONITORED_USERS"),

		WebhookDestinationURL: webhookDestinationURL,
		WebhookSharedToken:    os.Getenv("WEBHOOK_SHARED_TOKEN"),
		PushVerificationToken: os.Getenv("PUSH_VERIFICATION_TOKEN"),
		ManualTriggerToken:    os.Getenv("MANUAL_TRIGGER_TOKEN"),

		Google: googleConfig{
			ServiceAccountEmail: os.Getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
			PrivateKey:          os.Getenv("GOOGLE_PRIVATE_KEY"),
			PrivateKeyID:        os.Getenv("GOOGLE_PRIVATE_KEY_ID"),
			AdminEmail:          os.Getenv("GOOGLE_ADMIN_EMAIL"),
			ImpersonationEmail:  os.Getenv("GOOGLE_IMPERSONATION_EMAIL"),
		},
	}
}

// parseDurationEnv reads a duration environment variable, falling back to the
// default on absence or parse failure.
func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		slog.With(logging.ErrKey, err, "key", key, "value", raw).Error("invalid duration environment variable, using default")
		return fallback
	}
	return parsed
}

// parseIntEnv reads an integer environment variable, falling back to the
// default on absence or parse failure.
func parseIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		slog.With(logging.ErrKey, err, "key", key, "value", raw).Error("invalid integer environment variable, using default")
		return fallback
	}
	return parsed
}

// parseListEnv reads a comma-separated environment variable into a slice,
// trimming whitespace and dropping empty entries.
func parseListEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}
