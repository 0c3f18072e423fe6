// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/pkg/constants"
)

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// ArtifactTimeout is how long a conference waits for all artifacts
	// before a partial dispatch.
	ArtifactTimeout time.Duration
	// SweepConcurrency caps how many overdue records are dispatched in
	// parallel during one sweep.
	SweepConcurrency int
	// MaxDispatchAttempts caps sweeper retries per record. Manual triggers
	// bypass the cap.
	MaxDispatchAttempts int
	// MonitoredUsers is the organizer allow-list. Empty means every
	// organizer is monitored.
	MonitoredUsers []string
	// FallbackImpersonationEmail is used for provider calls when a tracking
	// record carries no organizer email.
	FallbackImpersonationEmail string
}

// ApplyDefaults fills in zero values with the service defaults.
func (c *ServiceConfig) ApplyDefaults() {
	if c.ArtifactTimeout <= 0 {
		c.ArtifactTimeout = constants.DefaultArtifactTimeout
	}
	if c.SweepConcurrency <= 0 {
		c.SweepConcurrency = constants.DefaultSweepConcurrency
	}
	if c.MaxDispatchAttempts <= 0 {
		c.MaxDispatchAttempts = constants.DefaultMaxDispatchAttempts
	}
}

// IsMonitored reports whether the organizer email is on the allow-list.
// Comparison is case-insensitive. An empty email is never monitored when an
// allow-list is configured.
func (c *ServiceConfig) IsMonitored(email string) bool {
	if len(c.MonitoredUsers) == 0 {
		return true
	}
	if email == "" {
		return false
	}
	for _, monitored := range c.MonitoredUsers {
		if strings.EqualFold(monitored, email) {
			return true
		}
	}
	return false
}
