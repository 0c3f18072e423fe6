// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Artifact aggregation defaults. All of these are overridable via environment
// configuration in cmd/meet-artifact-api.
const (
	// DefaultArtifactTimeout is how long a conference waits for its full
	// artifact set before the sweeper dispatches whatever has arrived.
	DefaultArtifactTimeout = 100 * time.Minute

	// DefaultSweepInterval is how often the timeout sweeper runs.
	DefaultSweepInterval = 5 * time.Minute

	// DefaultSweepConcurrency caps how many overdue conferences a single
	// sweep processes in parallel, to bound outbound API call concurrency.
	DefaultSweepConcurrency = 4

	// DefaultMaxDispatchAttempts is how many failed dispatch attempts the
	// sweeper retries before parking a record for manual intervention.
	DefaultMaxDispatchAttempts = 12
)
