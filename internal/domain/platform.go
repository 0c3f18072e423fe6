// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// ConferenceDetails is the session metadata fetched from the conferencing
// provider at dispatch time.
type ConferenceDetails struct {
	Title     string
	StartTime *time.Time
	EndTime   *time.Time
}

// ArtifactProvider fetches conference metadata and artifact links from the
// upstream conferencing API. Requests are made on behalf of the given user
// email (domain-wide delegation).
type ArtifactProvider interface {
	// GetConferenceDetails returns session metadata for a conference record.
	GetConferenceDetails(ctx context.Context, conferenceID, asEmail string) (*ConferenceDetails, error)

	// GetArtifactLink resolves an artifact resource name to its permanent
	// export link, or empty if the artifact has no export destination.
	GetArtifactLink(ctx context.Context, kind models.ArtifactKind, resourceName, asEmail string) (string, error)
}

// DirectoryResolver maps an opaque actor reference (such as "users/1234") to
// an email address via a directory lookup.
type DirectoryResolver interface {
	ResolveEmail(ctx context.Context, actorRef string) (string, error)
}

// Notifier delivers the consolidated dispatch payload downstream. Retry is
// the notifier's own concern; callers treat a returned error as a failed
// dispatch attempt.
type Notifier interface {
	Send(ctx context.Context, payload *models.DispatchPayload) error
}

// PushValidator authenticates inbound webhook pushes. Either the
// Authorization header value or the endpoint query token may carry the
// credential, depending on how the push subscription is configured.
type PushValidator interface {
	Validate(authorization, queryToken string) error
}
