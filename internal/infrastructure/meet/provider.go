// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package meet

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
)

// Provider adapts the Meet API client to the domain ArtifactProvider interface.
type Provider struct {
	client *Client
}

// NewProvider creates a Meet artifact provider backed by the given client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Ensure Provider implements the domain interface
var _ domain.ArtifactProvider = (*Provider)(nil)

// GetConferenceDetails fetches the conference record and its space to build
// a human-facing summary of the conference.
func (p *Provider) GetConferenceDetails(ctx context.Context, conferenceID, asEmail string) (*domain.ConferenceDetails, error) {
	record, err := p.client.GetConferenceRecord(ctx, conferenceID, asEmail)
	if err != nil {
		if IsNotFound(err) {
			return nil, domain.NewNotFoundError("conference record not found", err)
		}
		return nil, domain.NewInternalError("failed to fetch conference record", err)
	}

	details := &domain.ConferenceDetails{
		StartTime: parseAPITime(record.StartTime),
		EndTime:   parseAPITime(record.EndTime),
	}

	// The conference record carries no title. The space's meeting code is the
	// closest human-readable identifier; failure here is not fatal.
	if record.Space != "" {
		space, err := p.client.GetSpace(ctx, record.Space, asEmail)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch meet space, continuing without title",
				logging.ErrKey, err, "space", record.Space)
		} else if space.MeetingCode != "" {
			details.Title = space.MeetingCode
		}
	}

	return details, nil
}

// GetArtifactLink fetches an artifact resource and returns its export link.
// An artifact that exists but has no export destination yet yields an empty
// string without an error.
func (p *Provider) GetArtifactLink(ctx context.Context, kind models.ArtifactKind, resourceName, asEmail string) (string, error) {
	if resourceName == "" {
		return "", domain.NewValidationError("artifact resource name is required")
	}

	artifact, err := p.client.GetArtifact(ctx, resourceName, asEmail)
	if err != nil {
		if IsNotFound(err) {
			return "", domain.NewNotFoundError("artifact not found", err)
		}
		return "", domain.NewInternalError("failed to fetch artifact", err)
	}

	link := artifact.exportURI()
	if link == "" {
		slog.DebugContext(ctx, "artifact has no export link yet",
			"artifact_kind", kind, "resource_name", resourceName, "state", artifact.State)
	}

	return link, nil
}
