// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package meet

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
)

// ConferenceRecord represents a Meet API conference record resource
type ConferenceRecord struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Space     string `json:"space"`
}

// Space represents a Meet API space resource
type Space struct {
	Name        string `json:"name"`
	MeetingURI  string `json:"meetingUri"`
	MeetingCode string `json:"meetingCode"`
}

// driveDestination points at an artifact exported to Google Drive
type driveDestination struct {
	File      string `json:"file"`
	ExportURI string `json:"exportUri"`
}

// docsDestination points at an artifact exported to Google Docs
type docsDestination struct {
	Document  string `json:"document"`
	ExportURI string `json:"exportUri"`
}

// artifactResource covers recordings, transcripts and smart notes. Recordings
// export to Drive, the document artifacts export to Docs; only one of the two
// destinations is ever set.
type artifactResource struct {
	Name             string            `json:"name"`
	State            string            `json:"state"`
	DriveDestination *driveDestination `json:"driveDestination,omitempty"`
	DocsDestination  *docsDestination  `json:"docsDestination,omitempty"`
}

// exportURI returns whichever destination link the artifact carries.
func (a *artifactResource) exportURI() string {
	if a.DriveDestination != nil && a.DriveDestination.ExportURI != "" {
		return a.DriveDestination.ExportURI
	}
	if a.DocsDestination != nil && a.DocsDestination.ExportURI != "" {
		return a.DocsDestination.ExportURI
	}
	return ""
}

// GetConferenceRecord retrieves a conference record by its resource name
// ("conferenceRecords/<id>"), impersonating the given user.
func (c *Client) GetConferenceRecord(ctx context.Context, conferenceID, asEmail string) (*ConferenceRecord, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meet_operation", "get_conference_record"))

	var record ConferenceRecord
	if err := c.getJSON(ctx, asEmail, "/"+conferenceID, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

// GetSpace retrieves the space behind a conference record. The space resource
// name comes from the conference record (e.g. "spaces/abc").
func (c *Client) GetSpace(ctx context.Context, spaceName, asEmail string) (*Space, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meet_operation", "get_space"))

	var space Space
	if err := c.getJSON(ctx, asEmail, "/"+spaceName, &space); err != nil {
		return nil, err
	}

	return &space, nil
}

// GetArtifact retrieves an artifact resource (recording, transcript or smart
// note) by its full resource name.
func (c *Client) GetArtifact(ctx context.Context, resourceName, asEmail string) (*artifactResource, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meet_operation", "get_artifact"))

	var artifact artifactResource
	if err := c.getJSON(ctx, asEmail, "/"+resourceName, &artifact); err != nil {
		return nil, err
	}

	return &artifact, nil
}

// parseAPITime parses the RFC 3339 timestamps the Meet API returns.
func parseAPITime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}
