// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Google Workspace Events CloudEvents attribute keys carried in the Pub/Sub
// sideband attribute map.
const (
	MeetEventTypeAttribute    = "ce-type"
	MeetEventTimeAttribute    = "ce-time"
	MeetEventSubjectAttribute = "ce-subject"
)

// PubSubPushMessage is the envelope Google Pub/Sub delivers on a push
// subscription endpoint.
type PubSubPushMessage struct {
	Message      PubSubMessage `json:"message"`
	Subscription string        `json:"subscription"`
}

// PubSubMessage is the inner Pub/Sub message: a base64-encoded JSON payload
// plus a string attribute map.
type PubSubMessage struct {
	Data        string            `json:"data"`
	Attributes  map[string]string `json:"attributes"`
	MessageID   string            `json:"messageId"`
	PublishTime string            `json:"publishTime"`
}

// MeetEventPayload is the decoded Workspace Events payload for Meet artifact
// events. Exactly one of the artifact fields is populated per event; which
// one is present determines the artifact kind and the resource name.
type MeetEventPayload struct {
	Recording  *MeetArtifactResource `json:"recording,omitempty"`
	Transcript *MeetArtifactResource `json:"transcript,omitempty"`
	SmartNote  *MeetArtifactResource `json:"smartNote,omitempty"`
}

// MeetArtifactResource is an artifact reference inside an event payload.
// Recordings export to Drive, transcripts and smart notes export to Docs.
type MeetArtifactResource struct {
	Name             string                 `json:"name"`
	DriveDestination *MeetExportDestination `json:"driveDestination,omitempty"`
	DocsDestination  *MeetExportDestination `json:"docsDestination,omitempty"`
}

// MeetExportDestination holds the export target of an artifact. ExportURI is
// the permanent link and is preferred over any lazily fetched one.
type MeetExportDestination struct {
	File      string `json:"file,omitempty"`
	Document  string `json:"document,omitempty"`
	ExportURI string `json:"exportUri,omitempty"`
}

// ExportLink returns the permanent export link of the artifact, or empty if
// the event did not include one.
func (r *MeetArtifactResource) ExportLink() string {
	if r == nil {
		return ""
	}
	if r.DriveDestination != nil && r.DriveDestination.ExportURI != "" {
		return r.DriveDestination.ExportURI
	}
	if r.DocsDestination != nil && r.DocsDestination.ExportURI != "" {
		return r.DocsDestination.ExportURI
	}
	return ""
}

// MeetWebhookEventMessage is the decoded Meet webhook event published to NATS
// for asynchronous processing. The payload shape-sniffing happens exactly
// once, in DecodeMeetWebhookEvent; everything downstream switches on
// ArtifactKind.
type MeetWebhookEventMessage struct {
	EventType    string       `json:"event_type"`
	EventTime    time.Time    `json:"event_time"`
	Subject      string       `json:"subject,omitempty"`
	ConferenceID string       `json:"conference_id"`
	ArtifactKind ArtifactKind `json:"artifact_kind"`
	ResourceName string       `json:"resource_name,omitempty"`
	ExportURL    string       `json:"export_url,omitempty"`
}

// conferenceRecordPattern extracts the conference record ID from a resource
// name such as "conferenceRecords/abc-123/recordings/rec-1".
var conferenceRecordPattern = regexp.MustCompile(`conferenceRecords/([^/]+)`)

// ConferenceIDFromResourceName normalizes any Meet resource name to its
// "conferenceRecords/<id>" prefix, or returns empty if it has none.
func ConferenceIDFromResourceName(resourceName string) string {
	match := conferenceRecordPattern.FindStringSubmatch(resourceName)
	if match == nil {
		return ""
	}
	return "conferenceRecords/" + match[1]
}

// DecodeMeetWebhookEvent decodes a Pub/Sub message into a tagged Meet event.
//
// The artifact resource name is looked up by field presence: the ce-subject
// attribute is the default, overridden by the name of whichever artifact
// field the payload carries. The conference ID is then pattern-matched out of
// that resource name, since its location varies by event type. An event whose
// resource name has no conference record yields an empty ConferenceID; the
// caller decides whether that is worth more than a warning.
func DecodeMeetWebhookEvent(msg PubSubMessage) (*MeetWebhookEventMessage, error) {
	raw, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		return nil, err
	}

	var payload MeetEventPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	eventType := msg.Attributes[MeetEventTypeAttribute]
	subject := msg.Attributes[MeetEventSubjectAttribute]

	var eventTime time.Time
	if raw := msg.Attributes[MeetEventTimeAttribute]; raw != "" {
		// Best-effort: a missing or malformed ce-time falls back to zero and
		// the ingestion path substitutes the current time.
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			eventTime = parsed
		}
	}

	event := &MeetWebhookEventMessage{
		EventType:    eventType,
		EventTime:    eventTime,
		Subject:      subject,
		ArtifactKind: artifactKindForEvent(eventType),
	}

	resourceName := subject
	if payload.Recording != nil && payload.Recording.Name != "" {
		resourceName = payload.Recording.Name
	}
	if payload.Transcript != nil && payload.Transcript.Name != "" {
		resourceName = payload.Transcript.Name
	}
	if payload.SmartNote != nil && payload.SmartNote.Name != "" {
		resourceName = payload.SmartNote.Name
	}

	event.ConferenceID = ConferenceIDFromResourceName(resourceName)

	switch event.ArtifactKind {
	case ArtifactKindRecording:
		if payload.Recording != nil {
			event.ResourceName = payload.Recording.Name
			event.ExportURL = payload.Recording.ExportLink()
		}
	case ArtifactKindTranscript:
		if payload.Transcript != nil {
			event.ResourceName = payload.Transcript.Name
			event.ExportURL = payload.Transcript.ExportLink()
		}
	case ArtifactKindSmartNote:
		if payload.SmartNote != nil {
			event.ResourceName = payload.SmartNote.Name
			event.ExportURL = payload.SmartNote.ExportLink()
		}
	}

	return event, nil
}

// artifactKindForEvent maps a Workspace Events type string to an artifact
// kind. Event types look like
// "google.workspace.meet.recording.v2.fileGenerated"; anything that names no
// artifact (conference lifecycle events) is kind none.
func artifactKindForEvent(eventType string) ArtifactKind {
	switch {
	case strings.Contains(eventType, "recording"):
		return ArtifactKindRecording
	case strings.Contains(eventType, "transcript"):
		return ArtifactKindTranscript
	case strings.Contains(eventType, "smartNote"):
		return ArtifactKindSmartNote
	}
	return ArtifactKindNone
}
