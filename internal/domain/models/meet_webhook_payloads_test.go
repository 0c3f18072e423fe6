// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePayload(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestConferenceIDFromResourceName(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		expected string
	}{
		{
			name:     "bare conference record",
			resource: "conferenceRecords/abc-123",
			expected: "conferenceRecords/abc-123",
		},
		{
			name:     "nested recording resource",
			resource: "conferenceRecords/abc-123/recordings/rec-1",
			expected: "conferenceRecords/abc-123",
		},
		{
			name:     "nested transcript resource",
			resource: "conferenceRecords/xyz_789/transcripts/tr-2",
			expected: "conferenceRecords/xyz_789",
		},
		{
			name:     "space resource has no conference",
			resource: "spaces/abc-123",
			expected: "",
		},
		{
			name:     "empty",
			resource: "",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ConferenceIDFromResourceName(tc.resource))
		})
	}
}

func TestDecodeMeetWebhookEventRecording(t *testing.T) {
	msg := PubSubMessage{
		Data: encodePayload(`{"recording":{"name":"conferenceRecords/abc-123/recordings/rec-1","driveDestination":{"file":"files/f1","exportUri":"https://drive.google.com/rec"}}}`),
		Attributes: map[string]string{
			MeetEventTypeAttribute: "google.workspace.meet.recording.v2.fileGenerated",
			MeetEventTimeAttribute: "2026-03-10T12:00:00Z",
		},
	}

	event, err := DecodeMeetWebhookEvent(msg)
	require.NoError(t, err)

	assert.Equal(t, ArtifactKindRecording, event.ArtifactKind)
	assert.Equal(t, "conferenceRecords/abc-123", event.ConferenceID)
	assert.Equal(t, "conferenceRecords/abc-123/recordings/rec-1", event.ResourceName)
	assert.Equal(t, "https://drive.google.com/rec", event.ExportURL)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), event.EventTime)
}

func TestDecodeMeetWebhookEventTranscript(t *testing.T) {
	msg := PubSubMessage{
		Data: encodePayload(`{"transcript":{"name":"conferenceRecords/abc-123/transcripts/tr-1","docsDestination":{"document":"docs/d1","exportUri":"https://docs.google.com/tr"}}}`),
		Attributes: map[string]string{
			MeetEventTypeAttribute: "google.workspace.meet.transcript.v2.fileGenerated",
		},
	}

	event, err := DecodeMeetWebhookEvent(msg)
	require.NoError(t, err)

	assert.Equal(t, ArtifactKindTranscript, event.ArtifactKind)
	assert.Equal(t, "conferenceRecords/abc-123", event.ConferenceID)
	assert.Equal(t, "https://docs.google.com/tr", event.ExportURL)
}

func TestDecodeMeetWebhookEventSmartNote(t *testing.T) {
	msg := PubSubMessage{
		Data: encodePayload(`{"smartNote":{"name":"conferenceRecords/abc-123/smartNotes/note-1","docsDestination":{"exportUri":"https://docs.google.com/notes"}}}`),
		Attributes: map[string]string{
			MeetEventTypeAttribute: "google.workspace.meet.smartNote.v2.fileGenerated",
		},
	}

	event, err := DecodeMeetWebhookEvent(msg)
	require.NoError(t, err)

	assert.Equal(t, ArtifactKindSmartNote, event.ArtifactKind)
	assert.Equal(t, "https://docs.google.com/notes", event.ExportURL)
}

func TestDecodeMeetWebhookEventPayloadNameOverridesSubject(t *testing.T) {
	// The ce-subject attribute points at the conference, but the artifact
	// field's own name is authoritative for the resource.
	msg := PubSubMessage{
		Data: encodePayload(`{"recording":{"name":"conferenceRecords/from-payload/recordings/rec-1"}}`),
		Attributes: map[string]string{
			MeetEventTypeAttribute:    "google.workspace.meet.recording.v2.fileGenerated",
			MeetEventSubjectAttribute: "conferenceRecords/from-subject",
		},
	}

	event, err := DecodeMeetWebhookEvent(msg)
	require.NoError(t, err)

	assert.Equal(t, "conferenceRecords/from-payload", event.ConferenceID)
}

func TestDecodeMeetWebhookEventLifecycleUsesSubject(t *testing.T) {
	msg := PubSubMessage{
		Data: encodePayload(`{}`),
		Attributes: map[string]string{
			MeetEventTypeAttribute:    "google.workspace.meet.conference.v2.ended",
			MeetEventSubjectAttribute: "conferenceRecords/abc-123",
		},
	}

	event, err := DecodeMeetWebhookEvent(msg)
	require.NoError(t, err)

	assert.Equal(t, ArtifactKindNone, event.ArtifactKind)
	assert.Equal(t, "conferenceRecords/abc-123", event.ConferenceID)
	assert.Empty(t, event.ResourceName)
}

func TestDecodeMeetWebhookEventMalformedTimeFallsBackToZero(t *testing.T) {
	msg := PubSubMessage{
		Data: encodePayload(`{}`),
		Attributes: map[string]string{
			MeetEventTypeAttribute: "google.workspace.meet.conference.v2.started",
			MeetEventTimeAttribute: "not a timestamp",
		},
	}

	event, err := DecodeMeetWebhookEvent(msg)
	require.NoError(t, err)
	assert.True(t, event.EventTime.IsZero())
}

func TestDecodeMeetWebhookEventInvalidBase64(t *testing.T) {
	_, err := DecodeMeetWebhookEvent(PubSubMessage{Data: "%%% not base64 %%%"})
	assert.Error(t, err)
}

func TestDecodeMeetWebhookEventInvalidJSON(t *testing.T) {
	_, err := DecodeMeetWebhookEvent(PubSubMessage{Data: encodePayload("not json")})
	assert.Error(t, err)
}

func TestExportLinkPrefersDrive(t *testing.T) {
	resource := &MeetArtifactResource{
		DriveDestination: &MeetExportDestination{ExportURI: "https://drive.google.com/x"},
		DocsDestination:  &MeetExportDestination{ExportURI: "https://docs.google.com/x"},
	}
	assert.Equal(t, "https://drive.google.com/x", resource.ExportLink())

	var nilResource *MeetArtifactResource
	assert.Empty(t, nilResource.ExportLink())
}

func TestArtifactKindForEvent(t *testing.T) {
	tests := []struct {
		eventType string
		expected  ArtifactKind
	}{
		{"google.workspace.meet.recording.v2.fileGenerated", ArtifactKindRecording},
		{"google.workspace.meet.transcript.v2.fileGenerated", ArtifactKindTranscript},
		{"google.workspace.meet.smartNote.v2.fileGenerated", ArtifactKindSmartNote},
		{"google.workspace.meet.conference.v2.started", ArtifactKindNone},
		{"", ArtifactKindNone},
	}

	for _, tc := range tests {
		t.Run(tc.eventType, func(t *testing.T) {
			assert.Equal(t, tc.expected, artifactKindForEvent(tc.eventType))
		})
	}
}
