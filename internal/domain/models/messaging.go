// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// NATS subjects for decoded Meet webhook events. The HTTP ingress publishes
// to these; the queue-subscribed handlers consume them.
const (
	// MeetWebhookRecordingSubject carries recording fileGenerated events.
	MeetWebhookRecordingSubject = "lfx.webhook.meet.recording"

	// MeetWebhookTranscriptSubject carries transcript fileGenerated events.
	MeetWebhookTranscriptSubject = "lfx.webhook.meet.transcript"

	// MeetWebhookSmartNoteSubject carries smart note fileGenerated events.
	MeetWebhookSmartNoteSubject = "lfx.webhook.meet.smart_note"

	// MeetWebhookLifecycleSubject carries conference lifecycle events that
	// name no artifact. They still create or touch tracking records so the
	// timeout clock starts as early as possible.
	MeetWebhookLifecycleSubject = "lfx.webhook.meet.lifecycle"
)

// MeetArtifactAPIQueue is the queue group for the service's NATS consumers,
// so that horizontally scaled instances share the subscription load.
const MeetArtifactAPIQueue = "lfx.meet-artifact-api.queue"

// DispatchTrigger identifies which of the three racing call paths initiated
// a dispatch attempt.
type DispatchTrigger string

const (
	// DispatchTriggerArtifactComplete is the happy path: the third artifact
	// arrived and the record became ready.
	DispatchTriggerArtifactComplete DispatchTrigger = "artifact_complete"
	// DispatchTriggerTimeout is a sweeper pick-up of an overdue record.
	DispatchTriggerTimeout DispatchTrigger = "timeout"
	// DispatchTriggerManual is an operator-forced dispatch.
	DispatchTriggerManual DispatchTrigger = "manual"
)

// DispatchPayload is the consolidated notification sent downstream exactly
// once per conference.
type DispatchPayload struct {
	ConferenceID     string   `json:"conference_id"`
	MeetingTitle     string   `json:"meeting_title"`
	StartTime        *string  `json:"start_time"`
	EndTime          *string  `json:"end_time"`
	RecordingURL     *string  `json:"recording_url"`
	TranscriptURL    *string  `json:"transcript_url"`
	SmartNotesURL    *string  `json:"smart_notes_url"`
	AccountEmail     string   `json:"account_email"`
	Partial          bool     `json:"partial,omitempty"`
	MissingArtifacts []string `json:"missing_artifacts,omitempty"`
	ManualTrigger    bool     `json:"manual_trigger,omitempty"`
}
