// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// TrackingStatus is the lifecycle state of a conference tracking record.
//
// Transitions only move forward (waiting -> processing -> terminal), with one
// documented exception: a record in error state returns to waiting when a new
// artifact event arrives, so failed dispatches self-heal on the next trigger.
type TrackingStatus string

const (
	// TrackingStatusWaiting means the record is accumulating artifact events.
	TrackingStatusWaiting TrackingStatus = "waiting"
	// TrackingStatusProcessing means a dispatch claim is in flight.
	TrackingStatusProcessing TrackingStatus = "processing"
	// TrackingStatusComplete means all three artifacts were delivered downstream.
	TrackingStatusComplete TrackingStatus = "complete"
	// TrackingStatusPartialComplete means a timeout or manual dispatch delivered
	// a subset of the artifacts downstream.
	TrackingStatusPartialComplete TrackingStatus = "partial_complete"
	// TrackingStatusIgnored means the organizer is not monitored; terminal.
	TrackingStatusIgnored TrackingStatus = "ignored"
	// TrackingStatusError means the last dispatch attempt failed; retryable.
	TrackingStatusError TrackingStatus = "error"
)

// ArtifactKind identifies which conference artifact an event describes.
type ArtifactKind string

const (
	ArtifactKindRecording  ArtifactKind = "recording"
	ArtifactKindTranscript ArtifactKind = "transcript"
	ArtifactKindSmartNote  ArtifactKind = "smart_note"
	// ArtifactKindNone marks a pure lifecycle event that carries no artifact.
	ArtifactKindNone ArtifactKind = "none"
)

// ConferenceTracking is the aggregation state for one conference. There is
// exactly one record per conference ID; every webhook event, sweep tick and
// manual trigger for that conference mutates this record through the store's
// revision-checked updates.
type ConferenceTracking struct {
	ConferenceID string         `json:"conference_id"`
	UserEmail    string         `json:"user_email,omitempty"`
	Status       TrackingStatus `json:"status"`

	HasRecording  bool `json:"has_recording"`
	HasTranscript bool `json:"has_transcript"`
	HasSmartNote  bool `json:"has_smart_note"`

	// Resource names used to fetch artifact metadata lazily at dispatch time.
	RecordingName  string `json:"recording_name,omitempty"`
	TranscriptName string `json:"transcript_name,omitempty"`
	SmartNoteName  string `json:"smart_note_name,omitempty"`

	// Permanent export links. Populated from the event payload when the
	// provider includes them, which saves an API round trip at dispatch time.
	RecordingURL  string `json:"recording_url,omitempty"`
	TranscriptURL string `json:"transcript_url,omitempty"`
	SmartNoteURL  string `json:"smart_note_url,omitempty"`

	// TimeoutAt is fixed when the record is created: first event time plus
	// the configured artifact timeout. It is data evaluated by the sweeper,
	// not a live timer, so it survives restarts and horizontal scaling.
	TimeoutAt    time.Time `json:"timeout_at"`
	FirstEventAt time.Time `json:"first_event_at"`
	LastEventAt  time.Time `json:"last_event_at"`

	// ProcessedAt is set if and only if a downstream dispatch succeeded. It
	// is the durable never-retry marker the sweeper filters on.
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	// DispatchAttempts counts failed dispatch attempts, used by the sweeper
	// to stop retrying records that will never succeed.
	DispatchAttempts int `json:"dispatch_attempts,omitempty"`
}

// IsTerminal reports whether the record has finished its lifecycle. Terminal
// records ignore further artifact events apart from a last-event audit touch.
func (t *ConferenceTracking) IsTerminal() bool {
	switch t.Status {
	case TrackingStatusComplete, TrackingStatusPartialComplete, TrackingStatusIgnored:
		return true
	}
	return false
}

// AllArtifactsPresent reports whether all three artifacts have been observed.
func (t *ConferenceTracking) AllArtifactsPresent() bool {
	return t.HasRecording && t.HasTranscript && t.HasSmartNote
}

// AnyArtifactPresent reports whether at least one artifact has been observed.
func (t *ConferenceTracking) AnyArtifactPresent() bool {
	return t.HasRecording || t.HasTranscript || t.HasSmartNote
}

// MissingArtifacts returns the artifact labels that have not been observed,
// in the order recording, transcript, smart note.
func (t *ConferenceTracking) MissingArtifacts() []string {
	missing := []string{}
	if !t.HasRecording {
		missing = append(missing, string(ArtifactKindRecording))
	}
	if !t.HasTranscript {
		missing = append(missing, string(ArtifactKindTranscript))
	}
	if !t.HasSmartNote {
		missing = append(missing, string(ArtifactKindSmartNote))
	}
	return missing
}

// TimedOut reports whether the record is past its deadline and still eligible
// for a timeout dispatch. Records in error status stay eligible so a failed
// send gets retried on the next sweep.
func (t *ConferenceTracking) TimedOut(now time.Time) bool {
	if t.Status != TrackingStatusWaiting && t.Status != TrackingStatusError {
		return false
	}
	return !t.TimeoutAt.After(now)
}

// ApplyArtifact merges one artifact fact into the record and reports whether
// anything changed. The merge is commutative and idempotent: replaying the
// same event leaves the record byte-for-byte identical, and the has_* flags
// are monotonic. A non-empty URL never gets overwritten by an empty one.
func (t *ConferenceTracking) ApplyArtifact(kind ArtifactKind, resourceName, urlHint string) bool {
	changed := false

	apply := func(has *bool, name *string, url *string) {
		if !*has {
			*has = true
			changed = true
		}
		if resourceName != "" && *name != resourceName {
			*name = resourceName
			changed = true
		}
		if urlHint != "" && *url != urlHint {
			*url = urlHint
			changed = true
		}
	}

	switch kind {
	case ArtifactKindRecording:
		apply(&t.HasRecording, &t.RecordingName, &t.RecordingURL)
	case ArtifactKindTranscript:
		apply(&t.HasTranscript, &t.TranscriptName, &t.TranscriptURL)
	case ArtifactKindSmartNote:
		apply(&t.HasSmartNote, &t.SmartNoteName, &t.SmartNoteURL)
	case ArtifactKindNone:
		// Lifecycle events carry no artifact fact.
	}

	return changed
}

// ArtifactName returns the stored resource name for the given kind.
func (t *ConferenceTracking) ArtifactName(kind ArtifactKind) string {
	switch kind {
	case ArtifactKindRecording:
		return t.RecordingName
	case ArtifactKindTranscript:
		return t.TranscriptName
	case ArtifactKindSmartNote:
		return t.SmartNoteName
	}
	return ""
}

// ArtifactURL returns the stored export link for the given kind.
func (t *ConferenceTracking) ArtifactURL(kind ArtifactKind) string {
	switch kind {
	case ArtifactKindRecording:
		return t.RecordingURL
	case ArtifactKindTranscript:
		return t.TranscriptURL
	case ArtifactKindSmartNote:
		return t.SmartNoteURL
	}
	return ""
}

// HasArtifact reports whether the given kind has been observed.
func (t *ConferenceTracking) HasArtifact(kind ArtifactKind) bool {
	switch kind {
	case ArtifactKindRecording:
		return t.HasRecording
	case ArtifactKindTranscript:
		return t.HasTranscript
	case ArtifactKindSmartNote:
		return t.HasSmartNote
	}
	return false
}

// SetArtifactURL stores a lazily fetched export link for the given kind.
func (t *ConferenceTracking) SetArtifactURL(kind ArtifactKind, url string) {
	if url == "" {
		return
	}
	switch kind {
	case ArtifactKindRecording:
		t.RecordingURL = url
	case ArtifactKindTranscript:
		t.TranscriptURL = url
	case ArtifactKindSmartNote:
		t.SmartNoteURL = url
	}
}
