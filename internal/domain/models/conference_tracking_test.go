// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyArtifactIsIdempotent(t *testing.T) {
	tracking := &ConferenceTracking{ConferenceID: "conferenceRecords/abc-123"}

	changed := tracking.ApplyArtifact(ArtifactKindRecording, "conferenceRecords/abc-123/recordings/rec-1", "https://drive.google.com/rec")
	assert.True(t, changed)
	assert.True(t, tracking.HasRecording)
	assert.Equal(t, "conferenceRecords/abc-123/recordings/rec-1", tracking.RecordingName)
	assert.Equal(t, "https://drive.google.com/rec", tracking.RecordingURL)

	// Replaying the identical event changes nothing.
	changed = tracking.ApplyArtifact(ArtifactKindRecording, "conferenceRecords/abc-123/recordings/rec-1", "https://drive.google.com/rec")
	assert.False(t, changed)
}

func TestApplyArtifactIsCommutative(t *testing.T) {
	apply := func(tracking *ConferenceTracking, kinds []ArtifactKind) {
		for _, kind := range kinds {
			tracking.ApplyArtifact(kind, "res/"+string(kind), "url/"+string(kind))
		}
	}

	forward := &ConferenceTracking{}
	apply(forward, []ArtifactKind{ArtifactKindRecording, ArtifactKindTranscript, ArtifactKindSmartNote})

	reverse := &ConferenceTracking{}
	apply(reverse, []ArtifactKind{ArtifactKindSmartNote, ArtifactKindTranscript, ArtifactKindRecording})

	assert.Equal(t, forward, reverse)
	assert.True(t, forward.AllArtifactsPresent())
}

func TestApplyArtifactNeverClearsURL(t *testing.T) {
	tracking := &ConferenceTracking{}
	tracking.ApplyArtifact(ArtifactKindTranscript, "res/t", "https://docs.google.com/t")

	// A later event without a link hint must not erase the stored one.
	changed := tracking.ApplyArtifact(ArtifactKindTranscript, "res/t", "")
	assert.False(t, changed)
	assert.Equal(t, "https://docs.google.com/t", tracking.TranscriptURL)
}

func TestApplyArtifactLifecycleIsNoop(t *testing.T) {
	tracking := &ConferenceTracking{}
	changed := tracking.ApplyArtifact(ArtifactKindNone, "", "")
	assert.False(t, changed)
	assert.False(t, tracking.AnyArtifactPresent())
}

func TestMissingArtifactsOrder(t *testing.T) {
	tests := []struct {
		name     string
		tracking ConferenceTracking
		expected []string
	}{
		{
			name:     "nothing observed",
			tracking: ConferenceTracking{},
			expected: []string{"recording", "transcript", "smart_note"},
		},
		{
			name:     "transcript only",
			tracking: ConferenceTracking{HasTranscript: true},
			expected: []string{"recording", "smart_note"},
		},
		{
			name:     "all observed",
			tracking: ConferenceTracking{HasRecording: true, HasTranscript: true, HasSmartNote: true},
			expected: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.tracking.MissingArtifacts())
		})
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status   TrackingStatus
		terminal bool
	}{
		{TrackingStatusWaiting, false},
		{TrackingStatusProcessing, false},
		{TrackingStatusError, false},
		{TrackingStatusComplete, true},
		{TrackingStatusPartialComplete, true},
		{TrackingStatusIgnored, true},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			tracking := &ConferenceTracking{Status: tc.status}
			assert.Equal(t, tc.terminal, tracking.IsTerminal())
		})
	}
}

func TestTimedOut(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		tracking ConferenceTracking
		expected bool
	}{
		{
			name:     "waiting past deadline",
			tracking: ConferenceTracking{Status: TrackingStatusWaiting, TimeoutAt: now.Add(-time.Minute)},
			expected: true,
		},
		{
			name:     "waiting at deadline",
			tracking: ConferenceTracking{Status: TrackingStatusWaiting, TimeoutAt: now},
			expected: true,
		},
		{
			name:     "waiting before deadline",
			tracking: ConferenceTracking{Status: TrackingStatusWaiting, TimeoutAt: now.Add(time.Minute)},
			expected: false,
		},
		{
			name:     "error past deadline is retryable",
			tracking: ConferenceTracking{Status: TrackingStatusError, TimeoutAt: now.Add(-time.Minute)},
			expected: true,
		},
		{
			name:     "processing is never due",
			tracking: ConferenceTracking{Status: TrackingStatusProcessing, TimeoutAt: now.Add(-time.Minute)},
			expected: false,
		},
		{
			name:     "complete is never due",
			tracking: ConferenceTracking{Status: TrackingStatusComplete, TimeoutAt: now.Add(-time.Minute)},
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.tracking.TimedOut(now))
		})
	}
}

func TestArtifactAccessors(t *testing.T) {
	tracking := &ConferenceTracking{
		HasRecording:  true,
		RecordingName: "res/r",
		RecordingURL:  "url/r",
	}

	assert.Equal(t, "res/r", tracking.ArtifactName(ArtifactKindRecording))
	assert.Equal(t, "url/r", tracking.ArtifactURL(ArtifactKindRecording))
	assert.True(t, tracking.HasArtifact(ArtifactKindRecording))
	assert.Empty(t, tracking.ArtifactName(ArtifactKindTranscript))
	assert.False(t, tracking.HasArtifact(ArtifactKindSmartNote))

	tracking.SetArtifactURL(ArtifactKindSmartNote, "url/s")
	assert.Equal(t, "url/s", tracking.SmartNoteURL)

	// An empty value never overwrites.
	tracking.SetArtifactURL(ArtifactKindSmartNote, "")
	assert.Equal(t, "url/s", tracking.SmartNoteURL)
}
