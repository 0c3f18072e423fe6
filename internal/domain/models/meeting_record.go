// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingRecord is a denormalized snapshot of a dispatched conference, kept
// for downstream querying and search. It is written best-effort after a
// successful dispatch and is not part of the state machine's correctness: a
// failed write never rolls back the notification that was already sent.
type MeetingRecord struct {
	UID            string     `json:"uid"`
	ConferenceID   string     `json:"conference_id"`
	Title          string     `json:"title"`
	MeetingDate    *time.Time `json:"meeting_date,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	OrganizerEmail string     `json:"organizer_email"`

	RecordingURL  string `json:"recording_url,omitempty"`
	TranscriptURL string `json:"transcript_url,omitempty"`
	SmartNoteURL  string `json:"smart_note_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
