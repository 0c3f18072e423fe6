// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// mockNatsConn implements INatsConn for testing
type mockNatsConn struct {
	connected    bool
	publishError error
	published    []publishedMessage
}

type publishedMessage struct {
	subject string
	data    []byte
}

func (m *mockNatsConn) IsConnected() bool {
	return m.connected
}

func (m *mockNatsConn) Publish(subj string, data []byte) error {
	if m.publishError != nil {
		return m.publishError
	}
	m.published = append(m.published, publishedMessage{subject: subj, data: data})
	return nil
}

func TestPublishMeetWebhookEvent(t *testing.T) {
	tests := []struct {
		name         string
		subject      string
		message      models.MeetWebhookEventMessage
		publishError error
		wantErr      bool
	}{
		{
			name:    "publishes recording event",
			subject: models.MeetWebhookRecordingSubject,
			message: models.MeetWebhookEventMessage{
				EventType:    "google.workspace.meet.recording.v2.fileGenerated",
				ConferenceID: "conf-123",
				ArtifactKind: models.ArtifactKindRecording,
				ResourceName: "conferenceRecords/conf-123/recordings/rec-1",
			},
		},
		{
			name:    "publishes transcript event",
			subject: models.MeetWebhookTranscriptSubject,
			message: models.MeetWebhookEventMessage{
				EventType:    "google.workspace.meet.transcript.v2.fileGenerated",
				ConferenceID: "conf-456",
				ArtifactKind: models.ArtifactKindTranscript,
			},
		},
		{
			name:    "returns publish error",
			subject: models.MeetWebhookSmartNoteSubject,
			message: models.MeetWebhookEventMessage{
				ConferenceID: "conf-789",
			},
			publishError: errors.New("nats: connection closed"),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockNatsConn{connected: true, publishError: tt.publishError}
			builder := NewMessageBuilder(conn)

			err := builder.PublishMeetWebhookEvent(context.Background(), tt.subject, tt.message)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, conn.published, 1)
			assert.Equal(t, tt.subject, conn.published[0].subject)

			var got models.MeetWebhookEventMessage
			require.NoError(t, json.Unmarshal(conn.published[0].data, &got))
			assert.Equal(t, tt.message.ConferenceID, got.ConferenceID)
			assert.Equal(t, tt.message.ArtifactKind, got.ArtifactKind)
		})
	}
}
