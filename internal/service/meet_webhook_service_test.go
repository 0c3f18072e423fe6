// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

func pushEnvelope(payload string, attributes map[string]string) models.PubSubPushMessage {
	return models.PubSubPushMessage{
		Message: models.PubSubMessage{
			Data:       base64.StdEncoding.EncodeToString([]byte(payload)),
			Attributes: attributes,
			MessageID:  "msg-1",
		},
		Subscription: "projects/p/subscriptions/meet-events",
	}
}

func TestProcessPushEvent_PublishesRecordingEvent(t *testing.T) {
	sender := &mocks.MockWebhookEventSender{}
	validator := &mocks.MockPushValidator{}
	svc := NewMeetWebhookService(sender, validator)

	validator.On("Validate", "Bearer token", "").Return(nil).Once()
	sender.On("PublishMeetWebhookEvent", mock.Anything, models.MeetWebhookRecordingSubject,
		mock.MatchedBy(func(event models.MeetWebhookEventMessage) bool {
			return event.ConferenceID == "conferenceRecords/conf-1" &&
				event.ArtifactKind == models.ArtifactKindRecording &&
				event.ResourceName == "conferenceRecords/conf-1/recordings/rec-1" &&
				event.ExportURL == "https://drive.google.com/file/rec-1"
		})).Return(nil).Once()

	payload := `{"recording":{"name":"conferenceRecords/conf-1/recordings/rec-1","driveDestination":{"file":"file-1","exportUri":"https://drive.google.com/file/rec-1"}}}`
	req := PushRequest{
		Authorization: "Bearer token",
		Envelope: pushEnvelope(payload, map[string]string{
			models.MeetEventTypeAttribute:    "google.workspace.meet.recording.v2.fileGenerated",
			models.MeetEventTimeAttribute:    "2026-03-10T12:00:00Z",
			models.MeetEventSubjectAttribute: "conferenceRecords/conf-1",
		}),
	}

	event, err := svc.ProcessPushEvent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactKindRecording, event.ArtifactKind)
	sender.AssertExpectations(t)
}

func TestProcessPushEvent_InvalidToken(t *testing.T) {
	sender := &mocks.MockWebhookEventSender{}
	validator := &mocks.MockPushValidator{}
	svc := NewMeetWebhookService(sender, validator)

	validator.On("Validate", "Bearer wrong", "").
		Return(domain.NewValidationError("push delivery token does not match expected token")).Once()

	req := PushRequest{
		Authorization: "Bearer wrong",
		Envelope:      pushEnvelope(`{}`, nil),
	}

	_, err := svc.ProcessPushEvent(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	sender.AssertNotCalled(t, "PublishMeetWebhookEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPushEvent_EmptyData(t *testing.T) {
	sender := &mocks.MockWebhookEventSender{}
	validator := &mocks.MockPushValidator{}
	svc := NewMeetWebhookService(sender, validator)

	validator.On("Validate", mock.Anything, mock.Anything).Return(nil).Once()

	req := PushRequest{Envelope: models.PubSubPushMessage{}}

	_, err := svc.ProcessPushEvent(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestProcessPushEvent_MalformedPayload(t *testing.T) {
	sender := &mocks.MockWebhookEventSender{}
	validator := &mocks.MockPushValidator{}
	svc := NewMeetWebhookService(sender, validator)

	validator.On("Validate", mock.Anything, mock.Anything).Return(nil).Once()

	req := PushRequest{
		Envelope: models.PubSubPushMessage{
			Message: models.PubSubMessage{Data: "not-base64!!!"},
		},
	}

	_, err := svc.ProcessPushEvent(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	sender.AssertNotCalled(t, "PublishMeetWebhookEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPushEvent_NoConferenceRecordIsDropped(t *testing.T) {
	sender := &mocks.MockWebhookEventSender{}
	validator := &mocks.MockPushValidator{}
	svc := NewMeetWebhookService(sender, validator)

	validator.On("Validate", mock.Anything, mock.Anything).Return(nil).Once()

	req := PushRequest{
		Envelope: pushEnvelope(`{}`, map[string]string{
			models.MeetEventTypeAttribute:    "google.workspace.meet.space.v2.activated",
			models.MeetEventSubjectAttribute: "spaces/abc",
		}),
	}

	event, err := svc.ProcessPushEvent(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, event.ConferenceID)
	sender.AssertNotCalled(t, "PublishMeetWebhookEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMeetWebhookSubject(t *testing.T) {
	tests := []struct {
		kind    models.ArtifactKind
		subject string
	}{
		{models.ArtifactKindRecording, models.MeetWebhookRecordingSubject},
		{models.ArtifactKindTranscript, models.MeetWebhookTranscriptSubject},
		{models.ArtifactKindSmartNote, models.MeetWebhookSmartNoteSubject},
		{models.ArtifactKindNone, models.MeetWebhookLifecycleSubject},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.subject, getMeetWebhookSubject(tt.kind))
		})
	}
}
