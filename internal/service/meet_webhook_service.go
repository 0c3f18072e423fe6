// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
)

// ErrInvalidPushToken marks a push delivery that failed token validation, so
// the ingress layer can answer 401 instead of 400.
var ErrInvalidPushToken = errors.New("invalid push delivery token")

// MeetWebhookService handles Google Meet webhook push processing: it
// authenticates the push, decodes the CloudEvents envelope once and publishes
// the tagged event to NATS for asynchronous processing.
type MeetWebhookService struct {
	messageSender domain.WebhookEventSender
	pushValidator domain.PushValidator
}

// PushRequest represents an inbound Pub/Sub push delivery
type PushRequest struct {
	Authorization string
	QueryToken    string
	Envelope      models.PubSubPushMessage
}

// NewMeetWebhookService creates a new MeetWebhookService
func NewMeetWebhookService(
	messageSender domain.WebhookEventSender,
	pushValidator domain.PushValidator,
) *MeetWebhookService {
	return &MeetWebhookService{
		messageSender: messageSender,
		pushValidator: pushValidator,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *MeetWebhookService) ServiceReady() bool {
	return s.messageSender != nil && s.pushValidator != nil
}

// ProcessPushEvent authenticates, decodes and republishes one push delivery.
// The returned event is what got published, for the ingress layer to log.
func (s *MeetWebhookService) ProcessPushEvent(ctx context.Context, req PushRequest) (*models.MeetWebhookEventMessage, error) {
	if err := s.pushValidator.Validate(req.Authorization, req.QueryToken); err != nil {
		return nil, domain.NewValidationError("invalid push delivery token", ErrInvalidPushToken, err)
	}

	if req.Envelope.Message.Data == "" {
		return nil, domain.NewValidationError("push message has no data")
	}

	event, err := models.DecodeMeetWebhookEvent(req.Envelope.Message)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode Meet webhook event",
			logging.ErrKey, err, "message_id", req.Envelope.Message.MessageID)
		return nil, domain.NewValidationError("invalid push message payload", err)
	}

	if event.ConferenceID == "" {
		// Events whose resource name carries no conference record cannot be
		// aggregated. They are acknowledged but not republished, otherwise
		// Pub/Sub would redeliver them forever.
		slog.WarnContext(ctx, "Meet webhook event has no conference record, dropping",
			"event_type", event.EventType, "subject", event.Subject)
		return event, nil
	}

	subject := getMeetWebhookSubject(event.ArtifactKind)

	if err := s.messageSender.PublishMeetWebhookEvent(ctx, subject, *event); err != nil {
		slog.ErrorContext(ctx, "failed to publish Meet webhook event to NATS",
			logging.ErrKey, err, "event_type", event.EventType, "subject", subject)
		return nil, domain.NewInternalError("failed to process webhook event", err)
	}

	slog.InfoContext(ctx, "Meet webhook event published to NATS",
		"event_type", event.EventType,
		"conference_id", event.ConferenceID,
		"artifact_kind", event.ArtifactKind,
		"subject", subject,
	)

	return event, nil
}

// getMeetWebhookSubject maps an artifact kind to its NATS subject
func getMeetWebhookSubject(kind models.ArtifactKind) string {
	switch kind {
	case models.ArtifactKindRecording:
		return models.MeetWebhookRecordingSubject
	case models.ArtifactKindTranscript:
		return models.MeetWebhookTranscriptSubject
	case models.ArtifactKindSmartNote:
		return models.MeetWebhookSmartNoteSubject
	}
	return models.MeetWebhookLifecycleSubject
}
