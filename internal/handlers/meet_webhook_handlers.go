// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/service"
)

// MeetWebhookHandler consumes decoded Meet webhook events from NATS and
// drives them through ingestion and, when the artifact set completes,
// dispatch.
type MeetWebhookHandler struct {
	aggregatorService *service.ConferenceAggregatorService
	dispatchService   *service.DispatchService
	directoryResolver domain.DirectoryResolver
}

func NewMeetWebhookHandler(
	aggregatorService *service.ConferenceAggregatorService,
	dispatchService *service.DispatchService,
	directoryResolver domain.DirectoryResolver,
) *MeetWebhookHandler {
	return &MeetWebhookHandler{
		aggregatorService: aggregatorService,
		dispatchService:   dispatchService,
		directoryResolver: directoryResolver,
	}
}

func (h *MeetWebhookHandler) HandlerReady() bool {
	return h.aggregatorService.ServiceReady() && h.dispatchService.ServiceReady()
}

// HandleMessage implements [domain.MessageHandler] interface
func (h *MeetWebhookHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) error{
		models.MeetWebhookRecordingSubject:  h.HandleRecordingEvent,
		models.MeetWebhookTranscriptSubject: h.HandleTranscriptEvent,
		models.MeetWebhookSmartNoteSubject:  h.HandleSmartNoteEvent,
		models.MeetWebhookLifecycleSubject:  h.HandleLifecycleEvent,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		h.respondIfNeeded(ctx, msg)
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "error handling message",
			logging.ErrKey, err,
		)
	}
	h.respondIfNeeded(ctx, msg)
}

func (h *MeetWebhookHandler) respondIfNeeded(ctx context.Context, msg domain.Message) {
	if !msg.HasReply() {
		return
	}
	if err := msg.Respond(nil); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
	}
}

// parseMeetWebhookEvent is a helper to parse webhook event messages
func (h *MeetWebhookHandler) parseMeetWebhookEvent(ctx context.Context, msg domain.Message) (*models.MeetWebhookEventMessage, error) {
	var webhookEvent models.MeetWebhookEventMessage
	if err := json.Unmarshal(msg.Data(), &webhookEvent); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal Meet webhook event", logging.ErrKey, err)
		return nil, err
	}
	return &webhookEvent, nil
}

// HandleRecordingEvent handles recording fileGenerated events
func (h *MeetWebhookHandler) HandleRecordingEvent(ctx context.Context, msg domain.Message) error {
	return h.handleArtifactEvent(ctx, msg)
}

// HandleTranscriptEvent handles transcript fileGenerated events
func (h *MeetWebhookHandler) HandleTranscriptEvent(ctx context.Context, msg domain.Message) error {
	return h.handleArtifactEvent(ctx, msg)
}

// HandleSmartNoteEvent handles smart note fileGenerated events
func (h *MeetWebhookHandler) HandleSmartNoteEvent(ctx context.Context, msg domain.Message) error {
	return h.handleArtifactEvent(ctx, msg)
}

// HandleLifecycleEvent handles conference lifecycle events. They carry no
// artifact but still seed the tracking record and its timeout clock, and may
// contribute the organizer email.
func (h *MeetWebhookHandler) HandleLifecycleEvent(ctx context.Context, msg domain.Message) error {
	webhookEvent, err := h.parseMeetWebhookEvent(ctx, msg)
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx,
		slog.String("event_type", webhookEvent.EventType),
		slog.String("conference_id", webhookEvent.ConferenceID),
	)

	userEmail := h.resolveUserEmail(ctx, webhookEvent)

	result, err := h.aggregatorService.Ingest(ctx, webhookEvent, userEmail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to ingest lifecycle event", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "processed lifecycle event", "outcome", result.Outcome)
	return nil
}

// handleArtifactEvent processes one artifact fileGenerated event: merge the
// artifact fact into the tracking record and dispatch immediately when the
// merge completes the set.
func (h *MeetWebhookHandler) handleArtifactEvent(ctx context.Context, msg domain.Message) error {
	webhookEvent, err := h.parseMeetWebhookEvent(ctx, msg)
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx,
		slog.String("event_type", webhookEvent.EventType),
		slog.String("conference_id", webhookEvent.ConferenceID),
		slog.String("artifact_kind", string(webhookEvent.ArtifactKind)),
	)

	userEmail := h.resolveUserEmail(ctx, webhookEvent)

	result, err := h.aggregatorService.Ingest(ctx, webhookEvent, userEmail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to ingest artifact event", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "processed artifact event", "outcome", result.Outcome)

	if result.Outcome != service.IngestOutcomeReadyForDispatch {
		return nil
	}

	dispatchResult, err := h.dispatchService.Dispatch(ctx, webhookEvent.ConferenceID, models.DispatchTriggerArtifactComplete)
	if err != nil {
		// The record stays in error status and the sweeper retries it, so a
		// failed send here must not nack the message back onto the queue.
		slog.ErrorContext(ctx, "failed to dispatch completed conference",
			logging.ErrKey, err,
			logging.PriorityCritical(),
		)
		return nil
	}

	slog.InfoContext(ctx, "dispatch triggered by completed artifact set",
		"dispatch_outcome", dispatchResult.Outcome,
	)
	return nil
}

// resolveUserEmail maps the event's actor reference to an email address.
// Resolution is best-effort: the record can be created without an email and
// pick one up from a later event, and dispatch falls back to the configured
// impersonation account.
func (h *MeetWebhookHandler) resolveUserEmail(ctx context.Context, event *models.MeetWebhookEventMessage) string {
	if h.directoryResolver == nil || event.Subject == "" {
		return ""
	}
	// Conference resource subjects name the meeting, not a person.
	if models.ConferenceIDFromResourceName(event.Subject) != "" {
		return ""
	}

	email, err := h.directoryResolver.ResolveEmail(ctx, event.Subject)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve actor email, continuing without it",
			logging.ErrKey, err,
			"actor_ref", event.Subject,
		)
		return ""
	}
	return email
}
