// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
)

// ingestMaxAttempts bounds the read-merge-write retry loop when concurrent
// events for the same conference collide on the revision check.
const ingestMaxAttempts = 5

// IngestOutcome classifies what an event did to its tracking record.
type IngestOutcome string

const (
	// IngestOutcomeCreated means the event created a new tracking record.
	IngestOutcomeCreated IngestOutcome = "created"
	// IngestOutcomeUpdated means the event merged new facts into an existing record.
	IngestOutcomeUpdated IngestOutcome = "updated"
	// IngestOutcomeNoop means the event carried nothing new (replay or
	// terminal record).
	IngestOutcomeNoop IngestOutcome = "noop"
	// IngestOutcomeReadyForDispatch means the merge completed the artifact
	// set and the record should be dispatched now.
	IngestOutcomeReadyForDispatch IngestOutcome = "ready_for_dispatch"
)

// IngestResult is the outcome of ingesting one webhook event.
type IngestResult struct {
	Outcome  IngestOutcome
	Tracking *models.ConferenceTracking
}

// ConferenceAggregatorService folds webhook events into per-conference
// tracking records. All mutations go through revision-checked updates, so
// concurrent events for the same conference merge instead of overwriting
// each other.
type ConferenceAggregatorService struct {
	trackingRepo domain.ConferenceTrackingRepository
	config       ServiceConfig
	nowFunc      func() time.Time
}

// NewConferenceAggregatorService creates a new ConferenceAggregatorService
func NewConferenceAggregatorService(
	trackingRepo domain.ConferenceTrackingRepository,
	config ServiceConfig,
) *ConferenceAggregatorService {
	config.ApplyDefaults()
	return &ConferenceAggregatorService{
		trackingRepo: trackingRepo,
		config:       config,
		nowFunc:      time.Now,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *ConferenceAggregatorService) ServiceReady() bool {
	return s.trackingRepo != nil
}

// Ingest merges one decoded webhook event into the conference's tracking
// record, creating the record on first contact. The merge is idempotent:
// replaying an already-absorbed event is a noop. userEmail is the resolved
// organizer email, empty when resolution failed; the first non-empty value
// sticks.
func (s *ConferenceAggregatorService) Ingest(ctx context.Context, event *models.MeetWebhookEventMessage, userEmail string) (*IngestResult, error) {
	if event == nil || event.ConferenceID == "" {
		return nil, domain.NewValidationError("event conference ID is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("conference_id", event.ConferenceID))

	var lastErr error
	for attempt := 0; attempt < ingestMaxAttempts; attempt++ {
		result, err := s.ingestOnce(ctx, event, userEmail)
		if err == nil {
			return result, nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return nil, err
		}
		// Lost a race with a concurrent event or dispatch claim for the same
		// conference. Re-read and merge again.
		lastErr = err
		slog.DebugContext(ctx, "tracking record changed concurrently, retrying merge",
			"attempt", attempt+1)
	}

	return nil, domain.NewInternalError("failed to merge webhook event after retries", lastErr)
}

func (s *ConferenceAggregatorService) ingestOnce(ctx context.Context, event *models.MeetWebhookEventMessage, userEmail string) (*IngestResult, error) {
	now := s.nowFunc().UTC()

	tracking, revision, err := s.trackingRepo.GetWithRevision(ctx, event.ConferenceID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return s.createFromEvent(ctx, event, userEmail, now)
		}
		return nil, err
	}

	// Terminal records and already-dispatched records never change again;
	// a late event only touches last_event_at for the audit trail.
	if tracking.IsTerminal() || tracking.ProcessedAt != nil {
		slog.DebugContext(ctx, "ignoring event for settled conference",
			"status", tracking.Status, "event_type", event.EventType)
		tracking.LastEventAt = now
		if err := s.trackingRepo.Update(ctx, tracking, revision); err != nil {
			return nil, err
		}
		return &IngestResult{Outcome: IngestOutcomeNoop, Tracking: tracking}, nil
	}

	changed := false

	if event.ArtifactKind != models.ArtifactKindNone {
		if tracking.ApplyArtifact(event.ArtifactKind, event.ResourceName, event.ExportURL) {
			changed = true
		}
	}

	if tracking.UserEmail == "" && userEmail != "" {
		tracking.UserEmail = userEmail
		changed = true
	}

	// A failed dispatch attempt heals back to waiting on any artifact event,
	// new fact or replay, so the next trigger retries the send.
	if tracking.Status == models.TrackingStatusError && event.ArtifactKind != models.ArtifactKindNone {
		tracking.Status = models.TrackingStatusWaiting
		changed = true
	}

	if !changed {
		return &IngestResult{Outcome: IngestOutcomeNoop, Tracking: tracking}, nil
	}

	tracking.LastEventAt = now
	if err := s.trackingRepo.Update(ctx, tracking, revision); err != nil {
		return nil, err
	}

	outcome := IngestOutcomeUpdated
	if tracking.AllArtifactsPresent() {
		outcome = IngestOutcomeReadyForDispatch
	}

	slog.InfoContext(ctx, "merged webhook event into tracking record",
		"event_type", event.EventType,
		"artifact_kind", event.ArtifactKind,
		"outcome", outcome,
		"missing_artifacts", tracking.MissingArtifacts(),
	)

	return &IngestResult{Outcome: outcome, Tracking: tracking}, nil
}

func (s *ConferenceAggregatorService) createFromEvent(ctx context.Context, event *models.MeetWebhookEventMessage, userEmail string, now time.Time) (*IngestResult, error) {
	eventTime := event.EventTime
	if eventTime.IsZero() {
		eventTime = now
	}

	tracking := &models.ConferenceTracking{
		ConferenceID: event.ConferenceID,
		UserEmail:    userEmail,
		Status:       models.TrackingStatusWaiting,
		TimeoutAt:    eventTime.Add(s.config.ArtifactTimeout),
		FirstEventAt: now,
		LastEventAt:  now,
	}

	if event.ArtifactKind != models.ArtifactKindNone {
		tracking.ApplyArtifact(event.ArtifactKind, event.ResourceName, event.ExportURL)
	}

	if err := s.trackingRepo.Create(ctx, tracking); err != nil {
		// A conflict means another event created the record first; the
		// caller's retry loop merges into it.
		return nil, err
	}

	outcome := IngestOutcomeCreated
	if tracking.AllArtifactsPresent() {
		outcome = IngestOutcomeReadyForDispatch
	}

	slog.InfoContext(ctx, "created tracking record",
		"event_type", event.EventType,
		"artifact_kind", event.ArtifactKind,
		"timeout_at", tracking.TimeoutAt,
	)

	return &IngestResult{Outcome: outcome, Tracking: tracking}, nil
}

// StatusSnapshot summarizes the tracking store for the status endpoint.
type StatusSnapshot struct {
	Total    int                           `json:"total"`
	ByStatus map[models.TrackingStatus]int `json:"by_status"`
	DueNow   int                           `json:"due_now"`
	Records  []*models.ConferenceTracking  `json:"records,omitempty"`
}

// GetStatusSnapshot returns aggregate counts over all tracking records.
// includeRecords additionally returns the raw records for debugging.
func (s *ConferenceAggregatorService) GetStatusSnapshot(ctx context.Context, includeRecords bool) (*StatusSnapshot, error) {
	all, err := s.trackingRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	snapshot := &StatusSnapshot{
		Total:    len(all),
		ByStatus: make(map[models.TrackingStatus]int),
	}
	for _, tracking := range all {
		snapshot.ByStatus[tracking.Status]++
		if tracking.ProcessedAt == nil && tracking.TimedOut(now) {
			snapshot.DueNow++
		}
	}
	if includeRecords {
		snapshot.Records = all
	}

	return snapshot, nil
}
