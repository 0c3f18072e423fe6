// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/pkg/utils"
)

// FallbackMeetingTitle is used when conference enrichment fails or returns
// no title.
const FallbackMeetingTitle = "Google Meet meeting"

// DispatchOutcome classifies the result of a dispatch attempt.
type DispatchOutcome string

const (
	// DispatchOutcomeDispatched means this attempt delivered the notification.
	DispatchOutcomeDispatched DispatchOutcome = "dispatched"
	// DispatchOutcomeAlreadyClaimed means another trigger won the claim race.
	DispatchOutcomeAlreadyClaimed DispatchOutcome = "already_claimed"
	// DispatchOutcomeAlreadyDispatched means the record was settled before
	// this attempt started.
	DispatchOutcomeAlreadyDispatched DispatchOutcome = "already_dispatched"
	// DispatchOutcomeIgnored means the organizer is not monitored; the
	// record was closed without a notification.
	DispatchOutcomeIgnored DispatchOutcome = "ignored"
	// DispatchOutcomeSendFailed means the downstream delivery failed; the
	// record is marked for retry.
	DispatchOutcomeSendFailed DispatchOutcome = "send_failed"
	// DispatchOutcomeNoArtifacts means the record timed out with nothing to
	// deliver; it is marked for retry in case artifacts still arrive.
	DispatchOutcomeNoArtifacts DispatchOutcome = "no_artifacts"
)

// DispatchResult is the outcome of one dispatch attempt.
type DispatchResult struct {
	Outcome  DispatchOutcome
	Tracking *models.ConferenceTracking
}

// DispatchService delivers the consolidated notification for a conference.
// The webhook, sweep and manual paths all funnel through Dispatch, and the
// store's revision check guarantees at most one of them delivers.
type DispatchService struct {
	trackingRepo domain.ConferenceTrackingRepository
	recordRepo   domain.MeetingRecordRepository
	provider     domain.ArtifactProvider
	notifier     domain.Notifier
	config       ServiceConfig
	nowFunc      func() time.Time
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	trackingRepo domain.ConferenceTrackingRepository,
	recordRepo domain.MeetingRecordRepository,
	provider domain.ArtifactProvider,
	notifier domain.Notifier,
	config ServiceConfig,
) *DispatchService {
	config.ApplyDefaults()
	return &DispatchService{
		trackingRepo: trackingRepo,
		recordRepo:   recordRepo,
		provider:     provider,
		notifier:     notifier,
		config:       config,
		nowFunc:      time.Now,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *DispatchService) ServiceReady() bool {
	return s.trackingRepo != nil && s.notifier != nil
}

// Dispatch attempts to deliver the consolidated notification for a
// conference. It first claims the record by moving it to processing with a
// revision-checked update; losing that race means another trigger owns the
// dispatch and this attempt backs off.
func (s *DispatchService) Dispatch(ctx context.Context, conferenceID string, trigger models.DispatchTrigger) (*DispatchResult, error) {
	if conferenceID == "" {
		return nil, domain.NewValidationError("conference ID is required")
	}

	ctx = logging.AppendCtx(ctx,
		slog.String("conference_id", conferenceID),
		slog.String("dispatch_trigger", string(trigger)),
	)

	tracking, revision, err := s.trackingRepo.GetWithRevision(ctx, conferenceID)
	if err != nil {
		return nil, err
	}

	if tracking.IsTerminal() || tracking.ProcessedAt != nil {
		slog.DebugContext(ctx, "conference already settled, skipping dispatch",
			"status", tracking.Status)
		return &DispatchResult{Outcome: DispatchOutcomeAlreadyDispatched, Tracking: tracking}, nil
	}

	// A record already in processing belongs to an in-flight dispatch whose
	// revision moved past ours; re-claiming it would send twice.
	if tracking.Status == models.TrackingStatusProcessing {
		slog.InfoContext(ctx, "dispatch already in flight, backing off")
		return &DispatchResult{Outcome: DispatchOutcomeAlreadyClaimed, Tracking: tracking}, nil
	}

	// Claim the record. A conflict here means a concurrent trigger claimed
	// it first, and exactly one notification still goes out.
	tracking.Status = models.TrackingStatusProcessing
	if err := s.trackingRepo.Update(ctx, tracking, revision); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			slog.InfoContext(ctx, "lost dispatch claim race, backing off")
			return &DispatchResult{Outcome: DispatchOutcomeAlreadyClaimed, Tracking: tracking}, nil
		}
		return nil, err
	}
	claimRevision := revision + 1

	return s.dispatchClaimed(ctx, tracking, claimRevision, trigger)
}

// dispatchClaimed finishes a dispatch after the claim succeeded. Every exit
// path writes a final state with the claim revision, so a crash mid-dispatch
// leaves the record parked in processing for an operator to inspect.
func (s *DispatchService) dispatchClaimed(ctx context.Context, tracking *models.ConferenceTracking, revision uint64, trigger models.DispatchTrigger) (*DispatchResult, error) {
	now := s.nowFunc().UTC()

	// Allow-list check happens at dispatch time, not ingest time, so records
	// keep accumulating and a late directory fix can still rescue them.
	if !s.config.IsMonitored(tracking.UserEmail) {
		tracking.Status = models.TrackingStatusIgnored
		if err := s.trackingRepo.Update(ctx, tracking, revision); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "organizer not monitored, closing without notification",
			"user_email", tracking.UserEmail)
		return &DispatchResult{Outcome: DispatchOutcomeIgnored, Tracking: tracking}, nil
	}

	if !tracking.AnyArtifactPresent() {
		tracking.Status = models.TrackingStatusError
		tracking.DispatchAttempts++
		if err := s.trackingRepo.Update(ctx, tracking, revision); err != nil {
			return nil, err
		}
		slog.WarnContext(ctx, "conference timed out with no artifacts",
			"dispatch_attempts", tracking.DispatchAttempts)
		return &DispatchResult{Outcome: DispatchOutcomeNoArtifacts, Tracking: tracking}, nil
	}

	details := s.enrich(ctx, tracking)
	s.resolveArtifactLinks(ctx, tracking)

	payload := s.buildPayload(tracking, details, trigger)

	if err := s.notifier.Send(ctx, payload); err != nil {
		slog.ErrorContext(ctx, "failed to deliver notification, marking for retry",
			logging.ErrKey, err, "dispatch_attempts", tracking.DispatchAttempts+1)
		tracking.Status = models.TrackingStatusError
		tracking.DispatchAttempts++
		if updateErr := s.trackingRepo.Update(ctx, tracking, revision); updateErr != nil {
			slog.ErrorContext(ctx, "failed to record dispatch failure",
				logging.ErrKey, updateErr, logging.PriorityCritical())
		}
		return &DispatchResult{Outcome: DispatchOutcomeSendFailed, Tracking: tracking}, err
	}

	// The meeting record is an audit artifact; failing to write it must not
	// fail a dispatch that already delivered.
	s.storeMeetingRecord(ctx, tracking, details, now)

	if tracking.AllArtifactsPresent() {
		tracking.Status = models.TrackingStatusComplete
	} else {
		tracking.Status = models.TrackingStatusPartialComplete
	}
	tracking.ProcessedAt = &now

	if err := s.trackingRepo.Update(ctx, tracking, revision); err != nil {
		// The notification went out but finalizing failed. Surface loudly:
		// the sweeper would otherwise retry a record that already delivered.
		slog.ErrorContext(ctx, "notification delivered but finalize failed",
			logging.ErrKey, err, logging.PriorityCritical())
		return nil, err
	}

	slog.InfoContext(ctx, "dispatched consolidated notification",
		"status", tracking.Status,
		"partial", payload.Partial,
		"missing_artifacts", payload.MissingArtifacts,
	)

	return &DispatchResult{Outcome: DispatchOutcomeDispatched, Tracking: tracking}, nil
}

// TriggerManual forces a dispatch for a conference regardless of readiness
// or retry caps. Triggering a settled conference is an idempotent success.
func (s *DispatchService) TriggerManual(ctx context.Context, conferenceID string) (*DispatchResult, error) {
	return s.Dispatch(ctx, conferenceID, models.DispatchTriggerManual)
}

// enrich fetches conference metadata best-effort. Enrichment failing is
// never a reason to withhold a notification.
func (s *DispatchService) enrich(ctx context.Context, tracking *models.ConferenceTracking) *domain.ConferenceDetails {
	details := &domain.ConferenceDetails{Title: FallbackMeetingTitle}

	if s.provider == nil {
		return details
	}

	asEmail := s.impersonationEmail(tracking)
	if asEmail == "" {
		return details
	}

	fetched, err := s.provider.GetConferenceDetails(ctx, tracking.ConferenceID, asEmail)
	if err != nil {
		slog.WarnContext(ctx, "conference enrichment failed, using fallback title",
			logging.ErrKey, err)
		return details
	}

	if fetched.Title != "" {
		details.Title = fetched.Title
	}
	details.StartTime = fetched.StartTime
	details.EndTime = fetched.EndTime
	return details
}

// resolveArtifactLinks fills in missing export links by fetching each
// artifact resource. Lookups are independent and best-effort: an event's own
// link hint always wins, and a failed fetch just leaves that link empty.
func (s *DispatchService) resolveArtifactLinks(ctx context.Context, tracking *models.ConferenceTracking) {
	if s.provider == nil {
		return
	}

	asEmail := s.impersonationEmail(tracking)
	if asEmail == "" {
		return
	}

	kinds := []models.ArtifactKind{
		models.ArtifactKindRecording,
		models.ArtifactKindTranscript,
		models.ArtifactKindSmartNote,
	}
	for _, kind := range kinds {
		if !tracking.HasArtifact(kind) || tracking.ArtifactURL(kind) != "" {
			continue
		}
		resourceName := tracking.ArtifactName(kind)
		if resourceName == "" {
			continue
		}

		link, err := s.provider.GetArtifactLink(ctx, kind, resourceName, asEmail)
		if err != nil {
			slog.WarnContext(ctx, "failed to resolve artifact link",
				logging.ErrKey, err, "artifact_kind", kind, "resource_name", resourceName)
			continue
		}
		tracking.SetArtifactURL(kind, link)
	}
}

// buildPayload assembles the downstream notification from the tracking
// record and enrichment details.
func (s *DispatchService) buildPayload(tracking *models.ConferenceTracking, details *domain.ConferenceDetails, trigger models.DispatchTrigger) *models.DispatchPayload {
	payload := &models.DispatchPayload{
		ConferenceID:  tracking.ConferenceID,
		MeetingTitle:  details.Title,
		AccountEmail:  tracking.UserEmail,
		ManualTrigger: trigger == models.DispatchTriggerManual,
	}

	if details.StartTime != nil {
		payload.StartTime = utils.StringPtr(details.StartTime.UTC().Format(time.RFC3339))
	}
	if details.EndTime != nil {
		payload.EndTime = utils.StringPtr(details.EndTime.UTC().Format(time.RFC3339))
	}

	if tracking.HasRecording && tracking.RecordingURL != "" {
		payload.RecordingURL = utils.StringPtr(tracking.RecordingURL)
	}
	if tracking.HasTranscript && tracking.TranscriptURL != "" {
		payload.TranscriptURL = utils.StringPtr(tracking.TranscriptURL)
	}
	if tracking.HasSmartNote && tracking.SmartNoteURL != "" {
		payload.SmartNotesURL = utils.StringPtr(tracking.SmartNoteURL)
	}

	if !tracking.AllArtifactsPresent() {
		payload.Partial = true
		payload.MissingArtifacts = tracking.MissingArtifacts()
	}

	return payload
}

// storeMeetingRecord upserts the audit snapshot of a dispatched conference.
func (s *DispatchService) storeMeetingRecord(ctx context.Context, tracking *models.ConferenceTracking, details *domain.ConferenceDetails, now time.Time) {
	if s.recordRepo == nil {
		return
	}

	record := &models.MeetingRecord{
		UID:            uuid.New().String(),
		ConferenceID:   tracking.ConferenceID,
		Title:          details.Title,
		StartTime:      details.StartTime,
		EndTime:        details.EndTime,
		OrganizerEmail: tracking.UserEmail,
		RecordingURL:   tracking.RecordingURL,
		TranscriptURL:  tracking.TranscriptURL,
		SmartNoteURL:   tracking.SmartNoteURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if details.StartTime != nil {
		day := details.StartTime.UTC().Truncate(24 * time.Hour)
		record.MeetingDate = &day
	}

	if existing, err := s.recordRepo.GetByConferenceID(ctx, tracking.ConferenceID); err == nil {
		record.UID = existing.UID
		record.CreatedAt = existing.CreatedAt
	}

	if err := s.recordRepo.Create(ctx, record); err != nil {
		slog.WarnContext(ctx, "failed to store meeting record", logging.ErrKey, err)
	}
}

// impersonationEmail picks which user to impersonate for provider calls.
func (s *DispatchService) impersonationEmail(tracking *models.ConferenceTracking) string {
	return utils.CoalesceString(tracking.UserEmail, s.config.FallbackImpersonationEmail)
}
