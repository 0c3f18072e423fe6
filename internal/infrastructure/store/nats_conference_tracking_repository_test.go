// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

func newTestTracking(conferenceID string, status models.TrackingStatus, timeoutAt time.Time) *models.ConferenceTracking {
	now := time.Now().UTC()
	return &models.ConferenceTracking{
		ConferenceID: conferenceID,
		Status:       status,
		TimeoutAt:    timeoutAt,
		FirstEventAt: now,
		LastEventAt:  now,
	}
}

func TestNatsConferenceTrackingRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsConferenceTrackingRepository(newMockNatsKeyValue())

	tracking := newTestTracking("conf-123", models.TrackingStatusWaiting, time.Now().Add(time.Hour))
	tracking.HasRecording = true
	tracking.RecordingName = "conferenceRecords/conf-123/recordings/rec-1"

	err := repo.Create(ctx, tracking)
	require.NoError(t, err)

	got, revision, err := repo.GetWithRevision(ctx, "conf-123")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), revision)
	assert.Equal(t, "conf-123", got.ConferenceID)
	assert.Equal(t, models.TrackingStatusWaiting, got.Status)
	assert.True(t, got.HasRecording)
	assert.Equal(t, "conferenceRecords/conf-123/recordings/rec-1", got.RecordingName)
}

func TestNatsConferenceTrackingRepository_CreateConflictOnExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsConferenceTrackingRepository(newMockNatsKeyValue())

	tracking := newTestTracking("conf-123", models.TrackingStatusWaiting, time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, tracking))

	err := repo.Create(ctx, tracking)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsConferenceTrackingRepository_CreateRequiresConferenceID(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsConferenceTrackingRepository(newMockNatsKeyValue())

	err := repo.Create(ctx, &models.ConferenceTracking{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestNatsConferenceTrackingRepository_GetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsConferenceTrackingRepository(newMockNatsKeyValue())

	_, err := repo.Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsConferenceTrackingRepository_UpdateRevisionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsConferenceTrackingRepository(newMockNatsKeyValue())

	tracking := newTestTracking("conf-123", models.TrackingStatusWaiting, time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, tracking))

	got, revision, err := repo.GetWithRevision(ctx, "conf-123")
	require.NoError(t, err)

	// First update with the observed revision succeeds.
	got.Status = models.TrackingStatusProcessing
	require.NoError(t, repo.Update(ctx, got, revision))

	// Second update with the stale revision is a conflict.
	err = repo.Update(ctx, got, revision)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsConferenceTrackingRepository_Exists(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsConferenceTrackingRepository(newMockNatsKeyValue())

	exists, err := repo.Exists(ctx, "conf-123")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, newTestTracking("conf-123", models.TrackingStatusWaiting, time.Now().Add(time.Hour))))

	exists, err = repo.Exists(ctx, "conf-123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNatsConferenceTrackingRepository_ListDue(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsConferenceTrackingRepository(newMockNatsKeyValue())

	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	waiting := newTestTracking("conf-due", models.TrackingStatusWaiting, past)
	errored := newTestTracking("conf-errored", models.TrackingStatusError, past)
	pending := newTestTracking("conf-pending", models.TrackingStatusWaiting, future)
	complete := newTestTracking("conf-complete", models.TrackingStatusComplete, past)
	dispatched := newTestTracking("conf-dispatched", models.TrackingStatusWaiting, past)
	processedAt := now.Add(-time.Second)
	dispatched.ProcessedAt = &processedAt

	for _, tracking := range []*models.ConferenceTracking{waiting, errored, pending, complete, dispatched} {
		require.NoError(t, repo.Create(ctx, tracking))
	}

	due, err := repo.ListDue(ctx, now)
	require.NoError(t, err)

	dueIDs := make([]string, 0, len(due))
	for _, tracking := range due {
		dueIDs = append(dueIDs, tracking.ConferenceID)
	}
	assert.ElementsMatch(t, []string{"conf-due", "conf-errored"}, dueIDs)
}

func TestNatsConferenceTrackingRepository_NotReady(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsConferenceTrackingRepository(nil)

	assert.False(t, repo.IsReady())

	_, err := repo.Get(ctx, "conf-123")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestNatsMeetingRecordRepository_CreateIsUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewNatsMeetingRecordRepository(newMockNatsKeyValue())

	record := &models.MeetingRecord{
		UID:          "uid-1",
		ConferenceID: "conf-123",
		Title:        "Governance sync",
	}
	require.NoError(t, repo.Create(ctx, record))

	record.Title = "Governance sync (updated)"
	require.NoError(t, repo.Create(ctx, record))

	got, err := repo.GetByConferenceID(ctx, "conf-123")
	require.NoError(t, err)
	assert.Equal(t, "Governance sync (updated)", got.Title)
}
