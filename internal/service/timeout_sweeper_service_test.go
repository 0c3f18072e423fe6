// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

type sweeperFixture struct {
	trackingRepo *mocks.MockConferenceTrackingRepository
	notifier     *mocks.MockNotifier
	svc          *TimeoutSweeperService
}

func newSweeperFixture(config ServiceConfig) *sweeperFixture {
	f := &sweeperFixture{
		trackingRepo: &mocks.MockConferenceTrackingRepository{},
		notifier:     &mocks.MockNotifier{},
	}
	dispatcher := NewDispatchService(f.trackingRepo, nil, nil, f.notifier, config)
	dispatcher.nowFunc = func() time.Time { return testNow }
	f.svc = NewTimeoutSweeperService(f.trackingRepo, dispatcher, config)
	f.svc.nowFunc = func() time.Time { return testNow }
	return f
}

func overdueTracking(conferenceID string, attempts int) *models.ConferenceTracking {
	return &models.ConferenceTracking{
		ConferenceID:  conferenceID,
		UserEmail:     "alice@example.org",
		Status:        models.TrackingStatusWaiting,
		HasRecording:  true,
		RecordingURL:  "https://drive.google.com/file/rec-1",
		RecordingName: conferenceID + "/recordings/rec-1",
		TimeoutAt:     testNow.Add(-time.Minute),

		DispatchAttempts: attempts,
	}
}

func TestSweepOnce_DispatchesOverdueRecords(t *testing.T) {
	f := newSweeperFixture(ServiceConfig{SweepConcurrency: 2})

	tracking := overdueTracking("conferenceRecords/conf-1", 0)
	f.trackingRepo.On("ListDue", mock.Anything, testNow).
		Return([]*models.ConferenceTracking{tracking}, nil).Once()
	f.trackingRepo.On("GetWithRevision", mock.Anything, tracking.ConferenceID).
		Return(tracking, uint64(1), nil).Once()
	f.trackingRepo.On("Update", mock.Anything, mock.Anything, uint64(1)).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, mock.MatchedBy(func(payload *models.DispatchPayload) bool {
		return payload.Partial
	})).Return(nil).Once()
	f.trackingRepo.On("Update", mock.Anything, mock.MatchedBy(func(tr *models.ConferenceTracking) bool {
		return tr.Status == models.TrackingStatusPartialComplete
	}), uint64(2)).Return(nil).Once()

	report, err := f.svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Dispatched)
	assert.Equal(t, 0, report.Errors)
	f.notifier.AssertExpectations(t)
}

func TestSweepOnce_SkipsRecordsOverRetryCap(t *testing.T) {
	f := newSweeperFixture(ServiceConfig{MaxDispatchAttempts: 3})

	capped := overdueTracking("conferenceRecords/conf-capped", 3)
	f.trackingRepo.On("ListDue", mock.Anything, testNow).
		Return([]*models.ConferenceTracking{capped}, nil).Once()

	report, err := f.svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Dispatched)
	f.trackingRepo.AssertNotCalled(t, "GetWithRevision", mock.Anything, mock.Anything)
}

func TestSweepOnce_LostRaceIsNotAnError(t *testing.T) {
	f := newSweeperFixture(ServiceConfig{})

	tracking := overdueTracking("conferenceRecords/conf-1", 0)
	f.trackingRepo.On("ListDue", mock.Anything, testNow).
		Return([]*models.ConferenceTracking{tracking}, nil).Once()
	f.trackingRepo.On("GetWithRevision", mock.Anything, mock.Anything).
		Return(tracking, uint64(1), nil).Once()
	f.trackingRepo.On("Update", mock.Anything, mock.Anything, uint64(1)).
		Return(domain.NewConflictError("conference tracking has been modified")).Once()

	report, err := f.svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Dispatched)
	assert.Equal(t, 0, report.Errors)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSweepOnce_EmptySweep(t *testing.T) {
	f := newSweeperFixture(ServiceConfig{})

	f.trackingRepo.On("ListDue", mock.Anything, testNow).
		Return([]*models.ConferenceTracking{}, nil).Once()

	report, err := f.svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
}

func TestSweepOnce_OverlapGuard(t *testing.T) {
	f := newSweeperFixture(ServiceConfig{})
	f.svc.sweeping.Store(true)

	report, err := f.svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
	f.trackingRepo.AssertNotCalled(t, "ListDue", mock.Anything, mock.Anything)
}
