// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// MockConferenceTrackingRepository implements ConferenceTrackingRepository for testing
type MockConferenceTrackingRepository struct {
	mock.Mock
}

func (m *MockConferenceTrackingRepository) Create(ctx context.Context, tracking *models.ConferenceTracking) error {
	args := m.Called(ctx, tracking)
	return args.Error(0)
}

func (m *MockConferenceTrackingRepository) Get(ctx context.Context, conferenceID string) (*models.ConferenceTracking, error) {
	args := m.Called(ctx, conferenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConferenceTracking), args.Error(1)
}

func (m *MockConferenceTrackingRepository) GetWithRevision(ctx context.Context, conferenceID string) (*models.ConferenceTracking, uint64, error) {
	args := m.Called(ctx, conferenceID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.ConferenceTracking), args.Get(1).(uint64), args.Error(2)
}

func (m *MockConferenceTrackingRepository) Update(ctx context.Context, tracking *models.ConferenceTracking, revision uint64) error {
	args := m.Called(ctx, tracking, revision)
	return args.Error(0)
}

func (m *MockConferenceTrackingRepository) Exists(ctx context.Context, conferenceID string) (bool, error) {
	args := m.Called(ctx, conferenceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockConferenceTrackingRepository) ListAll(ctx context.Context) ([]*models.ConferenceTracking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConferenceTracking), args.Error(1)
}

func (m *MockConferenceTrackingRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ConferenceTracking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConferenceTracking), args.Error(1)
}
