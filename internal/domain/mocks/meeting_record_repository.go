// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// MockMeetingRecordRepository implements MeetingRecordRepository for testing
type MockMeetingRecordRepository struct {
	mock.Mock
}

func (m *MockMeetingRecordRepository) Create(ctx context.Context, record *models.MeetingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMeetingRecordRepository) GetByConferenceID(ctx context.Context, conferenceID string) (*models.MeetingRecord, error) {
	args := m.Called(ctx, conferenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingRecord), args.Error(1)
}

func (m *MockMeetingRecordRepository) GetByConferenceIDWithRevision(ctx context.Context, conferenceID string) (*models.MeetingRecord, uint64, error) {
	args := m.Called(ctx, conferenceID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.MeetingRecord), args.Get(1).(uint64), args.Error(2)
}

func (m *MockMeetingRecordRepository) Update(ctx context.Context, record *models.MeetingRecord, revision uint64) error {
	args := m.Called(ctx, record, revision)
	return args.Error(0)
}

func (m *MockMeetingRecordRepository) ListAll(ctx context.Context) ([]*models.MeetingRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MeetingRecord), args.Error(1)
}
