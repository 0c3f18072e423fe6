// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// MockWebhookEventSender implements WebhookEventSender for testing
type MockWebhookEventSender struct {
	mock.Mock
}

func (m *MockWebhookEventSender) PublishMeetWebhookEvent(ctx context.Context, subject string, event models.MeetWebhookEventMessage) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}

// MockMessage implements Message for testing
type MockMessage struct {
	mock.Mock
}

func (m *MockMessage) Subject() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockMessage) Data() []byte {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

func (m *MockMessage) Respond(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockMessage) HasReply() bool {
	args := m.Called()
	return args.Bool(0)
}
