// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// MockArtifactProvider implements ArtifactProvider for testing
type MockArtifactProvider struct {
	mock.Mock
}

func (m *MockArtifactProvider) GetConferenceDetails(ctx context.Context, conferenceID, asEmail string) (*domain.ConferenceDetails, error) {
	args := m.Called(ctx, conferenceID, asEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConferenceDetails), args.Error(1)
}

func (m *MockArtifactProvider) GetArtifactLink(ctx context.Context, kind models.ArtifactKind, resourceName, asEmail string) (string, error) {
	args := m.Called(ctx, kind, resourceName, asEmail)
	return args.String(0), args.Error(1)
}

// MockDirectoryResolver implements DirectoryResolver for testing
type MockDirectoryResolver struct {
	mock.Mock
}

func (m *MockDirectoryResolver) ResolveEmail(ctx context.Context, actorRef string) (string, error) {
	args := m.Called(ctx, actorRef)
	return args.String(0), args.Error(1)
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, payload *models.DispatchPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockPushValidator implements PushValidator for testing
type MockPushValidator struct {
	mock.Mock
}

func (m *MockPushValidator) Validate(authorization, queryToken string) error {
	args := m.Called(authorization, queryToken)
	return args.Error(0)
}
