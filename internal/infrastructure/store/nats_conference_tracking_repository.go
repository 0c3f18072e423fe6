// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// NatsConferenceTrackingRepository is the NATS KV store repository for conference artifact tracking records.
type NatsConferenceTrackingRepository struct {
	*NatsBaseRepository[models.ConferenceTracking]
	keyBuilder *KeyBuilder
}

// NewNatsConferenceTrackingRepository creates a new NATS KV store repository for conference artifact tracking records.
func NewNatsConferenceTrackingRepository(kvStore INatsKeyValue) *NatsConferenceTrackingRepository {
	baseRepo := NewNatsBaseRepository[models.ConferenceTracking](kvStore, "conference tracking")

	return &NatsConferenceTrackingRepository{
		NatsBaseRepository: baseRepo,
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsConferenceTrackingRepository) key(conferenceID string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixTracking, conferenceID)
}

// Create creates a new tracking record. It returns a conflict error when a
// record for the conference already exists, so concurrent first events race safely.
func (r *NatsConferenceTrackingRepository) Create(ctx context.Context, tracking *models.ConferenceTracking) error {
	if tracking.ConferenceID == "" {
		return domain.NewValidationError("conference ID is required")
	}

	return r.NatsBaseRepository.Create(ctx, r.key(tracking.ConferenceID), tracking)
}

// Exists checks if a tracking record exists for the conference
func (r *NatsConferenceTrackingRepository) Exists(ctx context.Context, conferenceID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, r.key(conferenceID))
}

// Get retrieves a tracking record by conference ID
func (r *NatsConferenceTrackingRepository) Get(ctx context.Context, conferenceID string) (*models.ConferenceTracking, error) {
	return r.NatsBaseRepository.Get(ctx, r.key(conferenceID))
}

// GetWithRevision retrieves a tracking record with its revision by conference ID
func (r *NatsConferenceTrackingRepository) GetWithRevision(ctx context.Context, conferenceID string) (*models.ConferenceTracking, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.key(conferenceID))
}

// Update updates an existing tracking record with optimistic concurrency control
func (r *NatsConferenceTrackingRepository) Update(ctx context.Context, tracking *models.ConferenceTracking, revision uint64) error {
	if tracking.ConferenceID == "" {
		return domain.NewValidationError("conference ID is required")
	}

	return r.NatsBaseRepository.Update(ctx, r.key(tracking.ConferenceID), tracking, revision)
}

// ListAll lists all tracking records
func (r *NatsConferenceTrackingRepository) ListAll(ctx context.Context) ([]*models.ConferenceTracking, error) {
	return r.ListEntitiesEncoded(ctx, KeyPrefixTracking, r.keyBuilder)
}

// ListDue lists tracking records whose timeout deadline has passed and that
// are still eligible for dispatch: non-terminal status, never dispatched.
func (r *NatsConferenceTrackingRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ConferenceTracking, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var due []*models.ConferenceTracking
	for _, tracking := range all {
		if tracking.IsTerminal() || tracking.ProcessedAt != nil {
			continue
		}
		if !tracking.TimedOut(now) {
			continue
		}
		due = append(due, tracking)
	}

	return due, nil
}
