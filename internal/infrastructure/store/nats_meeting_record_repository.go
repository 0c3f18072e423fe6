// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// NatsMeetingRecordRepository is the NATS KV store repository for meeting records.
type NatsMeetingRecordRepository struct {
	*NatsBaseRepository[models.MeetingRecord]
	keyBuilder *KeyBuilder
}

// NewNatsMeetingRecordRepository creates a new NATS KV store repository for meeting records.
func NewNatsMeetingRecordRepository(kvStore INatsKeyValue) *NatsMeetingRecordRepository {
	baseRepo := NewNatsBaseRepository[models.MeetingRecord](kvStore, "meeting record")

	return &NatsMeetingRecordRepository{
		NatsBaseRepository: baseRepo,
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsMeetingRecordRepository) key(conferenceID string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixMeetingRecord, conferenceID)
}

// Create creates a new meeting record keyed by conference ID
func (r *NatsMeetingRecordRepository) Create(ctx context.Context, record *models.MeetingRecord) error {
	if record.ConferenceID == "" {
		return domain.NewValidationError("conference ID is required")
	}

	return r.NatsBaseRepository.Put(ctx, r.key(record.ConferenceID), record)
}

// GetByConferenceID retrieves a meeting record by conference ID
func (r *NatsMeetingRecordRepository) GetByConferenceID(ctx context.Context, conferenceID string) (*models.MeetingRecord, error) {
	return r.NatsBaseRepository.Get(ctx, r.key(conferenceID))
}

// GetByConferenceIDWithRevision retrieves a meeting record with its revision by conference ID
func (r *NatsMeetingRecordRepository) GetByConferenceIDWithRevision(ctx context.Context, conferenceID string) (*models.MeetingRecord, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.key(conferenceID))
}

// Update updates an existing meeting record with optimistic concurrency control
func (r *NatsMeetingRecordRepository) Update(ctx context.Context, record *models.MeetingRecord, revision uint64) error {
	if record.ConferenceID == "" {
		return domain.NewValidationError("conference ID is required")
	}

	return r.NatsBaseRepository.Update(ctx, r.key(record.ConferenceID), record, revision)
}

// ListAll lists all meeting records
func (r *NatsMeetingRecordRepository) ListAll(ctx context.Context) ([]*models.MeetingRecord, error) {
	return r.ListEntitiesEncoded(ctx, KeyPrefixMeetingRecord, r.keyBuilder)
}
