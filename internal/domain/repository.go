// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// ConferenceTrackingRepository defines the storage operations for conference
// tracking records. Update is revision-checked: it must fail with a conflict
// error when the record changed since it was read, because that
// compare-and-swap is the only mutual exclusion between the webhook, sweep
// and manual dispatch paths.
type ConferenceTrackingRepository interface {
	Create(ctx context.Context, tracking *models.ConferenceTracking) error
	Get(ctx context.Context, conferenceID string) (*models.ConferenceTracking, error)
	GetWithRevision(ctx context.Context, conferenceID string) (*models.ConferenceTracking, uint64, error)
	Update(ctx context.Context, tracking *models.ConferenceTracking, revision uint64) error
	Exists(ctx context.Context, conferenceID string) (bool, error)

	// ListAll returns every tracking record, used by the status snapshot.
	ListAll(ctx context.Context) ([]*models.ConferenceTracking, error)

	// ListDue returns sweep candidates: records in waiting or error state
	// whose deadline has elapsed and which have never dispatched
	// successfully (processed_at null).
	ListDue(ctx context.Context, now time.Time) ([]*models.ConferenceTracking, error)
}

// MeetingRecordRepository defines the storage operations for dispatched
// meeting snapshots.
type MeetingRecordRepository interface {
	Create(ctx context.Context, record *models.MeetingRecord) error
	GetByConferenceID(ctx context.Context, conferenceID string) (*models.MeetingRecord, error)
	GetByConferenceIDWithRevision(ctx context.Context, conferenceID string) (*models.MeetingRecord, uint64, error)
	Update(ctx context.Context, record *models.MeetingRecord, revision uint64) error
	ListAll(ctx context.Context) ([]*models.MeetingRecord, error)
}
