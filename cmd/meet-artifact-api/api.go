// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/service"
)

// MeetArtifactAPI is the HTTP surface of the service: webhook ingress, the
// manual dispatch trigger, the status snapshot and health checks.
type MeetArtifactAPI struct {
	webhookService     *service.MeetWebhookService
	aggregatorService  *service.ConferenceAggregatorService
	dispatchService    *service.DispatchService
	manualTriggerToken string
	readyCheck         func() bool
}

// NewMeetArtifactAPI creates a new MeetArtifactAPI
func NewMeetArtifactAPI(
	webhookService *service.MeetWebhookService,
	aggregatorService *service.ConferenceAggregatorService,
	dispatchService *service.DispatchService,
	manualTriggerToken string,
	readyCheck func() bool,
) *MeetArtifactAPI {
	return &MeetArtifactAPI{
		webhookService:     webhookService,
		aggregatorService:  aggregatorService,
		dispatchService:    dispatchService,
		manualTriggerToken: manualTriggerToken,
		readyCheck:         readyCheck,
	}
}

// HandleWebhookEvents is the Pub/Sub push ingress. Decodable, authenticated
// pushes are always acknowledged with 200, even when downstream processing
// fails, because Pub/Sub redelivery cannot fix an internal fault and the
// timeout sweeper covers missed events.
func (a *MeetArtifactAPI) HandleWebhookEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var envelope models.PubSubPushMessage
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		slog.WarnContext(ctx, "malformed push envelope", logging.ErrKey, err)
		http.Error(w, "malformed push envelope", http.StatusBadRequest)
		return
	}

	event, err := a.webhookService.ProcessPushEvent(ctx, service.PushRequest{
		Authorization: r.Header.Get("Authorization"),
		QueryToken:    r.URL.Query().Get("token"),
		Envelope:      envelope,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPushToken) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if domain.GetErrorType(err) == domain.ErrorTypeValidation {
			http.Error(w, "invalid push message", http.StatusBadRequest)
			return
		}
		// Internal failure after a well-formed push still gets acknowledged.
		slog.ErrorContext(ctx, "push event processing failed after ack", logging.ErrKey, err)
		w.WriteHeader(http.StatusOK)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"status":        "accepted",
		"event_type":    event.EventType,
		"conference_id": event.ConferenceID,
	})
}

// HandleManualTrigger forces a dispatch for one conference. It is guarded by
// a bearer token meant for operators, not end users.
func (a *MeetArtifactAPI) HandleManualTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !a.authorizeManualTrigger(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conferenceID := r.PathValue("conferenceId")
	if conferenceID != "" && !strings.HasPrefix(conferenceID, "conferenceRecords/") {
		conferenceID = "conferenceRecords/" + conferenceID
	}

	result, err := a.dispatchService.TriggerManual(ctx, conferenceID)
	if err != nil {
		switch domain.GetErrorType(err) {
		case domain.ErrorTypeNotFound:
			http.Error(w, "conference not found", http.StatusNotFound)
		case domain.ErrorTypeValidation:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			slog.ErrorContext(ctx, "manual dispatch failed", logging.ErrKey, err,
				"conference_id", conferenceID)
			http.Error(w, "dispatch failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"conference_id": result.Tracking.ConferenceID,
		"outcome":       result.Outcome,
		"status":        result.Tracking.Status,
		"processed_at":  result.Tracking.ProcessedAt,
	})
}

// HandleStatus returns the aggregate tracking snapshot. Passing
// include_records=true additionally returns the raw records.
func (a *MeetArtifactAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	includeRecords := r.URL.Query().Get("include_records") == "true"
	snapshot, err := a.aggregatorService.GetStatusSnapshot(ctx, includeRecords)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build status snapshot", logging.ErrKey, err)
		http.Error(w, "status unavailable", http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusOK, snapshot)
}

// HandleLivez always succeeds while the process is running.
func (a *MeetArtifactAPI) HandleLivez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// HandleReadyz reports whether the service can process requests.
func (a *MeetArtifactAPI) HandleReadyz(w http.ResponseWriter, _ *http.Request) {
	if a.readyCheck != nil && !a.readyCheck() {
		http.Error(w, "service not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

func (a *MeetArtifactAPI) authorizeManualTrigger(r *http.Request) bool {
	if a.manualTriggerToken == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return hmac.Equal([]byte(token), []byte(a.manualTriggerToken))
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to encode response body", logging.ErrKey, err)
	}
}
