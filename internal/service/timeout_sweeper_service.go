// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/pkg/concurrent"
)

// SweepReport summarizes one pass of the timeout sweeper.
type SweepReport struct {
	Scanned    int `json:"scanned"`
	Dispatched int `json:"dispatched"`
	Ignored    int `json:"ignored"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

// TimeoutSweeperService periodically dispatches conferences whose artifact
// deadline elapsed before all artifacts arrived.
type TimeoutSweeperService struct {
	trackingRepo domain.ConferenceTrackingRepository
	dispatcher   *DispatchService
	config       ServiceConfig
	nowFunc      func() time.Time

	// sweeping guards against overlapping sweeps when one pass outlasts the
	// tick interval.
	sweeping atomic.Bool
}

// NewTimeoutSweeperService creates a new TimeoutSweeperService
func NewTimeoutSweeperService(
	trackingRepo domain.ConferenceTrackingRepository,
	dispatcher *DispatchService,
	config ServiceConfig,
) *TimeoutSweeperService {
	config.ApplyDefaults()
	return &TimeoutSweeperService{
		trackingRepo: trackingRepo,
		dispatcher:   dispatcher,
		config:       config,
		nowFunc:      time.Now,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *TimeoutSweeperService) ServiceReady() bool {
	return s.trackingRepo != nil && s.dispatcher != nil
}

// Run sweeps on the given interval until the context is cancelled.
func (s *TimeoutSweeperService) Run(ctx context.Context, interval time.Duration) {
	slog.InfoContext(ctx, "starting timeout sweeper", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "timeout sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "sweep pass failed", logging.ErrKey, err)
			}
		}
	}
}

// SweepOnce runs a single sweep pass: it lists the overdue records and
// dispatches them with bounded concurrency. Records over the retry cap are
// skipped and surfaced for operator attention; a manual trigger is the only
// way to move them.
func (s *TimeoutSweeperService) SweepOnce(ctx context.Context) (*SweepReport, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		slog.WarnContext(ctx, "previous sweep still running, skipping this pass")
		return &SweepReport{}, nil
	}
	defer s.sweeping.Store(false)

	now := s.nowFunc().UTC()
	due, err := s.trackingRepo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(due)}
	if len(due) == 0 {
		return report, nil
	}

	var dispatched, ignored, skipped, errored atomic.Int64

	tasks := make([]func() error, 0, len(due))
	for _, tracking := range due {
		if tracking.DispatchAttempts >= s.config.MaxDispatchAttempts {
			skipped.Add(1)
			slog.ErrorContext(ctx, "conference exceeded dispatch retry cap, manual trigger required",
				"conference_id", tracking.ConferenceID,
				"dispatch_attempts", tracking.DispatchAttempts,
				logging.PriorityCritical())
			continue
		}

		conferenceID := tracking.ConferenceID
		tasks = append(tasks, func() error {
			result, err := s.dispatcher.Dispatch(ctx, conferenceID, models.DispatchTriggerTimeout)
			if err != nil {
				errored.Add(1)
				return err
			}
			switch result.Outcome {
			case DispatchOutcomeDispatched:
				dispatched.Add(1)
			case DispatchOutcomeIgnored:
				ignored.Add(1)
			case DispatchOutcomeSendFailed, DispatchOutcomeNoArtifacts:
				errored.Add(1)
			}
			return nil
		})
	}

	pool := concurrent.NewWorkerPool(s.config.SweepConcurrency)
	for _, err := range pool.RunAll(ctx, tasks...) {
		slog.ErrorContext(ctx, "sweep dispatch failed", logging.ErrKey, err)
	}

	report.Dispatched = int(dispatched.Load())
	report.Ignored = int(ignored.Load())
	report.Skipped = int(skipped.Load())
	report.Errors = int(errored.Load())

	slog.InfoContext(ctx, "sweep pass completed",
		"scanned", report.Scanned,
		"dispatched", report.Dispatched,
		"ignored", report.Ignored,
		"skipped", report.Skipped,
		"errors", report.Errors,
	)

	return report, nil
}
