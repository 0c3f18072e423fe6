// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the meet artifact service: it ingests Google Meet webhook
// events over HTTP, aggregates per-conference artifacts through NATS KV, and
// dispatches consolidated notifications downstream.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/infrastructure/directory"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/infrastructure/meet"
	meetwebhook "github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/infrastructure/meet/webhook"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/infrastructure/notifier"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Google Workspace clients. The Meet client impersonates conference
	// organizers; the directory resolver impersonates the configured admin.
	meetClient := meet.NewClient(meet.Config{
		ServiceAccountEmail: env.Google.ServiceAccountEmail,
		PrivateKey:          []byte(env.Google.PrivateKey),
		PrivateKeyID:        env.Google.PrivateKeyID,
	})
	artifactProvider := meet.NewProvider(meetClient)
	directoryResolver := directory.NewResolver(directory.Config{
		ServiceAccountEmail: env.Google.ServiceAccountEmail,
		PrivateKey:          []byte(env.Google.PrivateKey),
		PrivateKeyID:        env.Google.PrivateKeyID,
		AdminEmail:          env.Google.AdminEmail,
	})

	webhookNotifier := notifier.NewHTTPNotifier(notifier.Config{
		DestinationURL: env.WebhookDestinationURL,
		SharedToken:    env.WebhookSharedToken,
	})

	// Initialize services
	serviceConfig := service.ServiceConfig{
		ArtifactTimeout:            env.ArtifactTimeout,
		SweepConcurrency:           env.SweepConcurrency,
		MaxDispatchAttempts:        env.MaxDispatchAttempts,
		MonitoredUsers:             env.MonitoredUsers,
		FallbackImpersonationEmail: env.Google.ImpersonationEmail,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	webhookService := service.NewMeetWebhookService(
		messageBuilder,
		meetwebhook.NewPushValidator(env.PushVerificationToken),
	)
	aggregatorService := service.NewConferenceAggregatorService(
		repos.Tracking,
		serviceConfig,
	)
	dispatchService := service.NewDispatchService(
		repos.Tracking,
		repos.MeetingRecord,
		artifactProvider,
		webhookNotifier,
		serviceConfig,
	)
	sweeperService := service.NewTimeoutSweeperService(
		repos.Tracking,
		dispatchService,
		serviceConfig,
	)

	// Initialize handlers
	meetWebhookHandler := handlers.NewMeetWebhookHandler(
		aggregatorService,
		dispatchService,
		directoryResolver,
	)

	api := NewMeetArtifactAPI(
		webhookService,
		aggregatorService,
		dispatchService,
		env.ManualTriggerToken,
		func() bool {
			return natsConn.IsConnected() && !natsConn.IsDraining() &&
				meetWebhookHandler.HandlerReady() &&
				webhookService.ServiceReady() &&
				sweeperService.ServiceReady()
		},
	)

	httpServer := setupHTTPServer(flags, api, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, meetWebhookHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// Start the timeout sweeper. It owns its ticker and stops when the
	// background context is cancelled during shutdown.
	go sweeperService.Run(ctx, env.SweepInterval)
	slog.With("interval", env.SweepInterval.String()).Info("timeout sweeper started")

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
