// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/logging"
)

// gracefulShutdownSeconds should be higher than the NATS client request
// timeout, and lower than the pod's terminationGracePeriodSeconds.
const gracefulShutdownSeconds = 25

// setupNATS creates the NATS connection with reconnect and shutdown handling.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(gracefulShutdownSeconds*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if ctx.Err() != nil {
				// Graceful shutdown already in progress; let the remaining
				// steps complete.
				gracefulCloseWG.Done()
				return
			}
			// Otherwise max reconnect attempts were exhausted. Send a
			// synthetic interrupt and give graceful-shutdown tasks a moment
			// to clean up.
			slog.Error("NATS max-reconnects exhausted; connection closed")
			done <- os.Interrupt
			time.Sleep(5 * time.Second)
			os.Exit(1)
		}),
	)
	if err != nil {
		return nil, err
	}
	return natsConn, nil
}

// repositories are the KV-backed stores used by the services.
type repositories struct {
	Tracking      domain.ConferenceTrackingRepository
	MeetingRecord domain.MeetingRecordRepository
}

// getKeyValueStores binds the JetStream KV buckets, creating them when they
// do not exist yet.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	trackingKV, err := bindKeyValueBucket(ctx, js, store.KVStoreNameConferenceTracking)
	if err != nil {
		return nil, err
	}
	recordsKV, err := bindKeyValueBucket(ctx, js, store.KVStoreNameMeetingRecords)
	if err != nil {
		return nil, err
	}

	return &repositories{
		Tracking:      store.NewNatsConferenceTrackingRepository(trackingKV),
		MeetingRecord: store.NewNatsMeetingRecordRepository(recordsKV),
	}, nil
}

func bindKeyValueBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
	})
}

// natsMessage adapts a *nats.Msg to the [domain.Message] interface.
type natsMessage struct {
	msg *nats.Msg
}

func (m natsMessage) Subject() string {
	return m.msg.Subject
}

func (m natsMessage) Data() []byte {
	return m.msg.Data
}

func (m natsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

func (m natsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

// createNatsSubscriptions queue-subscribes the webhook event handler to every
// Meet webhook subject. The shared queue group spreads events across replicas
// while the KV revision checks keep per-conference merges consistent.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.MeetWebhookRecordingSubject,
		models.MeetWebhookTranscriptSubject,
		models.MeetWebhookSmartNoteSubject,
		models.MeetWebhookLifecycleSubject,
	}

	for _, subject := range subjects {
		if _, err := natsConn.QueueSubscribe(subject, models.MeetArtifactAPIQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, natsMessage{msg: msg})
		}); err != nil {
			slog.With(logging.ErrKey, err, "subject", subject).Error("error subscribing to NATS subject")
			return err
		}
		slog.With("subject", subject, "queue", models.MeetArtifactAPIQueue).Debug("subscribed to NATS subject")
	}

	return nil
}
