// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// WebhookEventSender publishes decoded Meet webhook events for asynchronous
// processing.
type WebhookEventSender interface {
	PublishMeetWebhookEvent(ctx context.Context, subject string, message models.MeetWebhookEventMessage) error
}
