// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package messaging publishes reconciliation events to NATS.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
)

// INatsConn is the part of *nats.Conn the publisher needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder is the builder for the message and sends it to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
	now      func() time.Time
}

// Ensure that MessageBuilder implements domain.EventPublisher
var _ domain.EventPublisher = (*MessageBuilder)(nil)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
		now:      time.Now,
	}
}

// publish sends the message to the NATS server.
func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	if !m.NatsConn.IsConnected() {
		slog.WarnContext(ctx, "NATS connection is not available, dropping event", "subject", subject)
		return domain.NewUnavailableError("nats connection is not available", domain.ErrServiceUnavailable)
	}
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// toMap turns an entity into the generic map carried in the event data, keyed by
// its JSON names. Timestamps stay RFC 3339 strings as on the wire.
func toMap(entity any) (map[string]any, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("error marshalling entity into JSON: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("error unmarshalling entity JSON: %w", err)
	}
	return payload, nil
}

// sendEvent wraps entity in a ReconciliationEvent and publishes it on subject.
func (m *MessageBuilder) sendEvent(ctx context.Context, subject string, action models.MessageAction, source models.EventSource, meetingID string, entity any) error {
	data, err := toMap(entity)
	if err != nil {
		slog.ErrorContext(ctx, "error building event data", logging.ErrKey, err, "subject", subject)
		return err
	}

	event := models.ReconciliationEvent{
		ID:         uuid.NewString(),
		Action:     action,
		Source:     source,
		MeetingID:  meetingID,
		OccurredAt: m.now().UTC(),
		Data:       data,
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "constructed reconciliation event",
		"subject", subject,
		"action", action,
		"event_id", event.ID,
	)

	return m.publish(ctx, subject, messageBytes)
}

// PublishMeeting sends a meeting upsert event.
func (m *MessageBuilder) PublishMeeting(ctx context.Context, action models.MessageAction, source models.EventSource, meeting *models.Meeting) error {
	return m.sendEvent(ctx, models.MeetingUpsertedSubject, action, source, meeting.MeetingID, meeting)
}

// PublishParticipant sends a participant upsert event.
func (m *MessageBuilder) PublishParticipant(ctx context.Context, action models.MessageAction, source models.EventSource, participant *models.Participant) error {
	return m.sendEvent(ctx, models.ParticipantUpsertedSubject, action, source, participant.MeetingID, participant)
}

// PublishRecording sends a recording event. Downloads go to their own subject.
func (m *MessageBuilder) PublishRecording(ctx context.Context, action models.MessageAction, source models.EventSource, recording *models.Recording) error {
	subject := models.RecordingUpsertedSubject
	if action == models.ActionDownloaded {
		subject = models.RecordingDownloadedSubject
	}
	return m.sendEvent(ctx, subject, action, source, recording.MeetingID, recording)
}
