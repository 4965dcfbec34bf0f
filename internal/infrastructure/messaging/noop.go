// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// NoopPublisher drops every event. It is used when NATS_URL is not set.
type NoopPublisher struct{}

var _ domain.EventPublisher = NoopPublisher{}

// NewNoopPublisher creates a publisher that discards events.
func NewNoopPublisher() NoopPublisher {
	return NoopPublisher{}
}

func (NoopPublisher) PublishMeeting(ctx context.Context, action models.MessageAction, _ models.EventSource, meeting *models.Meeting) error {
	slog.DebugContext(ctx, "event publishing disabled", "entity", "meeting", "action", action, "meeting_id", meeting.MeetingID)
	return nil
}

func (NoopPublisher) PublishParticipant(ctx context.Context, action models.MessageAction, _ models.EventSource, participant *models.Participant) error {
	slog.DebugContext(ctx, "event publishing disabled", "entity", "participant", "action", action, "meeting_id", participant.MeetingID)
	return nil
}

func (NoopPublisher) PublishRecording(ctx context.Context, action models.MessageAction, _ models.EventSource, recording *models.Recording) error {
	slog.DebugContext(ctx, "event publishing disabled", "entity", "recording", "action", action, "meeting_id", recording.MeetingID)
	return nil
}
