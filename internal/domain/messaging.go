// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// EventPublisher announces stored changes to other services.
type EventPublisher interface {
	PublishMeeting(ctx context.Context, action models.MessageAction, source models.EventSource, meeting *models.Meeting) error
	PublishParticipant(ctx context.Context, action models.MessageAction, source models.EventSource, participant *models.Participant) error
	PublishRecording(ctx context.Context, action models.MessageAction, source models.EventSource, recording *models.Recording) error
}
