// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// MockEventPublisher implements domain.EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

var _ domain.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) PublishMeeting(ctx context.Context, action models.MessageAction, source models.EventSource, meeting *models.Meeting) error {
	args := m.Called(ctx, action, source, meeting)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishParticipant(ctx context.Context, action models.MessageAction, source models.EventSource, participant *models.Participant) error {
	args := m.Called(ctx, action, source, participant)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishRecording(ctx context.Context, action models.MessageAction, source models.EventSource, recording *models.Recording) error {
	args := m.Called(ctx, action, source, recording)
	return args.Error(0)
}
