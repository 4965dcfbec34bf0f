// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// MockZoomAPI implements domain.ZoomAPI for testing
type MockZoomAPI struct {
	mock.Mock
}

var _ domain.ZoomAPI = (*MockZoomAPI)(nil)

func (m *MockZoomAPI) GetMeeting(ctx context.Context, meetingID string) (*models.ZoomMeeting, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ZoomMeeting), args.Error(1)
}

func (m *MockZoomAPI) ListMeetings(ctx context.Context, opts models.ListMeetingsOptions) (*models.ZoomMeetingList, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ZoomMeetingList), args.Error(1)
}

func (m *MockZoomAPI) GetParticipants(ctx context.Context, meetingID string) (*models.ParticipantFetch, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParticipantFetch), args.Error(1)
}

func (m *MockZoomAPI) GetRecordings(ctx context.Context, meetingID string) ([]models.ZoomRecordingFile, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ZoomRecordingFile), args.Error(1)
}

// DownloadRecording writes the bytes given as the first return value into w.
func (m *MockZoomAPI) DownloadRecording(ctx context.Context, downloadURL string, w io.Writer) (int64, error) {
	args := m.Called(ctx, downloadURL, w)
	var n int64
	if payload, ok := args.Get(0).([]byte); ok && len(payload) > 0 {
		written, err := w.Write(payload)
		n = int64(written)
		if err != nil {
			return n, err
		}
	}
	return n, args.Error(1)
}
