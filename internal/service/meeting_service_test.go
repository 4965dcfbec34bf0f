// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

func TestUpsertMeeting_CreateThenMerge(t *testing.T) {
	ctx := context.Background()
	f := setupServiceForTesting(t)
	start := mustParse(t, "2024-03-01T10:00:00Z")
	end := mustParse(t, "2024-03-01T11:00:00Z")

	created, err := f.service.UpsertMeeting(ctx, models.MeetingPatch{
		MeetingID: "123",
		Topic:     utils.Ptr("Standup"),
		StartTime: &start,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Nil(t, created.Duration)
	assert.Equal(t, testNow, created.CreatedAt)

	updated, err := f.service.UpsertMeeting(ctx, models.MeetingPatch{MeetingID: "123", EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Standup", utils.Value(updated.Topic))
	require.NotNil(t, updated.Duration)
	assert.Equal(t, 3600, *updated.Duration)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpsertMeeting_IdempotentWithMonotonicUpdatedAt(t *testing.T) {
	ctx := context.Background()
	f := setupServiceForTesting(t)
	patch := models.MeetingPatch{MeetingID: "123", Topic: utils.Ptr("Weekly"), HostEmail: utils.Ptr("host@example.com")}

	first, err := f.service.UpsertMeeting(ctx, patch)
	require.NoError(t, err)
	firstUpdated := first.UpdatedAt

	previous := firstUpdated
	for range 3 {
		again, err := f.service.UpsertMeeting(ctx, patch)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, "Weekly", utils.Value(again.Topic))
		assert.Equal(t, "host@example.com", utils.Value(again.HostEmail))
		assert.True(t, again.UpdatedAt.After(previous), "updated_at must increase")
		previous = again.UpdatedAt
	}

	meetings, err := f.service.ListMeetings(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, meetings, 1)
}

func TestUpsertMeeting_PublishesActions(t *testing.T) {
	ctx := context.Background()
	f := setupServiceForTesting(t)
	publisher := &mocks.MockEventPublisher{}
	publisher.On("PublishMeeting", mock.Anything, models.ActionCreated, models.SourceAPI, mock.Anything).Return(nil).Once()
	publisher.On("PublishMeeting", mock.Anything, models.ActionUpdated, models.SourceWebhook, mock.Anything).
		Return(domain.NewUnavailableError("nats down")).Once()
	f.service.Publisher = publisher

	_, err := f.service.UpsertMeeting(ctx, models.MeetingPatch{MeetingID: "1"})
	require.NoError(t, err)
	// A failed publish is logged, not returned.
	_, err = f.service.UpsertMeeting(WithEventSource(ctx, models.SourceWebhook), models.MeetingPatch{MeetingID: "1"})
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestUpsertMeeting_RequiresID(t *testing.T) {
	f := setupServiceForTesting(t)
	_, err := f.service.UpsertMeeting(context.Background(), models.MeetingPatch{})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestServiceNotReady(t *testing.T) {
	svc := NewReconciliationService(domain.Repositories{}, nil, nil, ServiceConfig{})
	assert.False(t, svc.ServiceReady())
	_, err := svc.UpsertMeeting(context.Background(), models.MeetingPatch{MeetingID: "1"})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestNextUpdatedAt(t *testing.T) {
	f := setupServiceForTesting(t)
	assert.Equal(t, testNow, f.service.nextUpdatedAt(testNow.Add(-time.Second)))
	assert.Equal(t, testNow.Add(time.Microsecond), f.service.nextUpdatedAt(testNow))
	later := testNow.Add(time.Hour)
	assert.Equal(t, later.Add(time.Microsecond), f.service.nextUpdatedAt(later))
}

func TestSyncMeeting(t *testing.T) {
	ctx := context.Background()

	t.Run("restricted participants add the paid account note", func(t *testing.T) {
		f := setupServiceForTesting(t)
		f.zoom.On("GetMeeting", mock.Anything, "123").Return(&models.ZoomMeeting{
			ID:        "123",
			Topic:     "Planning",
			StartTime: "2024-03-01T10:00:00Z",
			HostEmail: "host@example.com",
			Duration:  30,
		}, nil)
		f.zoom.On("GetParticipants", mock.Anything, "123").Return(&models.ParticipantFetch{
			Status:       models.FetchRestricted,
			Participants: []models.ZoomParticipant{},
		}, nil)
		f.zoom.On("GetRecordings", mock.Anything, "123").Return([]models.ZoomRecordingFile{}, nil)

		result, err := f.service.SyncMeeting(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, "Meeting data synced successfully. "+PaidAccountNote, result.Message)
		assert.Equal(t, models.FetchRestricted, result.FetchStatus)
		assert.Equal(t, "Planning", utils.Value(result.Meeting.Topic))
		assert.Equal(t, 1800, utils.Value(result.Meeting.Duration))
		assert.Empty(t, result.Participants)
		assert.NotNil(t, result.Recordings)
		assert.Zero(t, result.Meeting.ParticipantCount)
	})

	t.Run("participants and recordings stored", func(t *testing.T) {
		f := setupServiceForTesting(t)
		f.zoom.On("GetMeeting", mock.Anything, "123").Return(&models.ZoomMeeting{ID: "123", Topic: "Retro"}, nil)
		f.zoom.On("GetParticipants", mock.Anything, "123").Return(&models.ParticipantFetch{
			Status: models.FetchOK,
			Participants: []models.ZoomParticipant{
				{ID: "u1", Name: "Ann"},
				{UserID: "u2", UserName: "Bob"},
			},
		}, nil)
		f.zoom.On("GetRecordings", mock.Anything, "123").Return([]models.ZoomRecordingFile{
			{ID: "r1", FileType: "MP4", DownloadURL: "https://zoom.test/r1"},
		}, nil)

		result, err := f.service.SyncMeeting(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, "Meeting data synced successfully", result.Message)
		assert.Len(t, result.Participants, 2)
		assert.Len(t, result.Recordings, 1)
		assert.Equal(t, 2, result.Meeting.ParticipantCount)
		assert.Nil(t, result.Meeting.Duration)
	})

	t.Run("measured duration survives a later sync", func(t *testing.T) {
		f := setupServiceForTesting(t)
		_, err := f.service.UpsertMeeting(ctx, models.MeetingPatch{MeetingID: "123", StartTime: utils.Ptr(mustParse(t, "2024-03-01T10:00:00Z"))})
		require.NoError(t, err)
		ended, err := f.service.UpsertMeeting(ctx, models.MeetingPatch{MeetingID: "123", EndTime: utils.Ptr(mustParse(t, "2024-03-01T10:10:00Z"))})
		require.NoError(t, err)
		require.Equal(t, 600, utils.Value(ended.Duration))

		f.zoom.On("GetMeeting", mock.Anything, "123").Return(&models.ZoomMeeting{
			ID:        "123",
			Topic:     "Planning",
			StartTime: "2024-03-01T10:00:00Z",
			Duration:  60,
		}, nil)
		f.zoom.On("GetParticipants", mock.Anything, "123").Return(&models.ParticipantFetch{
			Status:       models.FetchNotFound,
			Participants: []models.ZoomParticipant{},
		}, nil)
		f.zoom.On("GetRecordings", mock.Anything, "123").Return([]models.ZoomRecordingFile{}, nil)

		result, err := f.service.SyncMeeting(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, 600, utils.Value(result.Meeting.Duration))
		assert.Equal(t, "Planning", utils.Value(result.Meeting.Topic))
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		f := setupServiceForTesting(t)
		f.zoom.On("GetMeeting", mock.Anything, "404").Return(nil, domain.NotAuthenticated())

		_, err := f.service.SyncMeeting(ctx, "404")
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestListMeetings_Validation(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		expectErr bool
	}{
		{name: "defaults", limit: 50, offset: 0},
		{name: "max limit", limit: 100, offset: 10},
		{name: "zero limit", limit: 0, expectErr: true},
		{name: "limit too large", limit: 101, expectErr: true},
		{name: "negative offset", limit: 10, offset: -1, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupServiceForTesting(t)
			meetings, err := f.service.ListMeetings(context.Background(), tt.limit, tt.offset)
			if tt.expectErr {
				assert.ErrorIs(t, err, domain.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, meetings)
		})
	}
}

func TestGetMeetingDetails(t *testing.T) {
	ctx := context.Background()
	f := setupServiceForTesting(t)

	_, err := f.service.GetMeetingDetails(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)

	late := mustParse(t, "2024-03-01T10:30:00Z")
	early := mustParse(t, "2024-03-01T10:00:00Z")
	_, err = f.service.UpsertParticipant(ctx, models.ParticipantPatch{MeetingID: "123", UserID: "late", JoinTime: &late})
	require.NoError(t, err)
	_, err = f.service.UpsertParticipant(ctx, models.ParticipantPatch{MeetingID: "123", UserID: "early", JoinTime: &early})
	require.NoError(t, err)

	details, err := f.service.GetMeetingDetails(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "123", details.MeetingID)
	require.Len(t, details.Participants, 2)
	assert.Equal(t, "early", details.Participants[0].UserID)
	assert.Equal(t, "late", details.Participants[1].UserID)
}

func TestListProviderMeetings(t *testing.T) {
	tests := []struct {
		name         string
		meetingType  string
		pageSize     int
		expectedType string
		expectedSize int
		expectErr    bool
	}{
		{name: "defaults", expectedType: "past", expectedSize: 30},
		{name: "upcoming", meetingType: "upcoming", pageSize: 300, expectedType: "upcoming", expectedSize: 300},
		{name: "live", meetingType: "live", pageSize: 5, expectedType: "live", expectedSize: 5},
		{name: "unknown type", meetingType: "scheduled", expectErr: true},
		{name: "page size too large", pageSize: 301, expectErr: true},
		{name: "negative page size", pageSize: -1, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupServiceForTesting(t)
			if !tt.expectErr {
				f.zoom.On("ListMeetings", mock.Anything, models.ListMeetingsOptions{
					UserID:        "me",
					Type:          tt.expectedType,
					PageSize:      tt.expectedSize,
					NextPageToken: "tok",
				}).Return(&models.ZoomMeetingList{Meetings: []models.ZoomMeeting{}}, nil)
			}

			list, err := f.service.ListProviderMeetings(context.Background(), tt.meetingType, tt.pageSize, "tok")
			if tt.expectErr {
				assert.ErrorIs(t, err, domain.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, list)
		})
	}
}
