// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

// setupDBForTesting connects to TEST_DATABASE_URL, migrates and empties the schema.
func setupDBForTesting(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db.DB, MigrateUp))
	require.NoError(t, Clear(ctx, db, true))
	return db
}

func TestFail_Mapping(t *testing.T) {
	b := base{entity: "meeting", table: "meetings"}
	_, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "op")

	tests := []struct {
		name     string
		err      error
		expected domain.ErrorType
		sentinel error
	}{
		{"no rows", sql.ErrNoRows, domain.ErrorTypeNotFound, domain.ErrMeetingNotFound},
		{"unique violation", &pq.Error{Code: uniqueViolation}, domain.ErrorTypeConflict, nil},
		{"other", errors.New("broken pipe"), domain.ErrorTypeInternal, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.fail(context.Background(), span, "get", tt.err, domain.ErrMeetingNotFound)
			assert.Equal(t, tt.expected, domain.GetErrorType(err))
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestPostgres_MeetingLifecycle(t *testing.T) {
	db := setupDBForTesting(t)
	ctx := context.Background()
	repos := NewRepositories(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	meeting := &models.Meeting{MeetingID: "123", Topic: utils.Ptr("Standup"), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Meetings.CreateMeeting(ctx, meeting))
	assert.NotZero(t, meeting.ID)

	err := repos.Meetings.CreateMeeting(ctx, &models.Meeting{MeetingID: "123", CreatedAt: now, UpdatedAt: now})
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))

	meeting.HostEmail = utils.Ptr("host@example.com")
	meeting.UpdatedAt = now.Add(time.Second)
	require.NoError(t, repos.Meetings.UpdateMeeting(ctx, meeting))

	got, err := repos.Meetings.GetMeeting(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "host@example.com", *got.HostEmail)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	_, err = repos.Meetings.GetMeeting(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)

	join := now
	leave := now.Add(330 * time.Second)
	require.NoError(t, repos.Participants.CreateParticipant(ctx, &models.Participant{
		MeetingID: "123", UserID: "u1", JoinTime: &join, LeaveTime: &leave, Duration: utils.Ptr(330), CreatedAt: now,
	}))
	require.NoError(t, repos.Participants.CreateParticipant(ctx, &models.Participant{
		MeetingID: "123", UserID: "u2", CreatedAt: now,
	}))

	count, err := repos.Participants.CountParticipants(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stats, err := repos.Participants.ParticipantStats(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalParticipants)
	assert.Equal(t, 330, stats.TotalDuration)
	assert.InDelta(t, 330.0, stats.AvgDuration, 0.001)

	empty, err := repos.Participants.ParticipantStats(ctx, "none")
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantStats{}, *empty)

	require.NoError(t, repos.Meetings.SetParticipantCount(ctx, "123", count, now.Add(2*time.Second)))

	require.NoError(t, repos.Recordings.CreateRecording(ctx, &models.Recording{
		MeetingID: "123", RecordingID: "r1", FileType: utils.Ptr("MP4"), Status: models.RecordingStatusPending, CreatedAt: now,
	}))
	rec, err := repos.Recordings.GetRecording(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.RecordingStatusPending, rec.Status)

	require.NoError(t, Clear(ctx, db, false))
	list, err := repos.Meetings.ListMeetings(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPostgres_Tokens(t *testing.T) {
	db := setupDBForTesting(t)
	ctx := context.Background()
	repo := NewTokenRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := repo.LatestToken(ctx)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	require.NoError(t, repo.CreateToken(ctx, &models.OAuthToken{AccessToken: "old", TokenType: "Bearer", CreatedAt: now}))
	newer := &models.OAuthToken{AccessToken: "new", RefreshToken: "rt", TokenType: "Bearer", CreatedAt: now.Add(time.Second)}
	require.NoError(t, repo.CreateToken(ctx, newer))

	latest, err := repo.LatestToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	latest.AccessToken = "rotated"
	require.NoError(t, repo.UpdateToken(ctx, latest))

	n, err := repo.DeleteAllTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
