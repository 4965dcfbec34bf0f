// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// TokenRepository persists OAuth grants. The most recently created row is authoritative.
type TokenRepository interface {
	// LatestToken returns the newest token or an error wrapping ErrTokenNotFound.
	LatestToken(ctx context.Context) (*models.OAuthToken, error)
	CreateToken(ctx context.Context, token *models.OAuthToken) error
	// UpdateToken overwrites the row identified by token.ID.
	UpdateToken(ctx context.Context, token *models.OAuthToken) error
	DeleteAllTokens(ctx context.Context) (int64, error)
}

// MeetingRepository defines the interface for meeting storage operations.
type MeetingRepository interface {
	// GetMeeting returns an error wrapping ErrMeetingNotFound when absent.
	GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error)
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error
	UpdateMeeting(ctx context.Context, meeting *models.Meeting) error
	// ListMeetings returns meetings newest first.
	ListMeetings(ctx context.Context, limit, offset int) ([]*models.Meeting, error)
	SetParticipantCount(ctx context.Context, meetingID string, count int, updatedAt time.Time) error
}

// ParticipantRepository defines the interface for participant storage operations.
type ParticipantRepository interface {
	// GetParticipant returns an error wrapping ErrParticipantNotFound when absent.
	GetParticipant(ctx context.Context, meetingID, userID string) (*models.Participant, error)
	CreateParticipant(ctx context.Context, participant *models.Participant) error
	UpdateParticipant(ctx context.Context, participant *models.Participant) error
	// ListParticipants returns the meeting participants ordered by join time.
	ListParticipants(ctx context.Context, meetingID string) ([]*models.Participant, error)
	CountParticipants(ctx context.Context, meetingID string) (int, error)
	ParticipantStats(ctx context.Context, meetingID string) (*models.ParticipantStats, error)
}

// RecordingRepository defines the interface for recording storage operations.
type RecordingRepository interface {
	// GetRecording returns an error wrapping ErrRecordingNotFound when absent.
	GetRecording(ctx context.Context, recordingID string) (*models.Recording, error)
	CreateRecording(ctx context.Context, recording *models.Recording) error
	UpdateRecording(ctx context.Context, recording *models.Recording) error
	// ListRecordings returns the meeting recordings ordered by recording start.
	ListRecordings(ctx context.Context, meetingID string) ([]*models.Recording, error)
}

// Repositories groups the stores the services need.
type Repositories struct {
	Tokens       TokenRepository
	Meetings     MeetingRepository
	Participants ParticipantRepository
	Recordings   RecordingRepository
}
