// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

func participantLockKey(meetingID, userID string) string {
	return meetingID + "\x00" + userID
}

// UpsertParticipant merges the patch onto the stored participant, creating the
// participant and its parent meeting when absent.
func (s *ReconciliationService) UpsertParticipant(ctx context.Context, patch models.ParticipantPatch) (*models.Participant, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if patch.MeetingID == "" || patch.UserID == "" {
		return nil, domain.NewValidationError("meeting id and user id are required", domain.ErrValidationFailed)
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", patch.MeetingID))

	unlock := s.participantLocks.Lock(participantLockKey(patch.MeetingID, patch.UserID))
	defer unlock()

	if err := s.ensureMeeting(ctx, patch.MeetingID); err != nil {
		return nil, err
	}

	existing, err := s.Repos.Participants.GetParticipant(ctx, patch.MeetingID, patch.UserID)
	switch {
	case err == nil:
		patch.Apply(existing)
		if err := s.Repos.Participants.UpdateParticipant(ctx, existing); err != nil {
			return nil, err
		}
		logPublishError(ctx, "participant", s.Publisher.PublishParticipant(ctx, models.ActionUpdated, eventSource(ctx), existing))
		return existing, nil

	case errors.Is(err, domain.ErrParticipantNotFound):
		participant := &models.Participant{
			MeetingID: patch.MeetingID,
			UserID:    patch.UserID,
			CreatedAt: s.now(),
		}
		patch.Apply(participant)
		if err := s.Repos.Participants.CreateParticipant(ctx, participant); err != nil {
			return nil, err
		}
		logPublishError(ctx, "participant", s.Publisher.PublishParticipant(ctx, models.ActionCreated, eventSource(ctx), participant))
		return participant, nil

	default:
		return nil, err
	}
}

// UpdateParticipantCount sets the meeting's participant_count to its stored
// participant rows and returns the count. A missing meeting is left alone.
func (s *ReconciliationService) UpdateParticipantCount(ctx context.Context, meetingID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	unlock := s.meetingLocks.Lock(meetingID)
	defer unlock()

	count, err := s.Repos.Participants.CountParticipants(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	meeting, err := s.Repos.Meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		if errors.Is(err, domain.ErrMeetingNotFound) {
			return count, nil
		}
		return 0, err
	}
	if err := s.Repos.Meetings.SetParticipantCount(ctx, meetingID, count, s.nextUpdatedAt(meeting.UpdatedAt)); err != nil {
		return 0, err
	}
	return count, nil
}

// participantPatch maps one Zoom participant variant onto a patch.
func participantPatch(meetingID string, p models.ZoomParticipant) models.ParticipantPatch {
	return models.ParticipantPatch{
		MeetingID: meetingID,
		UserID:    p.CanonicalUserID(),
		UserName:  utils.NonEmpty(p.CanonicalName()),
		UserEmail: utils.NonEmpty(p.CanonicalEmail()),
		JoinTime:  utils.ParseTime(p.JoinTime),
		LeaveTime: utils.ParseTime(p.LeaveTime),
		Device:    utils.NonEmpty(p.CanonicalDevice()),
		IPAddress: utils.NonEmpty(p.IPAddress),
		Location:  utils.NonEmpty(p.Location),
	}
}

// SyncParticipants pulls the meeting's participants from Zoom and stores them.
// Plan restrictions and unknown meetings yield an empty result with the
// matching status rather than an error.
func (s *ReconciliationService) SyncParticipants(ctx context.Context, meetingID string) (*models.ParticipantSyncResult, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if _, ok := ctx.Value(eventSourceKey{}).(models.EventSource); !ok {
		ctx = WithEventSource(ctx, models.SourceSync)
	}

	fetch, err := s.Zoom.GetParticipants(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	result := &models.ParticipantSyncResult{
		Status:       fetch.Status,
		Participants: []*models.Participant{},
	}
	switch fetch.Status {
	case models.FetchRestricted:
		slog.InfoContext(ctx, "participant data requires a paid zoom account", "meeting_id", meetingID)
	case models.FetchNotFound:
		slog.InfoContext(ctx, "meeting not found or not accessible on zoom", "meeting_id", meetingID)
	}

	for _, zp := range fetch.Participants {
		patch := participantPatch(meetingID, zp)
		if patch.UserID == "" {
			result.Skipped++
			continue
		}
		participant, err := s.UpsertParticipant(ctx, patch)
		if err != nil {
			return nil, err
		}
		result.Participants = append(result.Participants, participant)
	}
	if result.Skipped > 0 {
		slog.WarnContext(ctx, "skipped zoom participants without an identity",
			"meeting_id", meetingID,
			"skipped", result.Skipped,
		)
	}

	count, err := s.UpdateParticipantCount(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	result.ParticipantCount = count
	return result, nil
}

// ListParticipants returns a stored meeting's participants by join time.
func (s *ReconciliationService) ListParticipants(ctx context.Context, meetingID string) ([]*models.Participant, error) {
	details, err := s.GetMeetingDetails(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return details.Participants, nil
}

// GetParticipantStats aggregates the participant durations of a meeting.
func (s *ReconciliationService) GetParticipantStats(ctx context.Context, meetingID string) (*models.ParticipantStats, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.Repos.Participants.ParticipantStats(ctx, meetingID)
}
