// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

// PaidAccountNote is appended to sync messages when Zoom returned no participants.
const PaidAccountNote = "Note: Participant data requires a paid Zoom account for past meetings."

type eventSourceKey struct{}

// WithEventSource tags ctx with where the change being reconciled came from.
func WithEventSource(ctx context.Context, source models.EventSource) context.Context {
	return context.WithValue(ctx, eventSourceKey{}, source)
}

func eventSource(ctx context.Context) models.EventSource {
	if source, ok := ctx.Value(eventSourceKey{}).(models.EventSource); ok {
		return source
	}
	return models.SourceAPI
}

// ReconciliationService merges meetings, participants and recordings coming
// from webhooks and pulls into the local store. Upserts are serialized per key.
type ReconciliationService struct {
	Repos     domain.Repositories
	Zoom      domain.ZoomAPI
	Publisher domain.EventPublisher
	Config    ServiceConfig

	meetingLocks     *concurrent.KeyedMutex
	participantLocks *concurrent.KeyedMutex
	recordingLocks   *concurrent.KeyedMutex
	downloads        *concurrent.WorkerPool
	now              func() time.Time
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	repos domain.Repositories,
	zoom domain.ZoomAPI,
	publisher domain.EventPublisher,
	config ServiceConfig,
) *ReconciliationService {
	if config.RecordingsDir == "" {
		config.RecordingsDir = constants.DefaultRecordingsDir
	}
	if config.DownloadWorkers <= 0 {
		config.DownloadWorkers = constants.DefaultDownloadWorkers
	}
	return &ReconciliationService{
		Repos:            repos,
		Zoom:             zoom,
		Publisher:        publisher,
		Config:           config,
		meetingLocks:     concurrent.NewKeyedMutex(),
		participantLocks: concurrent.NewKeyedMutex(),
		recordingLocks:   concurrent.NewKeyedMutex(),
		downloads:        concurrent.NewWorkerPool(config.DownloadWorkers),
		now:              clock,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ReconciliationService) ServiceReady() bool {
	return s.Repos.Meetings != nil &&
		s.Repos.Participants != nil &&
		s.Repos.Recordings != nil &&
		s.Zoom != nil &&
		s.Publisher != nil
}

func (s *ReconciliationService) ready(ctx context.Context) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "reconciliation service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}
	return nil
}

// nextUpdatedAt returns the current time, or prev plus one microsecond when
// the clock has not moved past prev, so updated_at strictly increases.
func (s *ReconciliationService) nextUpdatedAt(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

// UpsertMeeting inserts the meeting or merges the patch onto the stored row.
func (s *ReconciliationService) UpsertMeeting(ctx context.Context, patch models.MeetingPatch) (*models.Meeting, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if patch.MeetingID == "" {
		return nil, domain.NewValidationError("meeting id is required", domain.ErrValidationFailed)
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", patch.MeetingID))

	unlock := s.meetingLocks.Lock(patch.MeetingID)
	defer unlock()

	existing, err := s.Repos.Meetings.GetMeeting(ctx, patch.MeetingID)
	switch {
	case err == nil:
		patch.Apply(existing)
		existing.UpdatedAt = s.nextUpdatedAt(existing.UpdatedAt)
		if err := s.Repos.Meetings.UpdateMeeting(ctx, existing); err != nil {
			return nil, err
		}
		slog.DebugContext(ctx, "updated meeting")
		logPublishError(ctx, "meeting", s.Publisher.PublishMeeting(ctx, models.ActionUpdated, eventSource(ctx), existing))
		return existing, nil

	case errors.Is(err, domain.ErrMeetingNotFound):
		now := s.now()
		meeting := &models.Meeting{MeetingID: patch.MeetingID, CreatedAt: now, UpdatedAt: now}
		patch.Apply(meeting)
		if err := s.Repos.Meetings.CreateMeeting(ctx, meeting); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "stored new meeting")
		logPublishError(ctx, "meeting", s.Publisher.PublishMeeting(ctx, models.ActionCreated, eventSource(ctx), meeting))
		return meeting, nil

	default:
		return nil, err
	}
}

// ensureMeeting creates a bare meeting row so children can reference it.
func (s *ReconciliationService) ensureMeeting(ctx context.Context, meetingID string) error {
	if _, err := s.Repos.Meetings.GetMeeting(ctx, meetingID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrMeetingNotFound) {
		return err
	}
	_, err := s.UpsertMeeting(ctx, models.MeetingPatch{MeetingID: meetingID})
	return err
}

// SyncMeeting pulls a meeting with its participants and recordings from Zoom.
func (s *ReconciliationService) SyncMeeting(ctx context.Context, meetingID string) (*models.MeetingSyncResult, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	ctx = WithEventSource(ctx, models.SourceSync)

	zm, err := s.Zoom.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	patch := models.MeetingPatch{
		MeetingID: meetingID,
		Topic:     utils.NonEmpty(zm.Topic),
		StartTime: utils.ParseTime(zm.StartTime),
		HostEmail: utils.NonEmpty(zm.HostEmail),
	}
	// Zoom reports the scheduled length in minutes. It is ignored once the
	// stored meeting has both bounds.
	if zm.Duration > 0 {
		patch.Duration = utils.Ptr(zm.Duration * 60)
	}
	if _, err := s.UpsertMeeting(ctx, patch); err != nil {
		return nil, err
	}

	participants, err := s.SyncParticipants(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	recordings, err := s.SyncRecordings(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	meeting, err := s.Repos.Meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	result := &models.MeetingSyncResult{
		Meeting:      meeting,
		Participants: participants.Participants,
		Recordings:   recordings,
		FetchStatus:  participants.Status,
		Message:      "Meeting data synced successfully",
	}
	if len(participants.Participants) == 0 {
		result.Message += ". " + PaidAccountNote
	}
	slog.InfoContext(ctx, "meeting synced",
		"meeting_id", meetingID,
		"participants", len(participants.Participants),
		"recordings", len(recordings),
		"participants_status", participants.Status,
	)
	return result, nil
}

// ListMeetings returns stored meetings newest first.
func (s *ReconciliationService) ListMeetings(ctx context.Context, limit, offset int) ([]*models.Meeting, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit < 1 || limit > constants.MaxListLimit {
		return nil, domain.NewValidationError("limit must be between 1 and 100", domain.ErrValidationFailed)
	}
	if offset < 0 {
		return nil, domain.NewValidationError("offset must not be negative", domain.ErrValidationFailed)
	}
	return s.Repos.Meetings.ListMeetings(ctx, limit, offset)
}

// GetMeetingDetails returns a stored meeting with its participants.
func (s *ReconciliationService) GetMeetingDetails(ctx context.Context, meetingID string) (*models.MeetingDetails, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	meeting, err := s.Repos.Meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	participants, err := s.Repos.Participants.ListParticipants(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return &models.MeetingDetails{Meeting: *meeting, Participants: participants}, nil
}

// ListProviderMeetings lists one page of the authorized user's meetings on Zoom.
func (s *ReconciliationService) ListProviderMeetings(ctx context.Context, meetingType string, pageSize int, nextPageToken string) (*models.ZoomMeetingList, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	switch meetingType {
	case "":
		meetingType = constants.ZoomMeetingTypePast
	case constants.ZoomMeetingTypePast, constants.ZoomMeetingTypeLive, constants.ZoomMeetingTypeUpcoming:
	default:
		return nil, domain.NewValidationError("meeting_type must be past, live or upcoming", domain.ErrValidationFailed)
	}
	if pageSize == 0 {
		pageSize = constants.DefaultZoomPageSize
	}
	if pageSize < 1 || pageSize > constants.MaxZoomPageSize {
		return nil, domain.NewValidationError("page_size must be between 1 and 300", domain.ErrValidationFailed)
	}

	return s.Zoom.ListMeetings(ctx, models.ListMeetingsOptions{
		UserID:        constants.DefaultZoomUserID,
		Type:          meetingType,
		PageSize:      pageSize,
		NextPageToken: nextPageToken,
	})
}
