// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// MeetingRepository stores meetings keyed by the Zoom meeting id.
type MeetingRepository struct {
	base
}

var _ domain.MeetingRepository = (*MeetingRepository)(nil)

// NewMeetingRepository creates a PostgreSQL meeting repository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{base{db: db, entity: "meeting", table: "meetings"}}
}

func (r *MeetingRepository) GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("zoom.meeting_id", meetingID))
	defer span.End()

	var meeting models.Meeting
	if err := r.db.GetContext(ctx, &meeting, `SELECT * FROM meetings WHERE meeting_id = $1`, meetingID); err != nil {
		return nil, r.fail(ctx, span, "get", err, domain.ErrMeetingNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return &meeting, nil
}

func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	ctx, span := r.startSpan(ctx, "insert", attribute.String("zoom.meeting_id", meeting.MeetingID))
	defer span.End()

	rows, err := r.db.NamedQueryContext(ctx, `
		INSERT INTO meetings (meeting_id, topic, start_time, end_time, duration,
		                      participant_count, host_email, created_at, updated_at)
		VALUES (:meeting_id, :topic, :start_time, :end_time, :duration,
		        :participant_count, :host_email, :created_at, :updated_at)
		RETURNING id`, meeting)
	if err != nil {
		return r.fail(ctx, span, "create", err, domain.ErrMeetingNotFound)
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err := rows.Scan(&meeting.ID); err != nil {
			return r.fail(ctx, span, "create", err, domain.ErrMeetingNotFound)
		}
	}
	span.SetStatus(codes.Ok, "")
	return rows.Err()
}

func (r *MeetingRepository) UpdateMeeting(ctx context.Context, meeting *models.Meeting) error {
	ctx, span := r.startSpan(ctx, "update", attribute.String("zoom.meeting_id", meeting.MeetingID))
	defer span.End()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE meetings
		SET topic = :topic, start_time = :start_time, end_time = :end_time,
		    duration = :duration, participant_count = :participant_count,
		    host_email = :host_email, updated_at = :updated_at
		WHERE meeting_id = :meeting_id`, meeting)
	if err == nil {
		err = requireRow(res)
	}
	if err != nil {
		return r.fail(ctx, span, "update", err, domain.ErrMeetingNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *MeetingRepository) ListMeetings(ctx context.Context, limit, offset int) ([]*models.Meeting, error) {
	ctx, span := r.startSpan(ctx, "select",
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
	)
	defer span.End()

	meetings := []*models.Meeting{}
	err := r.db.SelectContext(ctx, &meetings, `
		SELECT * FROM meetings
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, r.fail(ctx, span, "list", err, domain.ErrMeetingNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return meetings, nil
}

func (r *MeetingRepository) SetParticipantCount(ctx context.Context, meetingID string, count int, updatedAt time.Time) error {
	ctx, span := r.startSpan(ctx, "update",
		attribute.String("zoom.meeting_id", meetingID),
		attribute.Int("participant_count", count),
	)
	defer span.End()

	res, err := r.db.ExecContext(ctx,
		`UPDATE meetings SET participant_count = $2, updated_at = $3 WHERE meeting_id = $1`,
		meetingID, count, updatedAt)
	if err == nil {
		err = requireRow(res)
	}
	if err != nil {
		return r.fail(ctx, span, "update", err, domain.ErrMeetingNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
