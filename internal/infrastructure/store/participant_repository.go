// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// ParticipantRepository stores participants keyed by (meeting id, user id).
type ParticipantRepository struct {
	base
}

var _ domain.ParticipantRepository = (*ParticipantRepository)(nil)

// NewParticipantRepository creates a PostgreSQL participant repository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{base{db: db, entity: "participant", table: "participants"}}
}

func (r *ParticipantRepository) GetParticipant(ctx context.Context, meetingID, userID string) (*models.Participant, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("zoom.meeting_id", meetingID))
	defer span.End()

	var participant models.Participant
	err := r.db.GetContext(ctx, &participant,
		`SELECT * FROM participants WHERE meeting_id = $1 AND user_id = $2`, meetingID, userID)
	if err != nil {
		return nil, r.fail(ctx, span, "get", err, domain.ErrParticipantNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return &participant, nil
}

func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant *models.Participant) error {
	ctx, span := r.startSpan(ctx, "insert", attribute.String("zoom.meeting_id", participant.MeetingID))
	defer span.End()

	rows, err := r.db.NamedQueryContext(ctx, `
		INSERT INTO participants (meeting_id, user_id, user_name, user_email, join_time,
		                          leave_time, duration, device, ip_address, location, created_at)
		VALUES (:meeting_id, :user_id, :user_name, :user_email, :join_time,
		        :leave_time, :duration, :device, :ip_address, :location, :created_at)
		RETURNING id`, participant)
	if err != nil {
		return r.fail(ctx, span, "create", err, domain.ErrParticipantNotFound)
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err := rows.Scan(&participant.ID); err != nil {
			return r.fail(ctx, span, "create", err, domain.ErrParticipantNotFound)
		}
	}
	span.SetStatus(codes.Ok, "")
	return rows.Err()
}

func (r *ParticipantRepository) UpdateParticipant(ctx context.Context, participant *models.Participant) error {
	ctx, span := r.startSpan(ctx, "update", attribute.String("zoom.meeting_id", participant.MeetingID))
	defer span.End()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE participants
		SET user_name = :user_name, user_email = :user_email, join_time = :join_time,
		    leave_time = :leave_time, duration = :duration, device = :device,
		    ip_address = :ip_address, location = :location
		WHERE meeting_id = :meeting_id AND user_id = :user_id`, participant)
	if err == nil {
		err = requireRow(res)
	}
	if err != nil {
		return r.fail(ctx, span, "update", err, domain.ErrParticipantNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *ParticipantRepository) ListParticipants(ctx context.Context, meetingID string) ([]*models.Participant, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("zoom.meeting_id", meetingID))
	defer span.End()

	participants := []*models.Participant{}
	err := r.db.SelectContext(ctx, &participants, `
		SELECT * FROM participants
		WHERE meeting_id = $1
		ORDER BY join_time ASC NULLS LAST, id ASC`, meetingID)
	if err != nil {
		return nil, r.fail(ctx, span, "list", err, domain.ErrParticipantNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return participants, nil
}

func (r *ParticipantRepository) CountParticipants(ctx context.Context, meetingID string) (int, error) {
	ctx, span := r.startSpan(ctx, "count", attribute.String("zoom.meeting_id", meetingID))
	defer span.End()

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM participants WHERE meeting_id = $1`, meetingID); err != nil {
		return 0, r.fail(ctx, span, "count", err, domain.ErrParticipantNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// ParticipantStats aggregates non-null durations. COALESCE keeps every
// field at zero when nothing matches.
func (r *ParticipantRepository) ParticipantStats(ctx context.Context, meetingID string) (*models.ParticipantStats, error) {
	ctx, span := r.startSpan(ctx, "aggregate", attribute.String("zoom.meeting_id", meetingID))
	defer span.End()

	var stats models.ParticipantStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT COUNT(id)                         AS total_participants,
		       COALESCE(AVG(duration), 0)::float8 AS avg_duration,
		       COALESCE(MIN(duration), 0)         AS min_duration,
		       COALESCE(MAX(duration), 0)         AS max_duration,
		       COALESCE(SUM(duration), 0)         AS total_duration
		FROM participants
		WHERE meeting_id = $1 AND duration IS NOT NULL`, meetingID)
	if err != nil {
		return nil, r.fail(ctx, span, "aggregate", err, domain.ErrParticipantNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return &stats, nil
}
