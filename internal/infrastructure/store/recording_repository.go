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

// RecordingRepository stores recording files keyed by the Zoom file id.
type RecordingRepository struct {
	base
}

var _ domain.RecordingRepository = (*RecordingRepository)(nil)

// NewRecordingRepository creates a PostgreSQL recording repository.
func NewRecordingRepository(db *sqlx.DB) *RecordingRepository {
	return &RecordingRepository{base{db: db, entity: "recording", table: "recordings"}}
}

func (r *RecordingRepository) GetRecording(ctx context.Context, recordingID string) (*models.Recording, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("zoom.recording_id", recordingID))
	defer span.End()

	var recording models.Recording
	if err := r.db.GetContext(ctx, &recording, `SELECT * FROM recordings WHERE recording_id = $1`, recordingID); err != nil {
		return nil, r.fail(ctx, span, "get", err, domain.ErrRecordingNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return &recording, nil
}

func (r *RecordingRepository) CreateRecording(ctx context.Context, recording *models.Recording) error {
	ctx, span := r.startSpan(ctx, "insert", attribute.String("zoom.recording_id", recording.RecordingID))
	defer span.End()

	rows, err := r.db.NamedQueryContext(ctx, `
		INSERT INTO recordings (meeting_id, recording_id, recording_type, file_size, file_type,
		                        download_url, play_url, recording_start, recording_end,
		                        file_path, status, created_at)
		VALUES (:meeting_id, :recording_id, :recording_type, :file_size, :file_type,
		        :download_url, :play_url, :recording_start, :recording_end,
		        :file_path, :status, :created_at)
		RETURNING id`, recording)
	if err != nil {
		return r.fail(ctx, span, "create", err, domain.ErrRecordingNotFound)
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err := rows.Scan(&recording.ID); err != nil {
			return r.fail(ctx, span, "create", err, domain.ErrRecordingNotFound)
		}
	}
	span.SetStatus(codes.Ok, "")
	return rows.Err()
}

func (r *RecordingRepository) UpdateRecording(ctx context.Context, recording *models.Recording) error {
	ctx, span := r.startSpan(ctx, "update", attribute.String("zoom.recording_id", recording.RecordingID))
	defer span.End()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE recordings
		SET recording_type = :recording_type, file_size = :file_size, file_type = :file_type,
		    download_url = :download_url, play_url = :play_url,
		    recording_start = :recording_start, recording_end = :recording_end,
		    file_path = :file_path, status = :status
		WHERE recording_id = :recording_id`, recording)
	if err == nil {
		err = requireRow(res)
	}
	if err != nil {
		return r.fail(ctx, span, "update", err, domain.ErrRecordingNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *RecordingRepository) ListRecordings(ctx context.Context, meetingID string) ([]*models.Recording, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("zoom.meeting_id", meetingID))
	defer span.End()

	recordings := []*models.Recording{}
	err := r.db.SelectContext(ctx, &recordings, `
		SELECT * FROM recordings
		WHERE meeting_id = $1
		ORDER BY recording_start ASC NULLS LAST, id ASC`, meetingID)
	if err != nil {
		return nil, r.fail(ctx, span, "list", err, domain.ErrRecordingNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return recordings, nil
}
