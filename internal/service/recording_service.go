// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

const downloadUnavailableReason = "recording not found or download URL not available"

func recordingPatch(meetingID string, f models.ZoomRecordingFile) models.RecordingPatch {
	return models.RecordingPatch{
		MeetingID:      meetingID,
		RecordingID:    f.ID,
		RecordingType:  utils.NonEmpty(f.RecordingType),
		FileSize:       utils.NonZero(f.FileSize),
		FileType:       utils.NonEmpty(f.FileType),
		DownloadURL:    utils.NonEmpty(f.DownloadURL),
		PlayURL:        utils.NonEmpty(f.PlayURL),
		RecordingStart: utils.ParseTime(f.RecordingStart),
		RecordingEnd:   utils.ParseTime(f.RecordingEnd),
	}
}

// upsertRecording merges the patch onto the stored recording. New recordings
// start pending.
func (s *ReconciliationService) upsertRecording(ctx context.Context, patch models.RecordingPatch) (*models.Recording, error) {
	unlock := s.recordingLocks.Lock(patch.RecordingID)
	defer unlock()

	existing, err := s.Repos.Recordings.GetRecording(ctx, patch.RecordingID)
	switch {
	case err == nil:
		patch.Apply(existing)
		if err := s.Repos.Recordings.UpdateRecording(ctx, existing); err != nil {
			return nil, err
		}
		logPublishError(ctx, "recording", s.Publisher.PublishRecording(ctx, models.ActionUpdated, eventSource(ctx), existing))
		return existing, nil

	case errors.Is(err, domain.ErrRecordingNotFound):
		recording := &models.Recording{
			MeetingID:   patch.MeetingID,
			RecordingID: patch.RecordingID,
			CreatedAt:   s.now(),
		}
		patch.Apply(recording)
		if err := s.Repos.Recordings.CreateRecording(ctx, recording); err != nil {
			return nil, err
		}
		logPublishError(ctx, "recording", s.Publisher.PublishRecording(ctx, models.ActionCreated, eventSource(ctx), recording))
		return recording, nil

	default:
		return nil, err
	}
}

// storeRecordingFiles upserts the given Zoom files under meetingID.
func (s *ReconciliationService) storeRecordingFiles(ctx context.Context, meetingID string, files []models.ZoomRecordingFile) ([]*models.Recording, error) {
	recordings := []*models.Recording{}
	if len(files) == 0 {
		return recordings, nil
	}
	if err := s.ensureMeeting(ctx, meetingID); err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.ID == "" {
			slog.WarnContext(ctx, "skipping recording file without id", "meeting_id", meetingID, "file_type", f.FileType)
			continue
		}
		recording, err := s.upsertRecording(ctx, recordingPatch(meetingID, f))
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, recording)
	}
	return recordings, nil
}

// SyncRecordings pulls the meeting's cloud recording files from Zoom and stores them.
func (s *ReconciliationService) SyncRecordings(ctx context.Context, meetingID string) ([]*models.Recording, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if _, ok := ctx.Value(eventSourceKey{}).(models.EventSource); !ok {
		ctx = WithEventSource(ctx, models.SourceSync)
	}

	files, err := s.Zoom.GetRecordings(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	recordings, err := s.storeRecordingFiles(ctx, meetingID, files)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "recordings synced", "meeting_id", meetingID, "recordings", len(recordings))
	return recordings, nil
}

// ListRecordings returns the stored recordings of a meeting.
func (s *ReconciliationService) ListRecordings(ctx context.Context, meetingID string) ([]*models.Recording, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.Repos.Recordings.ListRecordings(ctx, meetingID)
}

// safeSegment turns an identifier into a single path element that cannot
// escape its parent directory.
func safeSegment(id string) string {
	segment := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '=', r == '.':
			return r
		}
		return '_'
	}, id)
	switch segment {
	case "", ".", "..":
		return "_"
	}
	return segment
}

// RecordingPath is where a recording file is stored below root.
func RecordingPath(root string, recording *models.Recording) string {
	ext := models.RecordingExtension(utils.Value(recording.FileType))
	return filepath.Join(root, safeSegment(recording.MeetingID), safeSegment(recording.RecordingID)+"."+ext)
}

// DownloadRecording fetches one recording file to disk and marks it downloaded.
// The file only appears at its final path once fully written.
func (s *ReconciliationService) DownloadRecording(ctx context.Context, meetingID, recordingID string) (*models.Recording, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))
	ctx = logging.AppendCtx(ctx, slog.String("recording_id", recordingID))

	unlock := s.recordingLocks.Lock(recordingID)
	defer unlock()

	recording, err := s.Repos.Recordings.GetRecording(ctx, recordingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordingNotFound) {
			return nil, domain.DownloadUnavailable(downloadUnavailableReason)
		}
		return nil, err
	}
	if recording.MeetingID != meetingID || !recording.Downloadable() {
		return nil, domain.DownloadUnavailable(downloadUnavailableReason)
	}

	path := RecordingPath(s.Config.RecordingsDir, recording)
	if err := s.writeRecording(ctx, path, *recording.DownloadURL); err != nil {
		return nil, err
	}

	recording.Status = models.RecordingStatusDownloaded
	recording.FilePath = utils.Ptr(path)
	if err := s.Repos.Recordings.UpdateRecording(ctx, recording); err != nil {
		// The row still says pending, so the next download rewrites the file.
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.ErrorContext(ctx, "failed to remove unrecorded recording file", logging.ErrKey, rmErr, "path", path)
		}
		slog.ErrorContext(ctx, "failed to mark recording downloaded", logging.ErrKey, err, "path", path)
		return nil, err
	}
	slog.InfoContext(ctx, "recording downloaded", "path", path)
	logPublishError(ctx, "recording", s.Publisher.PublishRecording(ctx, models.ActionDownloaded, eventSource(ctx), recording))
	return recording, nil
}

func (s *ReconciliationService) writeRecording(ctx context.Context, path, downloadURL string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewInternalError("failed to create recordings directory", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.part")
	if err != nil {
		return domain.NewInternalError("failed to create recording file", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err := s.Zoom.DownloadRecording(ctx, downloadURL, tmp)
	if err != nil {
		slog.ErrorContext(ctx, "recording download failed", logging.ErrKey, err)
		return err
	}
	if err = tmp.Close(); err != nil {
		return domain.NewInternalError("failed to write recording file", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return domain.NewInternalError("failed to store recording file", err)
	}
	slog.DebugContext(ctx, "recording written", "bytes", written)
	return nil
}

// DownloadAllRecordings downloads every pending recording of a meeting with
// bounded concurrency. Recordings that did download are returned alongside
// the errors of those that did not.
func (s *ReconciliationService) DownloadAllRecordings(ctx context.Context, meetingID string) ([]*models.Recording, []error) {
	if err := s.ready(ctx); err != nil {
		return nil, []error{err}
	}
	recordings, err := s.Repos.Recordings.ListRecordings(ctx, meetingID)
	if err != nil {
		return nil, []error{err}
	}

	var pending []*models.Recording
	for _, r := range recordings {
		if r.Status != models.RecordingStatusDownloaded && r.Downloadable() {
			pending = append(pending, r)
		}
	}

	results := make([]*models.Recording, len(pending))
	fns := make([]func(context.Context) error, len(pending))
	for i, r := range pending {
		fns[i] = func(ctx context.Context) error {
			downloaded, err := s.DownloadRecording(ctx, meetingID, r.RecordingID)
			if err != nil {
				return fmt.Errorf("recording %s: %w", r.RecordingID, err)
			}
			results[i] = downloaded
			return nil
		}
	}
	errs := s.downloads.RunAll(ctx, fns...)

	downloaded := []*models.Recording{}
	for _, r := range results {
		if r != nil {
			downloaded = append(downloaded, r)
		}
	}
	return downloaded, concurrent.Failed(errs)
}
