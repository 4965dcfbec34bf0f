// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// GetRecordings lists the cloud recording files of a meeting. A 404 means
// Zoom holds no recordings and yields an empty list.
func (c *Client) GetRecordings(ctx context.Context, meetingID string) ([]models.ZoomRecordingFile, error) {
	var list models.ZoomRecordingList
	path := fmt.Sprintf("/meetings/%s/recordings", url.PathEscape(meetingID))
	err := c.Request(ctx, http.MethodGet, path, nil, nil, &list)
	if err != nil {
		if StatusCode(err) == http.StatusNotFound {
			slog.InfoContext(ctx, "no recordings found for meeting", "meeting_id", meetingID)
			return []models.ZoomRecordingFile{}, nil
		}
		return nil, err
	}
	if list.RecordingFiles == nil {
		return []models.ZoomRecordingFile{}, nil
	}
	return list.RecordingFiles, nil
}

// DownloadRecording streams the file behind downloadURL into w with bearer
// auth. The whole transfer is bounded by the download timeout.
func (c *Client) DownloadRecording(ctx context.Context, downloadURL string, w io.Writer) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.DownloadTimeout)
	defer cancel()

	if _, err := url.ParseRequestURI(downloadURL); err != nil {
		return 0, fmt.Errorf("invalid download url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create download request: %w", err)
	}

	start := time.Now()
	resp, err := c.getAuthenticatedClient(ctx).Do(req)
	if err != nil {
		return 0, c.downloadError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, parseErrorResponse(resp.StatusCode, raw)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, c.downloadError(err)
	}

	slog.InfoContext(ctx, "downloaded zoom recording",
		"bytes", n,
		"duration", time.Since(start).String(),
	)
	return n, nil
}

func (c *Client) downloadError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: "recording download", After: c.config.DownloadTimeout, Err: err}
	}
	return fmt.Errorf("recording download failed: %w", err)
}
