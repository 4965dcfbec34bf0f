// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service holds the token lifecycle, reconciliation and webhook logic.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
)

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// RecordingsDir is the root of the downloaded recording tree.
	RecordingsDir string
	// DownloadWorkers bounds concurrent downloads in DownloadAllRecordings.
	DownloadWorkers int
}

// clock returns UTC wall time truncated to the precision PostgreSQL keeps.
func clock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// logPublishError records a failed event publish. Publishing never fails the caller.
func logPublishError(ctx context.Context, entity string, err error) {
	if err != nil {
		slog.WarnContext(ctx, "failed to publish reconciliation event",
			"entity", entity,
			logging.ErrKey, err,
		)
	}
}
