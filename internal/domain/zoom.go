// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"io"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// ZoomAPI is the subset of the Zoom REST API the reconciliation flows use.
type ZoomAPI interface {
	GetMeeting(ctx context.Context, meetingID string) (*models.ZoomMeeting, error)
	ListMeetings(ctx context.Context, opts models.ListMeetingsOptions) (*models.ZoomMeetingList, error)
	// GetParticipants never fails for plan restrictions or unknown meetings;
	// those are reported through the fetch status.
	GetParticipants(ctx context.Context, meetingID string) (*models.ParticipantFetch, error)
	// GetRecordings returns an empty list when Zoom has no recordings for the meeting.
	GetRecordings(ctx context.Context, meetingID string) ([]models.ZoomRecordingFile, error)
	// DownloadRecording streams the file behind downloadURL into w.
	DownloadRecording(ctx context.Context, downloadURL string, w io.Writer) (int64, error)
}

// WebhookValidator checks Zoom webhook signatures.
type WebhookValidator interface {
	// ValidateSignature returns an error when the signature does not match body.
	ValidateSignature(body []byte, signature string) error
	// Enabled reports whether a secret is configured.
	Enabled() bool
	// Sign returns the hex HMAC of data, used for endpoint validation challenges.
	Sign(data []byte) string
}
