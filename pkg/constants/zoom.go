// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Zoom endpoints and client defaults.
const (
	ZoomAPIBaseURL   = "https://api.zoom.us/v2"
	ZoomOAuthBaseURL = "https://zoom.us"

	DefaultZoomRequestTimeout  = 30 * time.Second
	DefaultZoomDownloadTimeout = 30 * time.Minute

	// DefaultZoomUserID addresses the user that authorized the app.
	DefaultZoomUserID = "me"
)

// Provider meeting list bounds.
const (
	ZoomMeetingTypePast     = "past"
	ZoomMeetingTypeLive     = "live"
	ZoomMeetingTypeUpcoming = "upcoming"

	DefaultZoomPageSize = 30
	MaxZoomPageSize     = 300
)

// Local listing bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Local storage defaults.
const (
	DefaultRecordingsDir   = "recordings"
	DefaultDataDir         = "data"
	DefaultDownloadWorkers = 2
)
