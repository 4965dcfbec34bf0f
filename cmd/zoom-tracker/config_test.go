// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

func TestParseEnv_Defaults(t *testing.T) {
	for _, name := range []string{"PORT", "DATABASE_URL", "NATS_URL", "FRONTEND_URL", "RECORDINGS_DIR",
		"DOWNLOAD_WORKERS", "ZOOM_REDIRECT_URI", "ZOOM_REQUEST_TIMEOUT", "ZOOM_DOWNLOAD_TIMEOUT"} {
		t.Setenv(name, "")
	}

	env := parseEnv()
	assert.Equal(t, "8000", env.Port)
	assert.Equal(t, "http://localhost:3000", env.FrontendURL)
	assert.Equal(t, constants.DefaultRecordingsDir, env.RecordingsDir)
	assert.Equal(t, constants.DefaultDownloadWorkers, env.DownloadWorkers)
	assert.Equal(t, "http://localhost:8000/auth/zoom/callback", env.Zoom.RedirectURI)
	assert.Equal(t, constants.DefaultZoomRequestTimeout, env.Zoom.RequestTimeout)
	assert.Equal(t, constants.DefaultZoomDownloadTimeout, env.Zoom.DownloadTimeout)
}

func TestEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"unset", "", time.Minute},
		{"duration syntax", "45s", 45 * time.Second},
		{"plain seconds", "90", 90 * time.Second},
		{"invalid", "soon", time.Minute},
		{"negative", "-5s", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_TIMEOUT", tt.value)
			assert.Equal(t, tt.expected, envDuration("TEST_TIMEOUT", time.Minute))
		})
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("TEST_WORKERS", "4")
	assert.Equal(t, 4, envInt("TEST_WORKERS", 2))
	t.Setenv("TEST_WORKERS", "0")
	assert.Equal(t, 2, envInt("TEST_WORKERS", 2))
	t.Setenv("TEST_WORKERS", "many")
	assert.Equal(t, 2, envInt("TEST_WORKERS", 2))
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://tracker.example.com", "http://localhost:3000"}, allowedOrigins("https://tracker.example.com/"))
	assert.Equal(t, []string{"http://localhost:3000"}, allowedOrigins("http://localhost:3000"))
}
