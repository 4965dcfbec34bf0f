// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

// flags are the command line flags for the tracker.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the tracker.
type environment struct {
	Port            string
	DatabaseURL     string
	NatsURL         string
	FrontendURL     string
	RecordingsDir   string
	DownloadWorkers int
	WebhookSecret   string
	Zoom            zoomConfig
}

// zoomConfig holds the Zoom OAuth app and API settings.
type zoomConfig struct {
	ClientID        string
	ClientSecret    string
	AccountID       string
	RedirectURI     string
	APIBaseURL      string
	OAuthBaseURL    string
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
}

// loadDotEnv reads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.With(logging.ErrKey, err).Warn("error reading .env file")
	}
}

// parseFlags parses command line flags for the tracker
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the tracker
func parseEnv() environment {
	return environment{
		Port:            utils.CoalesceString(os.Getenv("PORT"), "8000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		NatsURL:         os.Getenv("NATS_URL"),
		FrontendURL:     utils.CoalesceString(os.Getenv("FRONTEND_URL"), "http://localhost:3000"),
		RecordingsDir:   utils.CoalesceString(os.Getenv("RECORDINGS_DIR"), constants.DefaultRecordingsDir),
		DownloadWorkers: envInt("DOWNLOAD_WORKERS", constants.DefaultDownloadWorkers),
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET_TOKEN"),
		Zoom: zoomConfig{
			ClientID:        os.Getenv("ZOOM_CLIENT_ID"),
			ClientSecret:    os.Getenv("ZOOM_CLIENT_SECRET"),
			AccountID:       os.Getenv("ZOOM_ACCOUNT_ID"),
			RedirectURI:     utils.CoalesceString(os.Getenv("ZOOM_REDIRECT_URI"), "http://localhost:8000"+constants.AuthCallbackPath),
			APIBaseURL:      os.Getenv("ZOOM_API_BASE_URL"),
			OAuthBaseURL:    os.Getenv("ZOOM_OAUTH_BASE_URL"),
			RequestTimeout:  envDuration("ZOOM_REQUEST_TIMEOUT", constants.DefaultZoomRequestTimeout),
			DownloadTimeout: envDuration("ZOOM_DOWNLOAD_TIMEOUT", constants.DefaultZoomDownloadTimeout),
		},
	}
}

func envInt(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Warn("invalid integer, using default")
		return def
	}
	return v
}

// envDuration accepts Go duration syntax or a plain number of seconds.
func envDuration(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	slog.With("name", name, "value", raw).Warn("invalid duration, using default")
	return def
}
