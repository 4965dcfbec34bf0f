// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the Zoom tracker API. It receives Zoom webhooks, pulls
// meeting data from the Zoom REST API and keeps a local record of meetings,
// participants and recordings.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/zoom/webhook"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/service"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

func main() {
	loadDotEnv()
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry")
		return
	}

	repos, db, err := setupStore(ctx, env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up store")
		_ = otelShutdown(ctx)
		return
	}

	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		closeStore(db)
		_ = otelShutdown(ctx)
		return
	}

	// Initialize services
	tokenManager, zoomClient := setupZoom(ctx, env, repos.Tokens)
	reconciliationService := service.NewReconciliationService(
		repos,
		zoomClient,
		newPublisher(natsConn),
		service.ServiceConfig{
			RecordingsDir:   env.RecordingsDir,
			DownloadWorkers: env.DownloadWorkers,
		},
	)
	validator := webhook.NewZoomWebhookValidator(env.WebhookSecret)
	if !validator.Enabled() {
		slog.Warn("WEBHOOK_SECRET_TOKEN not set, webhook signatures are not verified")
	}
	webhookService := service.NewWebhookService(validator, reconciliationService)

	// Initialize handlers
	httpServer := setupHTTPServer(flags, env, routes{
		health:   handlers.NewHealthHandler(tokenManager, reconciliationService, webhookService),
		auth:     handlers.NewAuthHandler(tokenManager, env.FrontendURL),
		meetings: handlers.NewMeetingHandler(reconciliationService),
		webhooks: handlers.NewZoomWebhookHandler(webhookService),
	}, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, db, otelShutdown, &gracefulCloseWG, cancel)
}

// gracefulShutdown stops accepting requests, drains NATS so queued events are
// flushed, then closes the database and the telemetry pipeline.
func gracefulShutdown(
	httpServer *http.Server,
	natsConn *nats.Conn,
	db io.Closer,
	otelShutdown func(context.Context) error,
	gracefulCloseWG *sync.WaitGroup,
	cancel context.CancelFunc,
) {
	slog.Info("beginning graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
	defer shutdownCancel()

	go func() {
		defer gracefulCloseWG.Done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
	}()

	// Cancelling the root context marks the NATS close as expected.
	cancel()

	if natsConn != nil && !natsConn.IsClosed() && !natsConn.IsDraining() {
		slog.Info("draining NATS connection")
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			os.Exit(1)
		}
	}

	gracefulCloseWG.Wait()

	closeStore(db)
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry")
	}
	slog.Info("graceful shutdown complete")
}

func closeStore(db io.Closer) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.With(logging.ErrKey, err).Error("error closing database")
	}
}
