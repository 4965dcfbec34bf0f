// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/store/memory"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/service"
)

const gracefulShutdownSeconds = 25

// setupStore connects to PostgreSQL and applies pending migrations. Without
// DATABASE_URL the tracker runs on an in-memory store that is lost on exit.
func setupStore(ctx context.Context, env environment) (domain.Repositories, io.Closer, error) {
	if env.DatabaseURL == "" {
		slog.WarnContext(ctx, "DATABASE_URL not set, using in-memory store")
		return memory.New().Repositories(), nil, nil
	}

	db, err := store.Open(ctx, env.DatabaseURL)
	if err != nil {
		return domain.Repositories{}, nil, err
	}
	if err := store.Migrate(db.DB, store.MigrateUp); err != nil {
		_ = db.Close()
		return domain.Repositories{}, nil, err
	}
	return store.NewRepositories(db), db, nil
}

// setupNATS connects to NATS when NATS_URL is set. The returned connection
// is nil when event publishing is disabled.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	if env.NatsURL == "" {
		slog.InfoContext(ctx, "NATS_URL not set, reconciliation events are disabled")
		return nil, nil
	}

	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Name("lfx-v2-zoom-tracker"),
		nats.DrainTimeout(gracefulShutdownSeconds*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if ctx.Err() != nil {
				// Expected during graceful shutdown.
				gracefulCloseWG.Done()
				return
			}
			slog.Error("NATS max-reconnects exhausted; connection closed", logging.PriorityCritical())
			gracefulCloseWG.Done()
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("error creating NATS client: %w", err)
	}
	slog.InfoContext(ctx, "connected to NATS", "url", natsConn.ConnectedUrlRedacted())
	return natsConn, nil
}

// newPublisher publishes over NATS when connected and drops events otherwise.
func newPublisher(natsConn *nats.Conn) domain.EventPublisher {
	if natsConn == nil {
		return messaging.NewNoopPublisher()
	}
	return messaging.NewMessageBuilder(natsConn)
}

// setupZoom builds the token manager and the API client that draws tokens from it.
func setupZoom(ctx context.Context, env environment, tokens domain.TokenRepository) (*service.TokenManager, *api.Client) {
	if env.Zoom.ClientID == "" || env.Zoom.ClientSecret == "" {
		slog.WarnContext(ctx, "ZOOM_CLIENT_ID or ZOOM_CLIENT_SECRET not set, zoom authorization is disabled")
	}
	oauth := api.NewOAuth(api.OAuthConfig{
		ClientID:     env.Zoom.ClientID,
		ClientSecret: env.Zoom.ClientSecret,
		RedirectURI:  env.Zoom.RedirectURI,
		BaseURL:      env.Zoom.OAuthBaseURL,
		Timeout:      env.Zoom.RequestTimeout,
	})
	tokenManager := service.NewTokenManager(tokens, oauth, env.Zoom.ClientID)
	client := api.NewClient(api.Config{
		BaseURL:         env.Zoom.APIBaseURL,
		Timeout:         env.Zoom.RequestTimeout,
		DownloadTimeout: env.Zoom.DownloadTimeout,
	}, tokenManager)

	slog.InfoContext(ctx, "zoom integration configured",
		"account_id", env.Zoom.AccountID,
		"redirect_uri", env.Zoom.RedirectURI,
	)
	return tokenManager, client
}
