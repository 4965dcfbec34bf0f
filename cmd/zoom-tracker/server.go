// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	gorillahandlers "github.com/gorilla/handlers"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// routes are the HTTP handlers mounted on the router.
type routes struct {
	health   *handlers.HealthHandler
	auth     *handlers.AuthHandler
	meetings *handlers.MeetingHandler
	webhooks *handlers.ZoomWebhookHandler
}

// newRouter mounts every handler on a chi router.
func newRouter(rt routes) chi.Router {
	r := chi.NewRouter()
	rt.health.Routes(r)
	rt.auth.Routes(r)
	rt.meetings.Routes(r)
	rt.webhooks.Routes(r)
	return r
}

// allowedOrigins is the frontend plus the local development server.
func allowedOrigins(frontendURL string) []string {
	origins := []string{strings.TrimRight(frontendURL, "/")}
	if origins[0] != "http://localhost:3000" {
		origins = append(origins, "http://localhost:3000")
	}
	return origins
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, env environment, rt routes, gracefulCloseWG *sync.WaitGroup) *http.Server {
	var handler http.Handler = newRouter(rt)

	// Add HTTP middleware
	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	handler = middleware.WebhookBodyCaptureMiddleware()(handler)
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)
	handler = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(allowedOrigins(env.FrontendURL)),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", constants.RequestIDHeader}),
		gorillahandlers.AllowCredentials(),
	)(handler)
	handler = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(panicLogger{}),
	)(handler)
	handler = otelhttp.NewHandler(handler, "zoom-tracker")

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Info("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}

// panicLogger routes recovered handler panics into the structured log.
type panicLogger struct{}

func (panicLogger) Println(v ...any) {
	slog.Error("recovered from handler panic", "panic", v, logging.PriorityCritical())
}
