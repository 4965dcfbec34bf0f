// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/service"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// Version is reported by the service info endpoint.
var Version = "1.0.0"

// HealthHandler serves the service info, liveness and readiness endpoints.
type HealthHandler struct {
	services []service.Service
}

// NewHealthHandler reports ready once every given service is.
func NewHealthHandler(services ...service.Service) *HealthHandler {
	return &HealthHandler{services: services}
}

// Routes mounts the handler on r.
func (h *HealthHandler) Routes(r chi.Router) {
	r.Get("/", h.Info)
	r.Get(constants.HealthPath, h.Health)
	r.Get(constants.LivezPath, h.Livez)
	r.Get(constants.ReadyzPath, h.Readyz)
}

// Info describes the service and its entry points.
func (h *HealthHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"message": "Zoom Meeting Tracker API",
		"version": Version,
		"endpoints": map[string]string{
			"auth":     "/auth/zoom",
			"meetings": "/api/meetings",
			"webhooks": "/webhooks",
		},
	})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *HealthHandler) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	for _, s := range h.services {
		if s == nil || !s.ServiceReady() {
			http.Error(w, "service not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}
