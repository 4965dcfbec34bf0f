// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/service"
)

// AuthHandler drives the Zoom OAuth consent flow.
type AuthHandler struct {
	tokens      *service.TokenManager
	frontendURL string
}

func NewAuthHandler(tokens *service.TokenManager, frontendURL string) *AuthHandler {
	return &AuthHandler{
		tokens:      tokens,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Routes mounts the handler on r.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/zoom", h.Authorize)
		r.Get("/zoom/callback", h.Callback)
		r.Get("/status", h.Status)
		r.Post("/disconnect", h.Disconnect)
	})
}

// Authorize returns the Zoom consent URL.
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.tokens.AuthorizationURL(uuid.NewString())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"auth_url": authURL, "redirect": authURL})
}

// Callback stores the grant for the returned code and sends the browser back
// to the frontend.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if _, err := h.tokens.CompleteAuthorization(r.Context(), r.URL.Query().Get("code")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	http.Redirect(w, r, h.frontendURL+"/?auth=success", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.tokens.Status(r.Context()))
}

func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	removed, err := h.tokens.Disconnect(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Successfully disconnected from Zoom. All tokens removed.",
		"tokens_removed": removed,
	})
}
