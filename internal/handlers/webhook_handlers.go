// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/service"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// ZoomWebhookHandler receives Zoom event notifications.
type ZoomWebhookHandler struct {
	webhooks *service.WebhookService
}

func NewZoomWebhookHandler(webhooks *service.WebhookService) *ZoomWebhookHandler {
	return &ZoomWebhookHandler{webhooks: webhooks}
}

// Routes mounts the handler on r.
func (h *ZoomWebhookHandler) Routes(r chi.Router) {
	r.Post(constants.ZoomWebhookPath, h.HandleZoomWebhook)
}

// HandleZoomWebhook verifies and applies one delivery. Processing failures are
// reported without their cause so the listener never leaks internals to Zoom.
func (h *ZoomWebhookHandler) HandleZoomWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, middleware.MaxWebhookBodyBytes))
		if err != nil {
			writeJSON(ctx, w, http.StatusBadRequest, ErrorResponse{Detail: "failed to read request body"})
			return
		}
	}

	resp, err := h.webhooks.HandleWebhook(ctx, body, r.Header.Get(constants.ZoomSignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSignatureInvalid):
			writeJSON(ctx, w, http.StatusUnauthorized, ErrorResponse{Detail: "Invalid webhook signature"})
		case domain.GetErrorType(err) == domain.ErrorTypeValidation:
			writeError(ctx, w, err)
		default:
			writeJSON(ctx, w, http.StatusInternalServerError, ErrorResponse{Detail: "webhook processing failed"})
		}
		return
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
