// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package handlers exposes the tracker over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", logging.ErrKey, err)
	}
}

// errorStatus maps an error onto its HTTP status and client-facing detail.
func errorStatus(err error) (int, string) {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Type {
		case domain.ErrorTypeValidation:
			return http.StatusBadRequest, domainErr.Message
		case domain.ErrorTypeUnauthorized:
			return http.StatusUnauthorized, domainErr.Message
		case domain.ErrorTypeNotFound:
			return http.StatusNotFound, domainErr.Message
		case domain.ErrorTypeConflict:
			return http.StatusConflict, domainErr.Message
		case domain.ErrorTypeUnavailable:
			return http.StatusServiceUnavailable, domainErr.Message
		case domain.ErrorTypeInternal:
			return http.StatusInternalServerError, domainErr.Message
		}
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, fmt.Sprintf("Zoom API Error (%d): %s", apiErr.StatusCode, apiErr.Message)
	}

	switch {
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, domain.ErrMeetingNotFound):
		return http.StatusNotFound, "Meeting not found"
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, detail := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "status", status, logging.ErrKey, err)
	} else {
		slog.DebugContext(ctx, "request rejected", "status", status, logging.ErrKey, err)
	}
	writeJSON(ctx, w, status, ErrorResponse{Detail: detail})
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name+" must be an integer", domain.ErrValidationFailed)
	}
	return v, nil
}
