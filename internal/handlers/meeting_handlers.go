// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/service"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// MeetingHandler serves the stored meetings and the sync and download actions.
type MeetingHandler struct {
	reconciliation *service.ReconciliationService
}

func NewMeetingHandler(reconciliation *service.ReconciliationService) *MeetingHandler {
	return &MeetingHandler{reconciliation: reconciliation}
}

// Routes mounts the handler on r.
func (h *MeetingHandler) Routes(r chi.Router) {
	r.Route("/api/meetings", func(r chi.Router) {
		r.Get("/", h.ListMeetings)
		r.Get("/zoom/list", h.ListZoomMeetings)
		r.Route("/{meetingID}", func(r chi.Router) {
			r.Use(meetingIDContext)
			r.Get("/", h.GetMeeting)
			r.Post("/sync", h.SyncMeeting)
			r.Get("/participants", h.ListParticipants)
			r.Post("/participants/sync", h.SyncParticipants)
			r.Get("/stats", h.GetStats)
			r.Get("/recordings", h.ListRecordings)
			r.Post("/recordings/sync", h.SyncRecordings)
			r.Post("/recordings/download", h.DownloadAllRecordings)
			r.Post("/recordings/{recordingID}/download", h.DownloadRecording)
		})
	})
}

// meetingIDContext tags the request logs with the meeting being addressed.
func meetingIDContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.AppendCtx(r.Context(), slog.String("meeting_id", chi.URLParam(r, "meetingID")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *MeetingHandler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := queryInt(r, "limit", constants.DefaultListLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	meetings, err := h.reconciliation.ListMeetings(ctx, limit, offset)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"meetings": meetings,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *MeetingHandler) ListZoomMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meetingType := r.URL.Query().Get("meeting_type")
	if meetingType == "" {
		meetingType = constants.ZoomMeetingTypePast
	}
	pageSize, err := queryInt(r, "page_size", constants.DefaultZoomPageSize)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	list, err := h.reconciliation.ListProviderMeetings(ctx, meetingType, pageSize, r.URL.Query().Get("next_page_token"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	message := fmt.Sprintf("No %s meetings found", meetingType)
	if len(list.Meetings) > 0 {
		message = fmt.Sprintf("Found %d %s meetings", len(list.Meetings), meetingType)
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success":         true,
		"meetings":        list.Meetings,
		"total":           len(list.Meetings),
		"next_page_token": list.NextPageToken,
		"message":         message,
	})
}

func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	details, err := h.reconciliation.GetMeetingDetails(ctx, chi.URLParam(r, "meetingID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, details)
}

func (h *MeetingHandler) SyncMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.reconciliation.SyncMeeting(ctx, chi.URLParam(r, "meetingID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success":             true,
		"message":             result.Message,
		"meeting":             result.Meeting,
		"participants_count":  len(result.Participants),
		"recordings_count":    len(result.Recordings),
		"participants_status": result.FetchStatus,
	})
}

func (h *MeetingHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participants, err := h.reconciliation.ListParticipants(ctx, chi.URLParam(r, "meetingID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"participants": participants})
}

func (h *MeetingHandler) SyncParticipants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.reconciliation.SyncParticipants(ctx, chi.URLParam(r, "meetingID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success":           true,
		"status":            result.Status,
		"participants":      result.Participants,
		"participant_count": result.ParticipantCount,
	})
}

func (h *MeetingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.reconciliation.GetParticipantStats(ctx, chi.URLParam(r, "meetingID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, stats)
}

func (h *MeetingHandler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordings, err := h.reconciliation.ListRecordings(ctx, chi.URLParam(r, "meetingID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"recordings": recordings})
}

func (h *MeetingHandler) SyncRecordings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordings, err := h.reconciliation.SyncRecordings(ctx, chi.URLParam(r, "meetingID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"success": true, "recordings": recordings})
}

func (h *MeetingHandler) DownloadRecording(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recording, err := h.reconciliation.DownloadRecording(ctx, chi.URLParam(r, "meetingID"), chi.URLParam(r, "recordingID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Recording downloaded successfully",
		"file_path": recording.FilePath,
	})
}

// DownloadAllRecordings reports partial failures alongside what was downloaded.
func (h *MeetingHandler) DownloadAllRecordings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	downloaded, errs := h.reconciliation.DownloadAllRecordings(ctx, chi.URLParam(r, "meetingID"))
	if len(errs) > 0 {
		slog.WarnContext(ctx, "some recordings failed to download", logging.ErrKey, errors.Join(errs...))
	}
	if downloaded == nil {
		downloaded = []*models.Recording{}
	}
	if len(downloaded) == 0 && len(errs) > 0 {
		writeError(ctx, w, errs[0])
		return
	}

	failures := make([]string, 0, len(errs))
	for _, err := range errs {
		_, detail := errorStatus(err)
		failures = append(failures, detail)
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success":    len(errs) == 0,
		"recordings": downloaded,
		"failed":     failures,
	})
}
