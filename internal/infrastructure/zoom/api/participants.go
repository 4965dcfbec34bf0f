// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// Participant endpoints, reported as the fetch source.
const (
	SourcePastMeeting = "past_meetings"
	SourceLiveMeeting = "meetings"
	SourceReport      = "report"
)

// maxParticipantPages bounds pagination of the past participants endpoint.
const maxParticipantPages = 50

// GetParticipants returns a meeting's participants, trying the past meeting
// endpoint first. A 404 falls back to the live meeting and then to the
// meeting report. A plan restriction falls back to the report. When neither
// fallback has data the result is empty with a NotFound or Restricted status.
func (c *Client) GetParticipants(ctx context.Context, meetingID string) (*models.ParticipantFetch, error) {
	participants, err := c.pastParticipants(ctx, meetingID)
	if err == nil {
		return &models.ParticipantFetch{Status: models.FetchOK, Source: SourcePastMeeting, Participants: participants}, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil, err
	}

	switch {
	case apiErr.StatusCode == http.StatusNotFound:
		slog.InfoContext(ctx, "past meeting participants not found, trying live meeting",
			"meeting_id", meetingID,
		)
		live, err := c.liveParticipants(ctx, meetingID)
		if err != nil {
			return nil, err
		}
		if len(live) > 0 {
			return &models.ParticipantFetch{Status: models.FetchOK, Source: SourceLiveMeeting, Participants: live}, nil
		}
		report, err := c.reportParticipants(ctx, meetingID)
		if err != nil {
			return nil, err
		}
		if len(report) > 0 {
			return &models.ParticipantFetch{Status: models.FetchOK, Source: SourceReport, Participants: report}, nil
		}
		return &models.ParticipantFetch{Status: models.FetchNotFound, Participants: []models.ZoomParticipant{}}, nil

	case apiErr.PlanRestricted():
		slog.InfoContext(ctx, "past meeting participants require a paid zoom plan, trying meeting report",
			"meeting_id", meetingID,
			"status", apiErr.StatusCode,
		)
		report, err := c.reportParticipants(ctx, meetingID)
		if err != nil {
			return nil, err
		}
		if len(report) > 0 {
			return &models.ParticipantFetch{Status: models.FetchOK, Source: SourceReport, Participants: report}, nil
		}
		return &models.ParticipantFetch{Status: models.FetchRestricted, Participants: []models.ZoomParticipant{}}, nil
	}

	return nil, err
}

// pastParticipants follows next_page_token across the past meeting participant pages.
func (c *Client) pastParticipants(ctx context.Context, meetingID string) ([]models.ZoomParticipant, error) {
	path := fmt.Sprintf("/past_meetings/%s/participants", url.PathEscape(meetingID))
	params := url.Values{"page_size": []string{strconv.Itoa(constants.MaxZoomPageSize)}}

	participants := []models.ZoomParticipant{}
	for page := 0; page < maxParticipantPages; page++ {
		var list models.ZoomParticipantList
		if err := c.Request(ctx, http.MethodGet, path, params, nil, &list); err != nil {
			return nil, err
		}
		participants = append(participants, list.Participants...)
		if list.NextPageToken == "" {
			break
		}
		params.Set("next_page_token", list.NextPageToken)
	}
	return participants, nil
}

// liveParticipants reads the participants block of GET /meetings/{id}. API
// errors count as no data, anything else propagates.
func (c *Client) liveParticipants(ctx context.Context, meetingID string) ([]models.ZoomParticipant, error) {
	meeting, err := c.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, swallowAPIError(ctx, SourceLiveMeeting, meetingID, err)
	}
	return meeting.Participants, nil
}

// reportParticipants reads GET /report/meetings/{id}. API errors count as no
// data, anything else propagates.
func (c *Client) reportParticipants(ctx context.Context, meetingID string) ([]models.ZoomParticipant, error) {
	var report models.ZoomParticipantList
	path := fmt.Sprintf("/report/meetings/%s", url.PathEscape(meetingID))
	if err := c.Request(ctx, http.MethodGet, path, nil, nil, &report); err != nil {
		return nil, swallowAPIError(ctx, SourceReport, meetingID, err)
	}
	return report.Participants, nil
}

func swallowAPIError(ctx context.Context, source, meetingID string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		slog.DebugContext(ctx, "participant fallback returned no data",
			"source", source,
			"meeting_id", meetingID,
			logging.ErrKey, err,
		)
		return nil
	}
	return err
}
