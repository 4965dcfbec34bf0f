// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// GetMeeting retrieves a meeting by its Zoom id.
func (c *Client) GetMeeting(ctx context.Context, meetingID string) (*models.ZoomMeeting, error) {
	var meeting models.ZoomMeeting
	path := fmt.Sprintf("/meetings/%s", url.PathEscape(meetingID))
	if err := c.Request(ctx, http.MethodGet, path, nil, nil, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// ListMeetings lists one page of a user's meetings.
func (c *Client) ListMeetings(ctx context.Context, opts models.ListMeetingsOptions) (*models.ZoomMeetingList, error) {
	userID := opts.UserID
	if userID == "" {
		userID = constants.DefaultZoomUserID
	}

	params := url.Values{}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if opts.NextPageToken != "" {
		params.Set("next_page_token", opts.NextPageToken)
	}

	var list models.ZoomMeetingList
	path := fmt.Sprintf("/users/%s/meetings", url.PathEscape(userID))
	if err := c.Request(ctx, http.MethodGet, path, params, nil, &list); err != nil {
		return nil, err
	}
	if list.Meetings == nil {
		list.Meetings = []models.ZoomMeeting{}
	}
	return &list, nil
}
