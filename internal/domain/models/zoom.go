// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

// FlexibleID accepts a Zoom identifier encoded either as a JSON number or a
// JSON string. Zoom's REST API sends meeting ids as numbers while webhook
// events often send them as strings.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("zoom id must be a string or number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexibleID(n.String())
	return nil
}

// String returns the id as text.
func (f FlexibleID) String() string {
	return string(f)
}

// ZoomMeeting is the subset of GET /meetings/{id} the tracker reads.
type ZoomMeeting struct {
	ID           FlexibleID        `json:"id"`
	UUID         string            `json:"uuid"`
	HostID       string            `json:"host_id"`
	HostEmail    string            `json:"host_email"`
	Topic        string            `json:"topic"`
	Type         int               `json:"type"`
	Status       string            `json:"status"`
	StartTime    string            `json:"start_time"`
	Duration     int               `json:"duration"` // minutes, as scheduled
	Timezone     string            `json:"timezone"`
	Participants []ZoomParticipant `json:"participants,omitempty"`
}

// ZoomMeetingList is a page of GET /users/{id}/meetings.
type ZoomMeetingList struct {
	PageSize      int           `json:"page_size"`
	TotalRecords  int           `json:"total_records"`
	NextPageToken string        `json:"next_page_token"`
	Meetings      []ZoomMeeting `json:"meetings"`
}

// ZoomParticipant covers the field variants used by the past meeting,
// live meeting and report endpoints.
type ZoomParticipant struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	ParticipantUserID string   `json:"participant_user_id"`
	Name              string   `json:"name"`
	UserName          string   `json:"user_name"`
	UserEmail         string   `json:"user_email"`
	Email             string   `json:"email"`
	JoinTime          string   `json:"join_time"`
	LeaveTime         string   `json:"leave_time"`
	Duration          int      `json:"duration"`
	Device            string   `json:"device"`
	Devices           []string `json:"devices"`
	IPAddress         string   `json:"ip_address"`
	Location          string   `json:"location"`
}

// CanonicalUserID picks the stable participant identity across variants.
func (p ZoomParticipant) CanonicalUserID() string {
	return utils.CoalesceString(p.UserID, p.ID, p.ParticipantUserID, p.UserEmail, p.Email)
}

// CanonicalName picks the display name across variants.
func (p ZoomParticipant) CanonicalName() string {
	return utils.CoalesceString(p.Name, p.UserName)
}

// CanonicalEmail picks the email across variants.
func (p ZoomParticipant) CanonicalEmail() string {
	return utils.CoalesceString(p.UserEmail, p.Email)
}

// CanonicalDevice returns device, or the devices list joined with ", ".
func (p ZoomParticipant) CanonicalDevice() string {
	if p.Device != "" {
		return p.Device
	}
	return strings.Join(p.Devices, ", ")
}

// ZoomParticipantList is the response of the participant endpoints.
type ZoomParticipantList struct {
	PageSize      int               `json:"page_size"`
	TotalRecords  int               `json:"total_records"`
	NextPageToken string            `json:"next_page_token"`
	Participants  []ZoomParticipant `json:"participants"`
}

// ZoomRecordingFile is one entry of recording_files.
type ZoomRecordingFile struct {
	ID             string `json:"id"`
	MeetingID      string `json:"meeting_id"`
	RecordingStart string `json:"recording_start"`
	RecordingEnd   string `json:"recording_end"`
	FileType       string `json:"file_type"`
	FileExtension  string `json:"file_extension"`
	FileSize       int64  `json:"file_size"`
	PlayURL        string `json:"play_url"`
	DownloadURL    string `json:"download_url"`
	Status         string `json:"status"`
	RecordingType  string `json:"recording_type"`
}

// ZoomRecordingList is the response of GET /meetings/{id}/recordings.
type ZoomRecordingList struct {
	UUID           string              `json:"uuid"`
	ID             FlexibleID          `json:"id"`
	HostEmail      string              `json:"host_email"`
	Topic          string              `json:"topic"`
	StartTime      string              `json:"start_time"`
	Duration       int                 `json:"duration"`
	TotalSize      int64               `json:"total_size"`
	RecordingCount int                 `json:"recording_count"`
	RecordingFiles []ZoomRecordingFile `json:"recording_files"`
}

// ListMeetingsOptions selects a page of GET /users/{id}/meetings.
type ListMeetingsOptions struct {
	UserID        string
	Type          string
	PageSize      int
	NextPageToken string
}

// ParticipantFetch is the participant list together with how it was obtained.
type ParticipantFetch struct {
	Status       FetchStatus
	Source       string // endpoint that produced the list
	Participants []ZoomParticipant
}
