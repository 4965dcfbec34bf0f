// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// Meeting is a locally tracked Zoom meeting, keyed by the Zoom meeting id.
type Meeting struct {
	ID               int64      `json:"id" db:"id"`
	MeetingID        string     `json:"meeting_id" db:"meeting_id"`
	Topic            *string    `json:"topic" db:"topic"`
	StartTime        *time.Time `json:"start_time" db:"start_time"`
	EndTime          *time.Time `json:"end_time" db:"end_time"`
	Duration         *int       `json:"duration" db:"duration"` // seconds
	ParticipantCount int        `json:"participant_count" db:"participant_count"`
	HostEmail        *string    `json:"host_email" db:"host_email"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// MeetingPatch names the meeting fields an upsert may set. Nil fields are left untouched.
type MeetingPatch struct {
	MeetingID string
	Topic     *string
	StartTime *time.Time
	EndTime   *time.Time
	Duration  *int
	HostEmail *string
}

// Apply merges the patch onto the meeting. Once both bounds are known the
// duration is their span, so a scheduled length never replaces a measured one.
func (p MeetingPatch) Apply(m *Meeting) {
	if p.Topic != nil {
		m.Topic = p.Topic
	}
	if p.StartTime != nil {
		m.StartTime = p.StartTime
	}
	if p.EndTime != nil {
		m.EndTime = p.EndTime
	}
	if p.HostEmail != nil {
		m.HostEmail = p.HostEmail
	}
	if d := SpanSeconds(m.StartTime, m.EndTime); d != nil {
		m.Duration = d
		return
	}
	if p.Duration != nil && *p.Duration >= 0 {
		m.Duration = p.Duration
	}
}

// MeetingDetails is a meeting together with its participants ordered by join time.
type MeetingDetails struct {
	Meeting
	Participants []*Participant `json:"participants"`
}

// MeetingSyncResult summarizes a full pull of one meeting from Zoom.
type MeetingSyncResult struct {
	Meeting      *Meeting       `json:"meeting"`
	Participants []*Participant `json:"participants"`
	Recordings   []*Recording   `json:"recordings"`
	FetchStatus  FetchStatus    `json:"participants_status"`
	Message      string         `json:"message"`
}

// SpanSeconds returns end - start in whole seconds, or nil when either bound
// is missing or the span is negative.
func SpanSeconds(start, end *time.Time) *int {
	if start == nil || end == nil {
		return nil
	}
	d := end.Sub(*start)
	if d < 0 {
		return nil
	}
	secs := int(d / time.Second)
	return &secs
}
