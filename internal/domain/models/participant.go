// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// Participant is one attendee of a meeting, unique per (meeting id, user id).
type Participant struct {
	ID        int64      `json:"id" db:"id"`
	MeetingID string     `json:"meeting_id" db:"meeting_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	UserName  *string    `json:"user_name" db:"user_name"`
	UserEmail *string    `json:"user_email" db:"user_email"`
	JoinTime  *time.Time `json:"join_time" db:"join_time"`
	LeaveTime *time.Time `json:"leave_time" db:"leave_time"`
	Duration  *int       `json:"duration" db:"duration"` // seconds
	Device    *string    `json:"device" db:"device"`
	IPAddress *string    `json:"ip_address" db:"ip_address"`
	Location  *string    `json:"location" db:"location"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ParticipantPatch names the participant fields an upsert may set.
type ParticipantPatch struct {
	MeetingID string
	UserID    string
	UserName  *string
	UserEmail *string
	JoinTime  *time.Time
	LeaveTime *time.Time
	Device    *string
	IPAddress *string
	Location  *string
}

// Apply merges the patch onto the participant. Duration always follows the
// merged join and leave times, so a leave event only yields a duration when a
// join was recorded earlier.
func (p ParticipantPatch) Apply(pt *Participant) {
	if p.UserName != nil {
		pt.UserName = p.UserName
	}
	if p.UserEmail != nil {
		pt.UserEmail = p.UserEmail
	}
	if p.JoinTime != nil {
		pt.JoinTime = p.JoinTime
	}
	if p.LeaveTime != nil {
		pt.LeaveTime = p.LeaveTime
	}
	if p.Device != nil {
		pt.Device = p.Device
	}
	if p.IPAddress != nil {
		pt.IPAddress = p.IPAddress
	}
	if p.Location != nil {
		pt.Location = p.Location
	}
	pt.Duration = SpanSeconds(pt.JoinTime, pt.LeaveTime)
}

// ParticipantStats aggregates non-null participant durations. Every field is
// zero when nothing matches.
type ParticipantStats struct {
	TotalParticipants int     `json:"total_participants" db:"total_participants"`
	AvgDuration       float64 `json:"avg_duration" db:"avg_duration"`
	MinDuration       int     `json:"min_duration" db:"min_duration"`
	MaxDuration       int     `json:"max_duration" db:"max_duration"`
	TotalDuration     int     `json:"total_duration" db:"total_duration"`
}

// FetchStatus tells why a participant fetch returned what it did.
type FetchStatus string

const (
	// FetchOK means Zoom returned the participant list.
	FetchOK FetchStatus = "ok"
	// FetchRestricted means the account plan does not expose participant data.
	FetchRestricted FetchStatus = "restricted"
	// FetchNotFound means Zoom does not know the meeting or its participants.
	FetchNotFound FetchStatus = "not_found"
)

// ParticipantSyncResult is the outcome of reconciling participants for one meeting.
type ParticipantSyncResult struct {
	Status           FetchStatus    `json:"status"`
	Participants     []*Participant `json:"participants"`
	ParticipantCount int            `json:"participant_count"`
	Skipped          int            `json:"skipped,omitempty"`
}
