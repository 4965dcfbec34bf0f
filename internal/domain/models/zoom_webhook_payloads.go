// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

// Zoom webhook event names the tracker understands.
const (
	ZoomEventEndpointURLValidation = "endpoint.url_validation"
	ZoomEventMeetingStarted        = "meeting.started"
	ZoomEventMeetingEnded          = "meeting.ended"
	ZoomEventParticipantJoined     = "meeting.participant_joined"
	ZoomEventParticipantLeft       = "meeting.participant_left"
	ZoomEventRecordingCompleted    = "recording.completed"
)

// ZoomWebhookEvent is the envelope of every Zoom webhook delivery.
type ZoomWebhookEvent struct {
	Event   string             `json:"event"`
	EventTS int64              `json:"event_ts"`
	Payload ZoomWebhookPayload `json:"payload"`
}

// ZoomWebhookPayload holds the event object. PlainToken is only set for
// endpoint.url_validation.
type ZoomWebhookPayload struct {
	AccountID  string          `json:"account_id"`
	PlainToken string          `json:"plainToken"`
	Object     json.RawMessage `json:"object"`
}

// DecodeObject unmarshals the payload object into v.
func (p ZoomWebhookPayload) DecodeObject(v any) error {
	if len(p.Object) == 0 {
		return fmt.Errorf("webhook payload has no object")
	}
	if err := json.Unmarshal(p.Object, v); err != nil {
		return fmt.Errorf("failed to decode webhook object: %w", err)
	}
	return nil
}

// ZoomWebhookHost is the host block some meeting events carry.
type ZoomWebhookHost struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ZoomMeetingEventObject is the object of meeting.started and meeting.ended.
type ZoomMeetingEventObject struct {
	ID        FlexibleID      `json:"id"`
	UUID      string          `json:"uuid"`
	HostID    string          `json:"host_id"`
	HostEmail string          `json:"host_email"`
	Host      ZoomWebhookHost `json:"host"`
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone"`
}

// CanonicalHostEmail prefers host.email and falls back to host_email.
func (o ZoomMeetingEventObject) CanonicalHostEmail() string {
	return utils.CoalesceString(o.Host.Email, o.HostEmail)
}

// ZoomParticipantEventObject is the object of the participant events.
type ZoomParticipantEventObject struct {
	ID          FlexibleID             `json:"id"`
	UUID        string                 `json:"uuid"`
	HostID      string                 `json:"host_id"`
	Topic       string                 `json:"topic"`
	StartTime   string                 `json:"start_time"`
	JoinTime    string                 `json:"join_time"`
	LeaveTime   string                 `json:"leave_time"`
	Participant ZoomWebhookParticipant `json:"participant"`
}

// ZoomWebhookParticipant is the participant block of a participant event.
type ZoomWebhookParticipant struct {
	UserID            string `json:"user_id"`
	ID                string `json:"id"`
	ParticipantUserID string `json:"participant_user_id"`
	UserName          string `json:"user_name"`
	Email             string `json:"email"`
	JoinTime          string `json:"join_time"`
	LeaveTime         string `json:"leave_time"`
	LeaveReason       string `json:"leave_reason"`
	IPAddress         string `json:"ip_address"`
	Location          string `json:"location"`
	Device            string `json:"device"`
}

// CanonicalUserID picks the same identity the REST participant lists use.
func (p ZoomWebhookParticipant) CanonicalUserID() string {
	return utils.CoalesceString(p.UserID, p.ID, p.ParticipantUserID, p.Email)
}

// Empty reports whether the event carried no participant block at all.
func (p ZoomWebhookParticipant) Empty() bool {
	return p == ZoomWebhookParticipant{}
}

// JoinTimeOr returns the participant join time, falling back to the object level one.
func (o ZoomParticipantEventObject) JoinTimeOr() string {
	return utils.CoalesceString(o.Participant.JoinTime, o.JoinTime)
}

// LeaveTimeOr returns the participant leave time, falling back to the object level one.
func (o ZoomParticipantEventObject) LeaveTimeOr() string {
	return utils.CoalesceString(o.Participant.LeaveTime, o.LeaveTime)
}

// ZoomRecordingEventObject is the object of recording.completed.
type ZoomRecordingEventObject struct {
	ID             FlexibleID          `json:"id"`
	UUID           string              `json:"uuid"`
	HostEmail      string              `json:"host_email"`
	Topic          string              `json:"topic"`
	RecordingFiles []ZoomRecordingFile `json:"recording_files"`
}

// ZoomURLValidationResponse answers Zoom's endpoint.url_validation challenge.
type ZoomURLValidationResponse struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// WebhookResult is the body returned for a processed webhook.
type WebhookResult struct {
	Status  string `json:"status"`
	Event   string `json:"event,omitempty"`
	Ignored bool   `json:"ignored,omitempty"`
}
