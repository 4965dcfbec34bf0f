// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects the tracker publishes reconciliation events on.
const (
	// MeetingUpsertedSubject is the subject for stored meeting changes.
	// The subject is of the form: lfx.zoom-tracker.meeting.upserted
	MeetingUpsertedSubject = "lfx.zoom-tracker.meeting.upserted"

	// ParticipantUpsertedSubject is the subject for stored participant changes.
	// The subject is of the form: lfx.zoom-tracker.participant.upserted
	ParticipantUpsertedSubject = "lfx.zoom-tracker.participant.upserted"

	// RecordingUpsertedSubject is the subject for stored recording changes.
	// The subject is of the form: lfx.zoom-tracker.recording.upserted
	RecordingUpsertedSubject = "lfx.zoom-tracker.recording.upserted"

	// RecordingDownloadedSubject is the subject for recordings written to disk.
	// The subject is of the form: lfx.zoom-tracker.recording.downloaded
	RecordingDownloadedSubject = "lfx.zoom-tracker.recording.downloaded"
)

// MessageAction describes what happened to the entity carried by an event.
type MessageAction string

const (
	ActionCreated    MessageAction = "created"
	ActionUpdated    MessageAction = "updated"
	ActionDownloaded MessageAction = "downloaded"
)

// EventSource is where the change that produced an event came from.
type EventSource string

const (
	SourceWebhook EventSource = "webhook"
	SourceSync    EventSource = "sync"
	SourceAPI     EventSource = "api"
)

// ReconciliationEvent is published after an entity is stored.
type ReconciliationEvent struct {
	ID         string         `json:"id"`
	Action     MessageAction  `json:"action"`
	Source     EventSource    `json:"source,omitempty"`
	MeetingID  string         `json:"meeting_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}
