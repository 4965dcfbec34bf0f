// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FlexibleID
		wantErr  bool
	}{
		{"number", `{"id": 85746065432}`, "85746065432", false},
		{"string", `{"id": "85746065432"}`, "85746065432", false},
		{"padded string", `{"id": " 42 "}`, "42", false},
		{"null", `{"id": null}`, "", false},
		{"missing", `{}`, "", false},
		{"object", `{"id": {"x": 1}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				ID FlexibleID `json:"id"`
			}
			err := json.Unmarshal([]byte(tt.input), &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v.ID)
		})
	}
}

func TestZoomParticipantCanonicalFields(t *testing.T) {
	tests := []struct {
		name    string
		p       ZoomParticipant
		userID  string
		display string
		email   string
		device  string
	}{
		{
			name:   "past meeting variant",
			p:      ZoomParticipant{ID: "abc", UserID: "16778240", Name: "Ada", UserEmail: "ada@example.com", Device: "Mac"},
			userID: "16778240", display: "Ada", email: "ada@example.com", device: "Mac",
		},
		{
			name:   "report variant",
			p:      ZoomParticipant{ID: "abc", UserName: "Grace", Email: "grace@example.com", Devices: []string{"Windows", "Android"}},
			userID: "abc", display: "Grace", email: "grace@example.com", device: "Windows, Android",
		},
		{
			name:   "email only identity",
			p:      ZoomParticipant{Email: "guest@example.com"},
			userID: "guest@example.com", email: "guest@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.userID, tt.p.CanonicalUserID())
			assert.Equal(t, tt.display, tt.p.CanonicalName())
			assert.Equal(t, tt.email, tt.p.CanonicalEmail())
			assert.Equal(t, tt.device, tt.p.CanonicalDevice())
		})
	}
}

func TestZoomWebhookEventDecode(t *testing.T) {
	body := `{
		"event": "meeting.participant_joined",
		"event_ts": 1704103200000,
		"payload": {
			"account_id": "acct",
			"object": {
				"id": 85746065432,
				"topic": "Weekly sync",
				"participant": {
					"user_id": "16778240",
					"user_name": "Ada",
					"email": "ada@example.com",
					"join_time": "2024-01-01T10:00:00Z"
				}
			}
		}
	}`

	var event ZoomWebhookEvent
	require.NoError(t, json.Unmarshal([]byte(body), &event))
	assert.Equal(t, ZoomEventParticipantJoined, event.Event)

	var obj ZoomParticipantEventObject
	require.NoError(t, event.Payload.DecodeObject(&obj))
	assert.Equal(t, "85746065432", obj.ID.String())
	assert.Equal(t, "16778240", obj.Participant.CanonicalUserID())
	assert.Equal(t, "2024-01-01T10:00:00Z", obj.JoinTimeOr())
	assert.False(t, obj.Participant.Empty())

	var empty ZoomWebhookPayload
	assert.Error(t, empty.DecodeObject(&obj))
}

func TestZoomMeetingEventObjectHostEmail(t *testing.T) {
	assert.Equal(t, "a@example.com", ZoomMeetingEventObject{Host: ZoomWebhookHost{Email: "a@example.com"}, HostEmail: "b@example.com"}.CanonicalHostEmail())
	assert.Equal(t, "b@example.com", ZoomMeetingEventObject{HostEmail: "b@example.com"}.CanonicalHostEmail())
}
