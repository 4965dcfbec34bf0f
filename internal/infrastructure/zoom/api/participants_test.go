// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// zoomStub answers each path with a fixed status and body and records the order of calls.
type zoomStub struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	calls     []string
}

type stubResponse struct {
	status int
	body   string
}

func (s *zoomStub) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.URL.Path)
		s.mu.Unlock()

		resp, ok := s.responses[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}
}

func TestClient_GetParticipants(t *testing.T) {
	const (
		past   = "/past_meetings/123/participants"
		live   = "/meetings/123"
		report = "/report/meetings/123"
	)

	tests := []struct {
		name           string
		responses      map[string]stubResponse
		expectedStatus models.FetchStatus
		expectedSource string
		expectedCount  int
		expectedCalls  []string
		expectErr      bool
	}{
		{
			name: "past meeting participants",
			responses: map[string]stubResponse{
				past: {200, `{"participants":[{"id":"u1","name":"Ann"},{"user_id":"u2"}]}`},
			},
			expectedStatus: models.FetchOK,
			expectedSource: SourcePastMeeting,
			expectedCount:  2,
			expectedCalls:  []string{past},
		},
		{
			name: "404 falls back to live meeting",
			responses: map[string]stubResponse{
				past: {404, `{"code":3001,"message":"Meeting does not exist"}`},
				live: {200, `{"id":123,"participants":[{"id":"u1"}]}`},
			},
			expectedStatus: models.FetchOK,
			expectedSource: SourceLiveMeeting,
			expectedCount:  1,
			expectedCalls:  []string{past, live},
		},
		{
			name: "404 then empty live falls back to report",
			responses: map[string]stubResponse{
				past:   {404, `{}`},
				live:   {200, `{"id":123}`},
				report: {200, `{"participants":[{"user_email":"a@example.com"}]}`},
			},
			expectedStatus: models.FetchOK,
			expectedSource: SourceReport,
			expectedCount:  1,
			expectedCalls:  []string{past, live, report},
		},
		{
			name: "404 everywhere is not found",
			responses: map[string]stubResponse{
				past:   {404, `{}`},
				live:   {404, `{}`},
				report: {404, `{}`},
			},
			expectedStatus: models.FetchNotFound,
			expectedCalls:  []string{past, live, report},
		},
		{
			name: "403 falls back to report",
			responses: map[string]stubResponse{
				past:   {403, `{"message":"forbidden"}`},
				report: {200, `{"participants":[{"id":"u9"}]}`},
			},
			expectedStatus: models.FetchOK,
			expectedSource: SourceReport,
			expectedCount:  1,
			expectedCalls:  []string{past, report},
		},
		{
			name: "paid plan message with empty report is restricted",
			responses: map[string]stubResponse{
				past:   {400, `{"code":200,"message":"Only available for Paid or ZMP account"}`},
				report: {400, `{"message":"Only available for Paid account"}`},
			},
			expectedStatus: models.FetchRestricted,
			expectedCalls:  []string{past, report},
		},
		{
			name: "other errors propagate",
			responses: map[string]stubResponse{
				past: {500, `{"message":"boom"}`},
			},
			expectErr:     true,
			expectedCalls: []string{past},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &zoomStub{responses: tt.responses}
			client := setupClientForTesting(t, stub.handler(t))

			fetch, err := client.GetParticipants(context.Background(), "123")
			assert.Equal(t, tt.expectedCalls, stub.calls)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, fetch.Status)
			assert.Equal(t, tt.expectedSource, fetch.Source)
			assert.Len(t, fetch.Participants, tt.expectedCount)
			assert.NotNil(t, fetch.Participants)
		})
	}
}

func TestClient_GetParticipants_Paginates(t *testing.T) {
	var tokens []string
	client := setupClientForTesting(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "300", r.URL.Query().Get("page_size"))
		token := r.URL.Query().Get("next_page_token")
		tokens = append(tokens, token)
		if token == "" {
			_, _ = w.Write([]byte(`{"next_page_token":"p2","participants":[{"id":"u1"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"next_page_token":"","participants":[{"id":"u2"},{"id":"u3"}]}`))
	})

	fetch, err := client.GetParticipants(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "p2"}, tokens)
	require.Len(t, fetch.Participants, 3)
	assert.Equal(t, "u3", fetch.Participants[2].CanonicalUserID())
}
