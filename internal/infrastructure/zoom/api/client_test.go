// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

type staticTokens struct {
	token string
}

func (s staticTokens) TokenSource(context.Context) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.token, TokenType: "Bearer"})
}

type failingTokens struct {
	err error
}

type failingSource struct {
	err error
}

func (f failingSource) Token() (*oauth2.Token, error) { return nil, f.err }

func (f failingTokens) TokenSource(context.Context) oauth2.TokenSource {
	return failingSource(f)
}

// setupClientForTesting returns a client pointed at a test server running handler.
func setupClientForTesting(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Timeout: 2 * time.Second}, staticTokens{token: "test-token"})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name            string
		config          Config
		expectedBaseURL string
		expectedTimeout time.Duration
	}{
		{
			name:            "defaults",
			config:          Config{},
			expectedBaseURL: constants.ZoomAPIBaseURL,
			expectedTimeout: constants.DefaultZoomRequestTimeout,
		},
		{
			name:            "custom base url trims trailing slash",
			config:          Config{BaseURL: "https://custom.zoom.test/v2/", Timeout: 45 * time.Second},
			expectedBaseURL: "https://custom.zoom.test/v2",
			expectedTimeout: 45 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config, staticTokens{})
			require.NotNil(t, client)
			assert.Equal(t, tt.expectedBaseURL, client.config.BaseURL)
			assert.Equal(t, tt.expectedTimeout, client.config.Timeout)
			assert.Equal(t, constants.DefaultZoomDownloadTimeout, client.config.DownloadTimeout)
		})
	}
}

func TestClient_Request(t *testing.T) {
	t.Run("sends bearer token and decodes body", func(t *testing.T) {
		client := setupClientForTesting(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "/meetings/123", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]any{"id": 123, "topic": "Standup"})
		})

		var out models.ZoomMeeting
		err := client.Request(context.Background(), http.MethodGet, "/meetings/123", nil, nil, &out)
		require.NoError(t, err)
		assert.Equal(t, models.FlexibleID("123"), out.ID)
		assert.Equal(t, "Standup", out.Topic)
	})

	t.Run("non-2xx becomes APIError", func(t *testing.T) {
		client := setupClientForTesting(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]any{"code": 300, "message": "Invalid meeting id."})
		})

		err := client.Request(context.Background(), http.MethodGet, "/meetings/x", nil, nil, nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, 300, apiErr.Code)
		assert.Equal(t, "Invalid meeting id.", apiErr.Message)
	})

	t.Run("deadline becomes TimeoutError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()
		client := NewClient(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, staticTokens{token: "t"})

		err := client.Request(context.Background(), http.MethodGet, "/slow", nil, nil, nil)
		var timeoutErr *TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.True(t, timeoutErr.Timeout())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("token errors surface unchanged", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not reach the server")
		}))
		defer server.Close()
		client := NewClient(Config{BaseURL: server.URL}, failingTokens{err: domain.NotAuthenticated()})

		err := client.Request(context.Background(), http.MethodGet, "/meetings/1", nil, nil, nil)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
		planRestricted  bool
	}{
		{"message field", 404, `{"code":3001,"message":"Meeting does not exist"}`, "Meeting does not exist", false},
		{"error field", 401, `{"error":"invalid_token"}`, "invalid_token", false},
		{"plain text", 500, "upstream broke", "upstream broke", false},
		{"empty body", 502, "", http.StatusText(502), false},
		{"forbidden", 403, `{"message":"nope"}`, "nope", true},
		{"paid plan message", 400, `{"message":"Only available for Paid account"}`, "Only available for Paid account", true},
		{"zmp message", 400, `{"message":"ZMP required"}`, "ZMP required", true},
		{"paid on 5xx is not a restriction", 500, `{"message":"Paid"}`, "Paid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := parseErrorResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expectedMessage, apiErr.Message)
			assert.Equal(t, tt.planRestricted, apiErr.PlanRestricted())
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
	assert.Equal(t, 404, StatusCode(&APIError{StatusCode: 404}))
	wrapped := errors.Join(errors.New("ctx"), &APIError{StatusCode: 429})
	assert.Equal(t, 429, StatusCode(wrapped))
}

func TestClient_ListMeetings(t *testing.T) {
	client := setupClientForTesting(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/meetings", r.URL.Path)
		assert.Equal(t, "past", r.URL.Query().Get("type"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.Equal(t, "abc", r.URL.Query().Get("next_page_token"))
		_, _ = w.Write([]byte(`{"page_size":10,"next_page_token":"def","meetings":[{"id":987654321,"topic":"Weekly"}]}`))
	})

	list, err := client.ListMeetings(context.Background(), models.ListMeetingsOptions{
		Type:          "past",
		PageSize:      10,
		NextPageToken: "abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "def", list.NextPageToken)
	require.Len(t, list.Meetings, 1)
	assert.Equal(t, "987654321", list.Meetings[0].ID.String())
}

func TestClient_ListMeetings_EmptyIsNonNil(t *testing.T) {
	client := setupClientForTesting(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	list, err := client.ListMeetings(context.Background(), models.ListMeetingsOptions{})
	require.NoError(t, err)
	assert.NotNil(t, list.Meetings)
	assert.Empty(t, list.Meetings)
}

func TestClient_GetMeeting_EscapesID(t *testing.T) {
	client := setupClientForTesting(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.EscapedPath(), "/meetings/"))
		assert.Equal(t, "/meetings/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"id":"a/b"}`))
	})

	meeting, err := client.GetMeeting(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", meeting.ID.String())
}
