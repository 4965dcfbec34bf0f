// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrMeetingNotFound", ErrMeetingNotFound, "meeting not found"},
		{"ErrParticipantNotFound", ErrParticipantNotFound, "participant not found"},
		{"ErrRecordingNotFound", ErrRecordingNotFound, "recording not found"},
		{"ErrTokenNotFound", ErrTokenNotFound, "oauth token not found"},
		{"ErrInternal", ErrInternal, "internal error"},
		{"ErrServiceUnavailable", ErrServiceUnavailable, "service unavailable"},
		{"ErrValidationFailed", ErrValidationFailed, "validation failed"},
		{"ErrNotAuthenticated", ErrNotAuthenticated, "not authenticated with zoom"},
		{"ErrNeedsReauth", ErrNeedsReauth, "zoom authorization must be renewed"},
		{"ErrSignatureInvalid", ErrSignatureInvalid, "invalid webhook signature"},
		{"ErrDownloadUnavailable", ErrDownloadUnavailable, "recording download unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	errorVars := []error{
		ErrMeetingNotFound,
		ErrParticipantNotFound,
		ErrRecordingNotFound,
		ErrTokenNotFound,
		ErrInternal,
		ErrServiceUnavailable,
		ErrValidationFailed,
		ErrNotAuthenticated,
		ErrNeedsReauth,
		ErrSignatureInvalid,
		ErrDownloadUnavailable,
	}

	for i, err1 := range errorVars {
		for j, err2 := range errorVars {
			if i != j {
				assert.False(t, errors.Is(err1, err2), "%v and %v should be distinct", err1, err2)
			}
		}
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"validation", NewValidationError("bad limit"), ErrorTypeValidation},
		{"not found", NewNotFoundError("missing", ErrMeetingNotFound), ErrorTypeNotFound},
		{"conflict", NewConflictError("dup"), ErrorTypeConflict},
		{"unavailable", NewUnavailableError("db down"), ErrorTypeUnavailable},
		{"unauthorized", NotAuthenticated(), ErrorTypeUnauthorized},
		{"plain error", errors.New("boom"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorType(tt.err))
		})
	}
}

func TestSentinelConstructors(t *testing.T) {
	cause := errors.New("invalid_grant")

	reauth := NeedsReauth(cause)
	assert.ErrorIs(t, reauth, ErrNeedsReauth)
	assert.ErrorIs(t, reauth, cause)
	assert.Equal(t, ErrorTypeUnauthorized, GetErrorType(reauth))

	assert.ErrorIs(t, NotAuthenticated(), ErrNotAuthenticated)
	assert.ErrorIs(t, SignatureInvalid(), ErrSignatureInvalid)

	unavailable := DownloadUnavailable("recording has no download url")
	assert.ErrorIs(t, unavailable, ErrDownloadUnavailable)
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(unavailable))
	assert.Contains(t, unavailable.Error(), "recording has no download url")
}

func TestDomainErrorMessage(t *testing.T) {
	assert.Equal(t, "no cause", NewInternalError("no cause").Error())
	assert.Equal(t, "wrapped: inner", NewInternalError("wrapped", errors.New("inner")).Error())
}
