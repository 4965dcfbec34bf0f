// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// DefaultTokenType is stored when the provider omits token_type.
const DefaultTokenType = "Bearer"

// OAuthToken is a persisted Zoom grant. Only the most recently created row is used.
type OAuthToken struct {
	ID           int64      `json:"id" db:"id"`
	AccessToken  string     `json:"-" db:"access_token"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at" db:"expires_at"`
	TokenType    string     `json:"token_type" db:"token_type"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Expired reports whether the access token must be refreshed before use.
// A token without an expiry never expires.
func (t *OAuthToken) Expired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return !now.Before(*t.ExpiresAt)
}

// AuthStatus is what the auth status endpoint reports.
type AuthStatus struct {
	Authenticated bool       `json:"authenticated"`
	Message       string     `json:"message"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}
