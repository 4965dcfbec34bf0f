// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
)

// OAuthProvider runs the authorization code and refresh grants.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// TokenManager hands out a valid Zoom access token, refreshing the stored
// grant when it has expired.
type TokenManager struct {
	Tokens   domain.TokenRepository
	OAuth    OAuthProvider
	ClientID string

	refreshes singleflight.Group
	now       func() time.Time
}

// NewTokenManager creates a TokenManager for the OAuth app identified by clientID.
func NewTokenManager(tokens domain.TokenRepository, oauth OAuthProvider, clientID string) *TokenManager {
	return &TokenManager{
		Tokens:   tokens,
		OAuth:    oauth,
		ClientID: clientID,
		now:      clock,
	}
}

// ServiceReady checks if the service is ready for use.
func (m *TokenManager) ServiceReady() bool {
	return m.Tokens != nil && m.OAuth != nil
}

// Configured reports whether OAuth app credentials were provided.
func (m *TokenManager) Configured() bool {
	return m.ServiceReady() && m.ClientID != ""
}

// AccessToken returns the stored access token, refreshing it first when expired.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	if !m.ServiceReady() {
		slog.ErrorContext(ctx, "token manager not initialized", logging.PriorityCritical())
		return "", domain.ErrServiceUnavailable
	}

	token, err := m.Tokens.LatestToken(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return "", domain.NotAuthenticated()
		}
		return "", err
	}

	if !token.Expired(m.now()) {
		return token.AccessToken, nil
	}

	slog.InfoContext(ctx, "zoom access token expired, refreshing", "expires_at", token.ExpiresAt)
	refreshed, err := m.Refresh(ctx, token.RefreshToken)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh exchanges refreshToken for a new access token and persists it over
// the latest row, creating one if none exists. Concurrent refreshes for the
// same OAuth app share a single provider call.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (*models.OAuthToken, error) {
	if refreshToken == "" {
		return nil, domain.NeedsReauth(errors.New("no refresh token stored"))
	}

	// The shared call outlives any single caller's cancellation.
	detached := context.WithoutCancel(ctx)
	v, err, joined := m.refreshes.Do(m.ClientID, func() (any, error) {
		return m.refresh(detached, refreshToken)
	})
	if joined {
		slog.DebugContext(ctx, "joined in-flight zoom token refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*models.OAuthToken), nil
}

func (m *TokenManager) refresh(ctx context.Context, refreshToken string) (*models.OAuthToken, error) {
	latest, err := m.Tokens.LatestToken(ctx)
	if err != nil && !errors.Is(err, domain.ErrTokenNotFound) {
		return nil, err
	}
	// A flight that finished before this one started has already rotated
	// refreshToken out. Zoom would reject it, so use the stored grant instead.
	if latest != nil && latest.RefreshToken != refreshToken && !latest.Expired(m.now()) {
		slog.DebugContext(ctx, "zoom token already refreshed by an earlier call", "expires_at", latest.ExpiresAt)
		return latest, nil
	}

	grant, err := m.OAuth.Refresh(ctx, refreshToken)
	if err != nil {
		slog.WarnContext(ctx, "zoom token refresh failed", logging.ErrKey, err)
		return nil, err
	}

	if latest != nil {
		applyGrant(latest, grant, refreshToken)
		if err := m.Tokens.UpdateToken(ctx, latest); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "zoom access token refreshed", "expires_at", latest.ExpiresAt)
		return latest, nil
	}

	token := &models.OAuthToken{CreatedAt: m.now()}
	applyGrant(token, grant, refreshToken)
	if err := m.Tokens.CreateToken(ctx, token); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "zoom access token refreshed into a new row", "expires_at", token.ExpiresAt)
	return token, nil
}

// applyGrant copies an OAuth response onto a stored token. Zoom may omit the
// refresh token, in which case the previous one stays valid.
func applyGrant(token *models.OAuthToken, grant *oauth2.Token, previousRefresh string) {
	token.AccessToken = grant.AccessToken
	token.RefreshToken = grant.RefreshToken
	if token.RefreshToken == "" {
		token.RefreshToken = previousRefresh
	}
	token.ExpiresAt = nil
	if !grant.Expiry.IsZero() {
		expiry := grant.Expiry.UTC()
		token.ExpiresAt = &expiry
	}
	token.TokenType = models.DefaultTokenType
	if grant.TokenType != "" {
		token.TokenType = grant.TokenType
	}
}

// AuthorizationURL returns the Zoom consent page URL.
func (m *TokenManager) AuthorizationURL(state string) (string, error) {
	if !m.Configured() {
		return "", domain.NewInternalError("zoom oauth credentials not configured")
	}
	return m.OAuth.AuthCodeURL(state), nil
}

// CompleteAuthorization exchanges an authorization code and stores the grant
// as the new latest token.
func (m *TokenManager) CompleteAuthorization(ctx context.Context, code string) (*models.OAuthToken, error) {
	if !m.Configured() {
		return nil, domain.NewInternalError("zoom oauth credentials not configured")
	}
	if code == "" {
		return nil, domain.NewValidationError("authorization code not provided", domain.ErrValidationFailed)
	}

	grant, err := m.OAuth.Exchange(ctx, code)
	if err != nil {
		slog.WarnContext(ctx, "zoom authorization code exchange failed", logging.ErrKey, err)
		return nil, err
	}

	token := &models.OAuthToken{CreatedAt: m.now()}
	applyGrant(token, grant, "")
	if err := m.Tokens.CreateToken(ctx, token); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "zoom account connected",
		"token_id", token.ID,
		"access_token", logging.Redact(token.AccessToken),
		"expires_at", token.ExpiresAt,
	)
	return token, nil
}

// Status reports whether a usable access token is available.
func (m *TokenManager) Status(ctx context.Context) models.AuthStatus {
	if _, err := m.AccessToken(ctx); err != nil {
		slog.DebugContext(ctx, "no usable zoom token", logging.ErrKey, err)
		return models.AuthStatus{
			Authenticated: false,
			Message:       "No valid access token. Please authenticate at /auth/zoom",
		}
	}
	status := models.AuthStatus{Authenticated: true, Message: "Valid access token found"}
	if token, err := m.Tokens.LatestToken(ctx); err == nil {
		status.ExpiresAt = token.ExpiresAt
	}
	return status
}

// Disconnect removes every stored token.
func (m *TokenManager) Disconnect(ctx context.Context) (int64, error) {
	if !m.ServiceReady() {
		return 0, domain.ErrServiceUnavailable
	}
	n, err := m.Tokens.DeleteAllTokens(ctx)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "zoom account disconnected", "tokens_removed", n)
	return n, nil
}

// TokenSource adapts the manager for oauth2.Transport.
func (m *TokenManager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managedTokenSource{ctx: ctx, manager: m}
}

type managedTokenSource struct {
	ctx     context.Context
	manager *TokenManager
}

func (s *managedTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.manager.AccessToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: access, TokenType: models.DefaultTokenType}, nil
}
