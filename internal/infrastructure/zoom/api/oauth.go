// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// OAuthConfig holds the Zoom OAuth app credentials.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// Optional: override https://zoom.us for testing
	BaseURL string
	// Optional: timeout of a token endpoint call
	Timeout   time.Duration
	Transport http.RoundTripper
}

// OAuth runs the authorization code flow against Zoom's OAuth endpoints.
type OAuth struct {
	config *oauth2.Config
	client *http.Client
}

// NewOAuth creates the Zoom OAuth provider.
func NewOAuth(cfg OAuthConfig) *OAuth {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.ZoomOAuthBaseURL
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultZoomRequestTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &OAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/oauth/authorize",
				TokenURL:  base + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
	}
}

// AuthCodeURL returns the Zoom consent page URL carrying state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(o.withClient(ctx), code)
	if err != nil {
		return nil, classifyTokenError("code exchange", err)
	}
	return token, nil
}

// Refresh obtains a new access token from a refresh token. The returned token
// may carry an empty refresh token when Zoom did not rotate it.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, domain.NeedsReauth(errors.New("no refresh token stored"))
	}
	src := o.config.TokenSource(o.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, classifyTokenError("token refresh", err)
	}
	return token, nil
}

func (o *OAuth) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, o.client)
}

// classifyTokenError maps a rejected grant to NeedsReauth. Other failures
// such as network errors stay retryable.
func classifyTokenError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			return domain.NeedsReauth(fmt.Errorf("zoom %s rejected: %w", op, err))
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	return fmt.Errorf("zoom %s failed: %w", op, err)
}
