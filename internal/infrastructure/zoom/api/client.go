// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package api is a thin client for the parts of the Zoom REST API the tracker reads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/constants"
)

// maxErrorBody caps how much of an error response is kept for the APIError.
const maxErrorBody = 64 << 10

// TokenSourceProvider hands out the OAuth token source used for each request.
type TokenSourceProvider interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// Client represents a Zoom API client
type Client struct {
	config Config
	tokens TokenSourceProvider
	base   http.RoundTripper
}

// Config holds the configuration for the Zoom client
type Config struct {
	// Optional: override base URL for testing
	BaseURL string
	// Optional: per-request timeout for REST calls
	Timeout time.Duration
	// Optional: timeout for a whole recording download
	DownloadTimeout time.Duration
	// Optional: override the underlying transport
	Transport http.RoundTripper
}

// Ensure that Client implements domain.ZoomAPI
var _ domain.ZoomAPI = (*Client)(nil)

// NewClient creates a new Zoom API client
func NewClient(config Config, tokens TokenSourceProvider) *Client {
	if config.BaseURL == "" {
		config.BaseURL = constants.ZoomAPIBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = constants.DefaultZoomRequestTimeout
	}
	if config.DownloadTimeout <= 0 {
		config.DownloadTimeout = constants.DefaultZoomDownloadTimeout
	}
	base := config.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		config: config,
		tokens: tokens,
		base:   otelhttp.NewTransport(base),
	}
}

// getAuthenticatedClient returns an HTTP client that attaches the bearer token to every request
func (c *Client) getAuthenticatedClient(ctx context.Context) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   c.base,
			Source: c.tokens.TokenSource(ctx),
		},
	}
}

// Request performs one authenticated call and decodes a 2xx JSON response into out.
// Non-2xx responses are returned as *APIError. There are no retries.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	target := c.config.BaseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := c.createRequest(ctx, method, target, body)
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "making Zoom API request", "method", method, "path", path)

	start := time.Now()
	resp, err := c.getAuthenticatedClient(ctx).Do(req)
	if err != nil {
		return c.transportError(ctx, method, path, time.Since(start), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := parseErrorResponse(resp.StatusCode, raw)
		slog.WarnContext(ctx, "Zoom API error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"zoom_code", apiErr.Code,
			"duration", time.Since(start).String(),
			logging.ErrKey, apiErr,
		)
		return apiErr
	}

	slog.DebugContext(ctx, "Zoom API request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode zoom response for %s %s: %w", method, path, err)
	}
	return nil
}

// createRequest creates a new HTTP request with the given parameters
func (c *Client) createRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// transportError classifies a failure that produced no HTTP response.
func (c *Client) transportError(ctx context.Context, method, path string, elapsed time.Duration, err error) error {
	// Token errors surface unchanged so callers can match the domain sentinels.
	if errors.Is(err, domain.ErrNotAuthenticated) || errors.Is(err, domain.ErrNeedsReauth) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		slog.WarnContext(ctx, "Zoom API request timed out",
			"method", method,
			"path", path,
			"duration", elapsed.String(),
		)
		return &TimeoutError{Op: method + " " + path, After: c.config.Timeout, Err: err}
	}
	slog.ErrorContext(ctx, "Zoom API request failed",
		"method", method,
		"path", path,
		"duration", elapsed.String(),
		logging.ErrKey, err,
	)
	return fmt.Errorf("zoom request %s %s failed: %w", method, path, err)
}
