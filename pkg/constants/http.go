// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// ZoomSignatureHeader carries the v0=<hex> HMAC of a webhook body.
	ZoomSignatureHeader string = "x-zoom-signature"

	// ZoomRequestTimestampHeader is the delivery timestamp Zoom sends with webhooks.
	ZoomRequestTimestampHeader string = "x-zm-request-timestamp"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// HTTP paths with special handling in the middleware chain.
const (
	LivezPath        = "/livez"
	ReadyzPath       = "/readyz"
	HealthPath       = "/health"
	ZoomWebhookPath  = "/webhooks/zoom"
	AuthCallbackPath = "/auth/zoom/callback"
)
