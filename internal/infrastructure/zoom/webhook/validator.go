// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package webhook verifies signed Zoom webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
)

// SignaturePrefix is the version tag in front of the hex digest.
const SignaturePrefix = "v0="

// ZoomWebhookValidator handles validation of Zoom webhook signatures
type ZoomWebhookValidator struct {
	secretToken []byte
}

// Ensure that ZoomWebhookValidator implements domain.WebhookValidator
var _ domain.WebhookValidator = (*ZoomWebhookValidator)(nil)

// NewZoomWebhookValidator creates a new Zoom webhook validator. An empty
// secret disables verification.
func NewZoomWebhookValidator(secretToken string) *ZoomWebhookValidator {
	return &ZoomWebhookValidator{
		secretToken: []byte(strings.TrimSpace(secretToken)),
	}
}

// Enabled reports whether a secret is configured.
func (v *ZoomWebhookValidator) Enabled() bool {
	return len(v.secretToken) > 0
}

// Sign returns the hex HMAC-SHA256 of data under the secret.
func (v *ZoomWebhookValidator) Sign(data []byte) string {
	h := hmac.New(sha256.New, v.secretToken)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateSignature checks signature against the HMAC of the raw body. With
// no secret configured every payload is accepted.
func (v *ZoomWebhookValidator) ValidateSignature(body []byte, signature string) error {
	if !v.Enabled() {
		return nil
	}

	signature = strings.TrimSpace(signature)
	if !strings.HasPrefix(signature, SignaturePrefix) {
		slog.Warn("zoom webhook signature missing or malformed")
		return domain.SignatureInvalid()
	}

	expected := SignaturePrefix + v.Sign(body)

	// Compare signatures using constant-time comparison
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		slog.Warn("zoom webhook signature does not match expected signature")
		return domain.SignatureInvalid()
	}

	return nil
}
