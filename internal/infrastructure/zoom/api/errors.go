// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx answer from Zoom.
type APIError struct {
	StatusCode int
	Code       int    // Zoom's own error code, when present
	Message    string // provider message, or the raw body when it was not JSON
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("zoom API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("zoom API error (status %d): %s", e.StatusCode, e.Message)
}

// PlanRestricted reports whether Zoom refused because the account plan does
// not include the data, which Zoom signals with 403 or a "Paid"/"ZMP" message.
func (e *APIError) PlanRestricted() bool {
	if e.StatusCode == http.StatusForbidden {
		return true
	}
	if e.StatusCode < http.StatusBadRequest || e.StatusCode >= http.StatusInternalServerError {
		return false
	}
	return strings.Contains(e.Body, "Paid") || strings.Contains(e.Body, "ZMP")
}

// TimeoutError is returned when a call exceeds its deadline. Callers may retry.
type TimeoutError struct {
	Op    string
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("zoom request %s timed out after %s", e.Op, e.After)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Timeout marks the error as retryable in the net.Error sense.
func (e *TimeoutError) Timeout() bool { return true }

// StatusCode returns the HTTP status of an *APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// parseErrorResponse builds an APIError, taking message or error from a JSON
// body and falling back to the raw text.
func parseErrorResponse(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}

	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Code = errResp.Code
		switch {
		case errResp.Message != "":
			apiErr.Message = errResp.Message
		case errResp.Error != "":
			apiErr.Message = errResp.Error
		case errResp.Reason != "":
			apiErr.Message = errResp.Reason
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
