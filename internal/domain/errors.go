// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation   ErrorType = iota // Input validation errors (400 Bad Request)
	ErrorTypeNotFound                      // Resource not found errors (404 Not Found)
	ErrorTypeConflict                      // Resource conflict errors (409 Conflict)
	ErrorTypeInternal                      // Internal server errors (500 Internal Server Error)
	ErrorTypeUnavailable                   // Service unavailable errors (503 Service Unavailable)
	ErrorTypeUnauthorized                  // Missing or rejected credentials (401 Unauthorized)
)

// Sentinel errors. Constructors below wrap them so callers can match with errors.Is.
var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRecordingNotFound   = errors.New("recording not found")
	ErrTokenNotFound       = errors.New("oauth token not found")
	ErrInternal            = errors.New("internal error")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrValidationFailed    = errors.New("validation failed")
	ErrNotAuthenticated    = errors.New("not authenticated with zoom")
	ErrNeedsReauth         = errors.New("zoom authorization must be renewed")
	ErrSignatureInvalid    = errors.New("invalid webhook signature")
	ErrDownloadUnavailable = errors.New("recording download unavailable")
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

func NewUnauthorizedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnauthorized, Message: message, Err: errors.Join(err...)}
}

// NotAuthenticated reports that no OAuth token has been stored yet.
func NotAuthenticated() *DomainError {
	return NewUnauthorizedError("connect a zoom account first", ErrNotAuthenticated)
}

// NeedsReauth reports that the stored grant can no longer be refreshed.
func NeedsReauth(cause error) *DomainError {
	return NewUnauthorizedError("zoom token refresh failed", ErrNeedsReauth, cause)
}

// SignatureInvalid reports a webhook whose signature did not match.
func SignatureInvalid() *DomainError {
	return NewUnauthorizedError("webhook rejected", ErrSignatureInvalid)
}

// DownloadUnavailable reports a recording that cannot be fetched.
func DownloadUnavailable(reason string) *DomainError {
	return NewNotFoundError(reason, ErrDownloadUnavailable)
}
