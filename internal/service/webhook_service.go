// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/pkg/utils"
)

// WebhookService verifies Zoom webhook deliveries and applies them to the store.
type WebhookService struct {
	Validator      domain.WebhookValidator
	Reconciliation *ReconciliationService
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(validator domain.WebhookValidator, reconciliation *ReconciliationService) *WebhookService {
	return &WebhookService{
		Validator:      validator,
		Reconciliation: reconciliation,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *WebhookService) ServiceReady() bool {
	return s.Validator != nil && s.Reconciliation != nil && s.Reconciliation.ServiceReady()
}

// HandleWebhook verifies the signature over the raw body and dispatches the
// event. The response is a *models.ZoomURLValidationResponse for validation
// challenges and a *models.WebhookResult otherwise.
func (s *WebhookService) HandleWebhook(ctx context.Context, body []byte, signature string) (any, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "webhook service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if err := s.Validator.ValidateSignature(body, signature); err != nil {
		slog.WarnContext(ctx, "rejected webhook with invalid signature")
		return nil, err
	}

	var event models.ZoomWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, domain.NewValidationError("invalid webhook body", err)
	}
	ctx = logging.AppendCtx(ctx, slog.String("zoom_event", event.Event))
	ctx = WithEventSource(ctx, models.SourceWebhook)

	if event.Event == models.ZoomEventEndpointURLValidation {
		return s.validateEndpoint(ctx, event.Payload)
	}

	handled, err := s.dispatch(ctx, event)
	if err != nil {
		slog.ErrorContext(ctx, "webhook processing failed", logging.ErrKey, err)
		return nil, err
	}
	if !handled {
		slog.DebugContext(ctx, "ignoring webhook event")
	}
	return &models.WebhookResult{Status: "success", Event: event.Event, Ignored: !handled}, nil
}

func (s *WebhookService) validateEndpoint(ctx context.Context, payload models.ZoomWebhookPayload) (*models.ZoomURLValidationResponse, error) {
	if !s.Validator.Enabled() {
		return nil, domain.NewValidationError("webhook secret token is not configured")
	}
	if payload.PlainToken == "" {
		return nil, domain.NewValidationError("plainToken is required")
	}
	slog.InfoContext(ctx, "answering zoom endpoint validation")
	return &models.ZoomURLValidationResponse{
		PlainToken:     payload.PlainToken,
		EncryptedToken: s.Validator.Sign([]byte(payload.PlainToken)),
	}, nil
}

// dispatch applies a known event and reports whether it was one.
func (s *WebhookService) dispatch(ctx context.Context, event models.ZoomWebhookEvent) (bool, error) {
	switch event.Event {
	case models.ZoomEventMeetingStarted:
		return true, s.meetingStarted(ctx, event.Payload)
	case models.ZoomEventMeetingEnded:
		return true, s.meetingEnded(ctx, event.Payload)
	case models.ZoomEventParticipantJoined:
		return true, s.participantJoined(ctx, event.Payload)
	case models.ZoomEventParticipantLeft:
		return true, s.participantLeft(ctx, event.Payload)
	case models.ZoomEventRecordingCompleted:
		return true, s.recordingCompleted(ctx, event.Payload)
	default:
		return false, nil
	}
}

func (s *WebhookService) meetingStarted(ctx context.Context, payload models.ZoomWebhookPayload) error {
	var obj models.ZoomMeetingEventObject
	if err := payload.DecodeObject(&obj); err != nil {
		return domain.NewValidationError("invalid meeting.started payload", err)
	}
	if obj.ID == "" {
		return nil
	}
	_, err := s.Reconciliation.UpsertMeeting(ctx, models.MeetingPatch{
		MeetingID: obj.ID.String(),
		Topic:     utils.NonEmpty(obj.Topic),
		StartTime: utils.ParseTime(obj.StartTime),
		HostEmail: utils.NonEmpty(obj.CanonicalHostEmail()),
	})
	return err
}

// meetingEnded pulls participants and recordings, then stores the end time
// even when a pull failed.
func (s *WebhookService) meetingEnded(ctx context.Context, payload models.ZoomWebhookPayload) error {
	var obj models.ZoomMeetingEventObject
	if err := payload.DecodeObject(&obj); err != nil {
		return domain.NewValidationError("invalid meeting.ended payload", err)
	}
	if obj.ID == "" {
		return nil
	}
	meetingID := obj.ID.String()

	var errs []error
	if _, err := s.Reconciliation.SyncParticipants(ctx, meetingID); err != nil {
		slog.WarnContext(ctx, "participant sync after meeting end failed", "meeting_id", meetingID, logging.ErrKey, err)
		errs = append(errs, err)
	}
	if _, err := s.Reconciliation.SyncRecordings(ctx, meetingID); err != nil {
		slog.WarnContext(ctx, "recording sync after meeting end failed", "meeting_id", meetingID, logging.ErrKey, err)
		errs = append(errs, err)
	}
	if _, err := s.Reconciliation.UpsertMeeting(ctx, models.MeetingPatch{
		MeetingID: meetingID,
		EndTime:   utils.ParseTime(obj.EndTime),
	}); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *WebhookService) decodeParticipantEvent(payload models.ZoomWebhookPayload, event string) (*models.ZoomParticipantEventObject, error) {
	var obj models.ZoomParticipantEventObject
	if err := payload.DecodeObject(&obj); err != nil {
		return nil, domain.NewValidationError("invalid "+event+" payload", err)
	}
	if obj.ID == "" || obj.Participant.Empty() {
		return nil, nil
	}
	return &obj, nil
}

func (s *WebhookService) participantJoined(ctx context.Context, payload models.ZoomWebhookPayload) error {
	obj, err := s.decodeParticipantEvent(payload, models.ZoomEventParticipantJoined)
	if err != nil || obj == nil {
		return err
	}
	return s.storeParticipant(ctx, models.ParticipantPatch{
		MeetingID: obj.ID.String(),
		UserID:    obj.Participant.CanonicalUserID(),
		UserName:  utils.NonEmpty(obj.Participant.UserName),
		UserEmail: utils.NonEmpty(obj.Participant.Email),
		JoinTime:  utils.ParseTime(obj.JoinTimeOr()),
		Device:    utils.NonEmpty(obj.Participant.Device),
		IPAddress: utils.NonEmpty(obj.Participant.IPAddress),
		Location:  utils.NonEmpty(obj.Participant.Location),
	})
}

func (s *WebhookService) participantLeft(ctx context.Context, payload models.ZoomWebhookPayload) error {
	obj, err := s.decodeParticipantEvent(payload, models.ZoomEventParticipantLeft)
	if err != nil || obj == nil {
		return err
	}
	return s.storeParticipant(ctx, models.ParticipantPatch{
		MeetingID: obj.ID.String(),
		UserID:    obj.Participant.CanonicalUserID(),
		LeaveTime: utils.ParseTime(obj.LeaveTimeOr()),
	})
}

func (s *WebhookService) storeParticipant(ctx context.Context, patch models.ParticipantPatch) error {
	if patch.UserID == "" {
		slog.WarnContext(ctx, "participant event without identity", "meeting_id", patch.MeetingID)
		return nil
	}
	if _, err := s.Reconciliation.UpsertParticipant(ctx, patch); err != nil {
		return err
	}
	_, err := s.Reconciliation.UpdateParticipantCount(ctx, patch.MeetingID)
	return err
}

func (s *WebhookService) recordingCompleted(ctx context.Context, payload models.ZoomWebhookPayload) error {
	var obj models.ZoomRecordingEventObject
	if err := payload.DecodeObject(&obj); err != nil {
		return domain.NewValidationError("invalid recording.completed payload", err)
	}
	if obj.ID == "" {
		return nil
	}
	_, err := s.Reconciliation.SyncRecordings(ctx, obj.ID.String())
	return err
}
