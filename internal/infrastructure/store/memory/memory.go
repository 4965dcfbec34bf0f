// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package memory is an in-process implementation of the repositories, used
// when no database is configured and in tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

type participantKey struct {
	meetingID string
	userID    string
}

// Store holds every entity behind one lock. Values are copied in and out so
// callers never share memory with the store.
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	tokens       []models.OAuthToken
	meetings     map[string]models.Meeting
	participants map[participantKey]models.Participant
	recordings   map[string]models.Recording
}

var (
	_ domain.TokenRepository       = (*Store)(nil)
	_ domain.MeetingRepository     = (*Store)(nil)
	_ domain.ParticipantRepository = (*Store)(nil)
	_ domain.RecordingRepository   = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		meetings:     make(map[string]models.Meeting),
		participants: make(map[participantKey]models.Participant),
		recordings:   make(map[string]models.Recording),
	}
}

// Repositories exposes the store through the domain contracts.
func (s *Store) Repositories() domain.Repositories {
	return domain.Repositories{Tokens: s, Meetings: s, Participants: s, Recordings: s}
}

// Clear drops meetings, participants and recordings, and tokens when includeTokens is set.
func (s *Store) Clear(_ context.Context, includeTokens bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings = make(map[string]models.Meeting)
	s.participants = make(map[participantKey]models.Participant)
	s.recordings = make(map[string]models.Recording)
	if includeTokens {
		s.tokens = nil
	}
	return nil
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Tokens

func (s *Store) LatestToken(_ context.Context) (*models.OAuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.tokens) == 0 {
		return nil, domain.NewNotFoundError("oauth token not found", domain.ErrTokenNotFound)
	}
	latest := s.tokens[0]
	for _, t := range s.tokens[1:] {
		if t.CreatedAt.After(latest.CreatedAt) || (t.CreatedAt.Equal(latest.CreatedAt) && t.ID > latest.ID) {
			latest = t
		}
	}
	return &latest, nil
}

func (s *Store) CreateToken(_ context.Context, token *models.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.ID = s.id()
	s.tokens = append(s.tokens, *token)
	return nil
}

func (s *Store) UpdateToken(_ context.Context, token *models.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tokens {
		if s.tokens[i].ID == token.ID {
			s.tokens[i].AccessToken = token.AccessToken
			s.tokens[i].RefreshToken = token.RefreshToken
			s.tokens[i].ExpiresAt = token.ExpiresAt
			s.tokens[i].TokenType = token.TokenType
			return nil
		}
	}
	return domain.NewNotFoundError("oauth token not found", domain.ErrTokenNotFound)
}

func (s *Store) DeleteAllTokens(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.tokens))
	s.tokens = nil
	return n, nil
}

// Meetings

func (s *Store) GetMeeting(_ context.Context, meetingID string) (*models.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[meetingID]
	if !ok {
		return nil, domain.NewNotFoundError("meeting not found", domain.ErrMeetingNotFound)
	}
	return &m, nil
}

func (s *Store) CreateMeeting(_ context.Context, meeting *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[meeting.MeetingID]; ok {
		return domain.NewConflictError("meeting already exists")
	}
	meeting.ID = s.id()
	s.meetings[meeting.MeetingID] = *meeting
	return nil
}

func (s *Store) UpdateMeeting(_ context.Context, meeting *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.meetings[meeting.MeetingID]
	if !ok {
		return domain.NewNotFoundError("meeting not found", domain.ErrMeetingNotFound)
	}
	updated := *meeting
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	s.meetings[meeting.MeetingID] = updated
	return nil
}

func (s *Store) ListMeetings(_ context.Context, limit, offset int) ([]*models.Meeting, error) {
	s.mu.RLock()
	all := make([]models.Meeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		all = append(all, m)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b models.Meeting) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	out := []*models.Meeting{}
	for i := offset; i < len(all) && len(out) < limit; i++ {
		m := all[i]
		out = append(out, &m)
	}
	return out, nil
}

func (s *Store) SetParticipantCount(_ context.Context, meetingID string, count int, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[meetingID]
	if !ok {
		return domain.NewNotFoundError("meeting not found", domain.ErrMeetingNotFound)
	}
	m.ParticipantCount = count
	m.UpdatedAt = updatedAt
	s.meetings[meetingID] = m
	return nil
}

// Participants

func (s *Store) GetParticipant(_ context.Context, meetingID, userID string) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[participantKey{meetingID, userID}]
	if !ok {
		return nil, domain.NewNotFoundError("participant not found", domain.ErrParticipantNotFound)
	}
	return &p, nil
}

func (s *Store) CreateParticipant(_ context.Context, participant *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[participant.MeetingID]; !ok {
		return domain.NewValidationError("participant references an unknown meeting", domain.ErrMeetingNotFound)
	}
	key := participantKey{participant.MeetingID, participant.UserID}
	if _, ok := s.participants[key]; ok {
		return domain.NewConflictError("participant already exists")
	}
	participant.ID = s.id()
	s.participants[key] = *participant
	return nil
}

func (s *Store) UpdateParticipant(_ context.Context, participant *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := participantKey{participant.MeetingID, participant.UserID}
	existing, ok := s.participants[key]
	if !ok {
		return domain.NewNotFoundError("participant not found", domain.ErrParticipantNotFound)
	}
	updated := *participant
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	s.participants[key] = updated
	return nil
}

func (s *Store) meetingParticipants(meetingID string) []models.Participant {
	var out []models.Participant
	for k, p := range s.participants {
		if k.meetingID == meetingID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) ListParticipants(_ context.Context, meetingID string) ([]*models.Participant, error) {
	s.mu.RLock()
	found := s.meetingParticipants(meetingID)
	s.mu.RUnlock()

	slices.SortFunc(found, func(a, b models.Participant) int {
		if c := compareNullableTime(a.JoinTime, b.JoinTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]*models.Participant, 0, len(found))
	for i := range found {
		out = append(out, &found[i])
	}
	return out, nil
}

func (s *Store) CountParticipants(_ context.Context, meetingID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meetingParticipants(meetingID)), nil
}

func (s *Store) ParticipantStats(_ context.Context, meetingID string) (*models.ParticipantStats, error) {
	s.mu.RLock()
	found := s.meetingParticipants(meetingID)
	s.mu.RUnlock()

	stats := &models.ParticipantStats{}
	for _, p := range found {
		if p.Duration == nil {
			continue
		}
		d := *p.Duration
		if stats.TotalParticipants == 0 || d < stats.MinDuration {
			stats.MinDuration = d
		}
		if d > stats.MaxDuration {
			stats.MaxDuration = d
		}
		stats.TotalParticipants++
		stats.TotalDuration += d
	}
	if stats.TotalParticipants > 0 {
		stats.AvgDuration = float64(stats.TotalDuration) / float64(stats.TotalParticipants)
	}
	return stats, nil
}

// Recordings

func (s *Store) GetRecording(_ context.Context, recordingID string) (*models.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recordings[recordingID]
	if !ok {
		return nil, domain.NewNotFoundError("recording not found", domain.ErrRecordingNotFound)
	}
	return &r, nil
}

func (s *Store) CreateRecording(_ context.Context, recording *models.Recording) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[recording.MeetingID]; !ok {
		return domain.NewValidationError("recording references an unknown meeting", domain.ErrMeetingNotFound)
	}
	if _, ok := s.recordings[recording.RecordingID]; ok {
		return domain.NewConflictError("recording already exists")
	}
	recording.ID = s.id()
	s.recordings[recording.RecordingID] = *recording
	return nil
}

func (s *Store) UpdateRecording(_ context.Context, recording *models.Recording) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.recordings[recording.RecordingID]
	if !ok {
		return domain.NewNotFoundError("recording not found", domain.ErrRecordingNotFound)
	}
	updated := *recording
	updated.ID = existing.ID
	updated.MeetingID = existing.MeetingID
	updated.CreatedAt = existing.CreatedAt
	s.recordings[recording.RecordingID] = updated
	return nil
}

func (s *Store) ListRecordings(_ context.Context, meetingID string) ([]*models.Recording, error) {
	s.mu.RLock()
	var found []models.Recording
	for _, r := range s.recordings {
		if r.MeetingID == meetingID {
			found = append(found, r)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(found, func(a, b models.Recording) int {
		if c := compareNullableTime(a.RecordingStart, b.RecordingStart); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]*models.Recording, 0, len(found))
	for i := range found {
		out = append(out, &found[i])
	}
	return out, nil
}

// compareNullableTime orders nil after every set time, like NULLS LAST.
func compareNullableTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
