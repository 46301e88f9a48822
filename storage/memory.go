package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"meetScribe/core"
)

// MemoryMeetingStore is the in-process fallback backend. It keeps the same
// row semantics as the postgres store so tests and dev runs need no
// database.
type MemoryMeetingStore struct {
	mu        sync.RWMutex
	meetings  map[string]core.Meeting
	attendees map[string][]core.Attendee
	fragments map[string][]core.TranscriptFragment
	summaries map[string]core.StoredSummary
	tokens    map[string]core.OAuthToken // userID|provider
}

func NewMemoryMeetingStore() *MemoryMeetingStore {
	return &MemoryMeetingStore{
		meetings:  map[string]core.Meeting{},
		attendees: map[string][]core.Attendee{},
		fragments: map[string][]core.TranscriptFragment{},
		summaries: map[string]core.StoredSummary{},
		tokens:    map[string]core.OAuthToken{},
	}
}

func tokenKey(userID, provider string) string { return userID + "|" + provider }

func (s *MemoryMeetingStore) CreateMeeting(_ context.Context, m core.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[m.ID] = m
	return nil
}

func (s *MemoryMeetingStore) GetMeeting(_ context.Context, id, ownerID string) (core.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	if !ok || m.OwnerID != ownerID {
		return core.Meeting{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryMeetingStore) GetMeetingByID(_ context.Context, id string) (core.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	if !ok {
		return core.Meeting{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryMeetingStore) ListMeetings(_ context.Context, ownerID string) ([]core.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Meeting, 0)
	for _, m := range s.meetings {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *MemoryMeetingStore) UpdateMeetingStatus(_ context.Context, id string, status core.MeetingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[id]
	if !ok {
		return ErrNotFound
	}
	m.Status = status
	s.meetings[id] = m
	return nil
}

func (s *MemoryMeetingStore) FindMeetingByExternalID(_ context.Context, provider core.MeetingProvider, externalID string) (core.Meeting, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.meetings {
		if m.Provider == provider && m.ExternalID == externalID {
			return m, true, nil
		}
	}
	return core.Meeting{}, false, nil
}

func (s *MemoryMeetingStore) ListMeetingsDueBy(_ context.Context, now time.Time) ([]core.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Meeting, 0)
	for _, m := range s.meetings {
		if m.Status == core.StatusScheduled && !m.StartTime.After(now) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *MemoryMeetingStore) SaveAttendees(_ context.Context, meetingID string, attendees []core.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendees[meetingID] = append([]core.Attendee(nil), attendees...)
	return nil
}

func (s *MemoryMeetingStore) Attendees(_ context.Context, meetingID string) ([]core.Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Attendee(nil), s.attendees[meetingID]...), nil
}

func (s *MemoryMeetingStore) SaveFragments(_ context.Context, meetingID string, fragments []core.TranscriptFragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments[meetingID] = append(s.fragments[meetingID], fragments...)
	return nil
}

func (s *MemoryMeetingStore) Fragments(_ context.Context, meetingID string) ([]core.TranscriptFragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.TranscriptFragment(nil), s.fragments[meetingID]...), nil
}

func (s *MemoryMeetingStore) SaveSummary(_ context.Context, sum core.StoredSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[sum.MeetingID] = sum
	return nil
}

func (s *MemoryMeetingStore) GetSummary(_ context.Context, meetingID, ownerID string) (core.StoredSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[meetingID]
	if !ok || m.OwnerID != ownerID {
		return core.StoredSummary{}, ErrNotFound
	}
	sum, ok := s.summaries[meetingID]
	if !ok {
		return core.StoredSummary{}, ErrNotFound
	}
	return sum, nil
}

func (s *MemoryMeetingStore) UpsertToken(_ context.Context, tok core.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenKey(tok.UserID, tok.Provider)] = tok
	return nil
}

func (s *MemoryMeetingStore) GetToken(_ context.Context, userID, provider string) (core.OAuthToken, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[tokenKey(userID, provider)]
	return tok, ok, nil
}

func (s *MemoryMeetingStore) ListConnections(_ context.Context) ([]core.OAuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.OAuthToken, 0, len(s.tokens))
	for _, tok := range s.tokens {
		out = append(out, tok)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Provider < out[j].Provider
	})
	return out, nil
}

func (s *MemoryMeetingStore) Close(context.Context) {}
