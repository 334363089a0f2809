package store

import (
	"context"
	"sync"

	"agorax/internal/attendance/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

type presenceKey struct {
	meetingID id.MeetingID
	ownerID   id.OwnerID
}

// InMemory keeps presences keyed by (meeting, owner), which makes the
// one-presence-per-pair invariant structural: Upsert can only ever replace.
type InMemory struct {
	mu        sync.RWMutex
	presences map[presenceKey]*models.Presence
}

func NewInMemory() *InMemory {
	return &InMemory{presences: make(map[presenceKey]*models.Presence)}
}

// Upsert registers attendance, updating the captured coefficient when the
// pair already exists. Idempotent by design.
func (s *InMemory) Upsert(_ context.Context, presence *models.Presence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *presence
	s.presences[presenceKey{presence.MeetingID, presence.OwnerID}] = &clone
	return nil
}

func (s *InMemory) Find(_ context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (*models.Presence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if presence, ok := s.presences[presenceKey{meetingID, ownerID}]; ok {
		clone := *presence
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Remove(_ context.Context, meetingID id.MeetingID, ownerID id.OwnerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := presenceKey{meetingID, ownerID}
	if _, ok := s.presences[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.presences, key)
	return nil
}

// ListByMeeting returns a consistent snapshot of the meeting's presences;
// quorum sums computed from it never observe a half-applied registration.
func (s *InMemory) ListByMeeting(_ context.Context, meetingID id.MeetingID) ([]*models.Presence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var presences []*models.Presence
	for key, presence := range s.presences {
		if key.meetingID == meetingID {
			clone := *presence
			presences = append(presences, &clone)
		}
	}
	return presences, nil
}
