package memory

import (
	"context"
	"sync"

	id "agorax/pkg/domain"
	audit "agorax/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.OwnerID][]audit.Event
	all    []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.OwnerID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.OwnerID][]audit.Event)
	s.all = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ActorID] = append(s.events[event.ActorID], event)
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID id.OwnerID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[actorID]...), nil
}

// ListRecent returns the most recent N events across all actors.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit >= len(s.all) {
		return append([]audit.Event{}, s.all...), nil
	}
	return append([]audit.Event{}, s.all[len(s.all)-limit:]...), nil
}
