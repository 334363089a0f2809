package agenda

import (
	"context"
	"sync"

	"agorax/internal/meeting/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

// InMemory keeps agenda items behind one mutex so OpenExclusive can uphold
// the one-open-item-per-meeting invariant without a race window.
type InMemory struct {
	mu    sync.RWMutex
	items map[id.AgendaItemID]*models.AgendaItem
}

func NewInMemory() *InMemory {
	return &InMemory{items: make(map[id.AgendaItemID]*models.AgendaItem)}
}

func (s *InMemory) Create(_ context.Context, item *models.AgendaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *item
	s.items[item.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, itemID id.AgendaItemID) (*models.AgendaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[itemID]; ok {
		clone := *item
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByMeeting(_ context.Context, meetingID id.MeetingID) ([]*models.AgendaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []*models.AgendaItem
	for _, item := range s.items {
		if item.MeetingID == meetingID {
			clone := *item
			items = append(items, &clone)
		}
	}
	return items, nil
}

func (s *InMemory) Execute(ctx context.Context, itemID id.AgendaItemID,
	validate func(ctx context.Context, item *models.AgendaItem) error,
	apply func(item *models.AgendaItem),
) (*models.AgendaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executeLocked(ctx, itemID, validate, apply)
}

// OpenExclusive fails with sentinel.ErrConflict when a sibling item of the
// same meeting is already Open.
func (s *InMemory) OpenExclusive(ctx context.Context, itemID id.AgendaItemID,
	validate func(ctx context.Context, item *models.AgendaItem) error,
	apply func(item *models.AgendaItem),
) (*models.AgendaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.items[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	for _, sibling := range s.items {
		if sibling.ID != itemID &&
			sibling.MeetingID == target.MeetingID &&
			sibling.State == models.AgendaItemStateOpen {
			return nil, sentinel.ErrConflict
		}
	}
	return s.executeLocked(ctx, itemID, validate, apply)
}

func (s *InMemory) executeLocked(ctx context.Context, itemID id.AgendaItemID,
	validate func(ctx context.Context, item *models.AgendaItem) error,
	apply func(item *models.AgendaItem),
) (*models.AgendaItem, error) {
	stored, ok := s.items[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := *stored
	if err := validate(ctx, &working); err != nil {
		return nil, err
	}
	apply(&working)
	s.items[itemID] = &working
	result := working
	return &result, nil
}
