package meeting

import (
	"context"
	"sync"

	"agorax/internal/meeting/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

// InMemory serializes all meeting mutations behind one mutex, which makes
// Execute and OpenExclusive trivially atomic: validate and apply run on a
// working copy under the lock, and a rejected transition commits nothing.
type InMemory struct {
	mu       sync.RWMutex
	meetings map[id.MeetingID]*models.Meeting
}

func NewInMemory() *InMemory {
	return &InMemory{meetings: make(map[id.MeetingID]*models.Meeting)}
}

func (s *InMemory) Create(_ context.Context, meeting *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.meetings[meeting.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *meeting
	s.meetings[meeting.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, meetingID id.MeetingID) (*models.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if meeting, ok := s.meetings[meetingID]; ok {
		clone := *meeting
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByCondominium(_ context.Context, condominiumID id.CondominiumID) ([]*models.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var meetings []*models.Meeting
	for _, meeting := range s.meetings {
		if meeting.CondominiumID == condominiumID {
			clone := *meeting
			meetings = append(meetings, &clone)
		}
	}
	return meetings, nil
}

// Execute runs validate then apply while holding the store lock. The
// callbacks see a working copy; the copy replaces the stored meeting only
// when validate succeeds, so state and timestamps commit together.
func (s *InMemory) Execute(ctx context.Context, meetingID id.MeetingID,
	validate func(ctx context.Context, m *models.Meeting) error,
	apply func(m *models.Meeting),
) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executeLocked(ctx, meetingID, validate, apply)
}

// OpenExclusive is Execute plus the single-in-progress invariant: it fails
// with sentinel.ErrConflict when another meeting of the same condominium is
// already InProgress.
func (s *InMemory) OpenExclusive(ctx context.Context, meetingID id.MeetingID,
	validate func(ctx context.Context, m *models.Meeting) error,
	apply func(m *models.Meeting),
) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.meetings[meetingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	for _, sibling := range s.meetings {
		if sibling.ID != meetingID &&
			sibling.CondominiumID == target.CondominiumID &&
			sibling.State == models.MeetingStateInProgress {
			return nil, sentinel.ErrConflict
		}
	}
	return s.executeLocked(ctx, meetingID, validate, apply)
}

func (s *InMemory) executeLocked(ctx context.Context, meetingID id.MeetingID,
	validate func(ctx context.Context, m *models.Meeting) error,
	apply func(m *models.Meeting),
) (*models.Meeting, error) {
	stored, ok := s.meetings[meetingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := *stored
	if err := validate(ctx, &working); err != nil {
		return nil, err
	}
	apply(&working)
	s.meetings[meetingID] = &working
	result := working
	return &result, nil
}
