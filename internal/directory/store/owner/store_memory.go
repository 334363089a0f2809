package owner

import (
	"context"
	"sync"

	"agorax/internal/directory/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	owners map[id.OwnerID]*models.Owner
}

func NewInMemory() *InMemory {
	return &InMemory{owners: make(map[id.OwnerID]*models.Owner)}
}

func (s *InMemory) Create(_ context.Context, owner *models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.owners[owner.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *owner
	s.owners[owner.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, ownerID id.OwnerID) (*models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if owner, ok := s.owners[ownerID]; ok {
		clone := *owner
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByCondominium(_ context.Context, condominiumID id.CondominiumID) ([]*models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owners []*models.Owner
	for _, owner := range s.owners {
		if owner.CondominiumID == condominiumID {
			clone := *owner
			owners = append(owners, &clone)
		}
	}
	return owners, nil
}

// SetDebtFlag updates the billing-maintained debt marker. The engine itself
// never calls this outside the administrative endpoint.
func (s *InMemory) SetDebtFlag(_ context.Context, ownerID id.OwnerID, inDebt bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[ownerID]
	if !ok {
		return sentinel.ErrNotFound
	}
	owner.InDebt = inDebt
	return nil
}
