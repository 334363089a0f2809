package condominium

import (
	"context"
	"sync"

	"agorax/internal/directory/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

// InMemory keeps condominiums in a mutex-guarded map. Reference data, so the
// contract is a plain create/find/update.
type InMemory struct {
	mu           sync.RWMutex
	condominiums map[id.CondominiumID]*models.Condominium
}

func NewInMemory() *InMemory {
	return &InMemory{condominiums: make(map[id.CondominiumID]*models.Condominium)}
}

func (s *InMemory) Create(_ context.Context, condominium *models.Condominium) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.condominiums[condominium.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *condominium
	s.condominiums[condominium.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, condominiumID id.CondominiumID) (*models.Condominium, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if condominium, ok := s.condominiums[condominiumID]; ok {
		clone := *condominium
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, condominium *models.Condominium) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.condominiums[condominium.ID]; !exists {
		return sentinel.ErrNotFound
	}
	clone := *condominium
	s.condominiums[condominium.ID] = &clone
	return nil
}
