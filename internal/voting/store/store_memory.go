package store

import (
	"context"
	"sort"
	"sync"

	"agorax/internal/voting/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

type ballotKey struct {
	itemID  id.AgendaItemID
	ownerID id.OwnerID
}

// InMemory is the append-only vote ledger backed by a map keyed
// (agenda item, owner). The existence check and the append happen under one
// lock, so a concurrent duplicate loses with sentinel.ErrConflict.
type InMemory struct {
	mu      sync.RWMutex
	ballots map[ballotKey]*models.Vote
}

func NewInMemory() *InMemory {
	return &InMemory{ballots: make(map[ballotKey]*models.Vote)}
}

// AppendIfAbsent atomically records the vote unless the owner already voted
// on the item.
func (s *InMemory) AppendIfAbsent(_ context.Context, vote *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ballotKey{vote.AgendaItemID, vote.OwnerID}
	if _, exists := s.ballots[key]; exists {
		return sentinel.ErrConflict
	}
	clone := *vote
	s.ballots[key] = &clone
	return nil
}

func (s *InMemory) ListByItem(_ context.Context, itemID id.AgendaItemID) ([]*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var votes []*models.Vote
	for key, vote := range s.ballots {
		if key.itemID == itemID {
			clone := *vote
			votes = append(votes, &clone)
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].CastAt.Before(votes[j].CastAt) })
	return votes, nil
}

func (s *InMemory) HasVote(_ context.Context, itemID id.AgendaItemID, ownerID id.OwnerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.ballots[ballotKey{itemID, ownerID}]
	return exists, nil
}

func (s *InMemory) HasVoteInMeeting(_ context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, vote := range s.ballots {
		if key.ownerID == ownerID && vote.MeetingID == meetingID {
			return true, nil
		}
	}
	return false, nil
}
