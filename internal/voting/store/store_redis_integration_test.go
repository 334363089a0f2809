//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agorax/internal/voting/models"
	"agorax/internal/voting/store"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
	"agorax/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) newVote(itemID id.AgendaItemID, meetingID id.MeetingID, ownerID id.OwnerID, castAt time.Time) *models.Vote {
	vote, err := models.NewVote(id.VoteID(uuid.New()), itemID, meetingID, ownerID,
		[]byte("sealed-ciphertext"), "203.0.113.7", castAt)
	s.Require().NoError(err)
	return vote
}

func (s *RedisStoreSuite) TestAppendAndListRoundTrip() {
	ctx := context.Background()
	itemID := id.AgendaItemID(uuid.New())
	meetingID := id.MeetingID(uuid.New())
	vote := s.newVote(itemID, meetingID, id.OwnerID(uuid.New()), time.Now().UTC().Truncate(time.Millisecond))

	s.Require().NoError(s.store.AppendIfAbsent(ctx, vote))

	votes, err := s.store.ListByItem(ctx, itemID)
	s.Require().NoError(err)
	s.Require().Len(votes, 1)
	s.Equal(vote.ID, votes[0].ID)
	s.Equal(meetingID, votes[0].MeetingID)
	s.Equal([]byte("sealed-ciphertext"), votes[0].EncryptedValue, "ciphertext must survive the round trip")
	s.Equal("203.0.113.7", votes[0].IPAddress)
}

func (s *RedisStoreSuite) TestDuplicateAppendConflicts() {
	ctx := context.Background()
	itemID := id.AgendaItemID(uuid.New())
	meetingID := id.MeetingID(uuid.New())
	ownerID := id.OwnerID(uuid.New())

	s.Require().NoError(s.store.AppendIfAbsent(ctx, s.newVote(itemID, meetingID, ownerID, time.Now().UTC())))

	err := s.store.AppendIfAbsent(ctx, s.newVote(itemID, meetingID, ownerID, time.Now().UTC()))
	s.ErrorIs(err, sentinel.ErrConflict)

	votes, err := s.store.ListByItem(ctx, itemID)
	s.Require().NoError(err)
	s.Len(votes, 1)
}

// TestConcurrentDuplicateAppends verifies that HSETNX decides the race:
// exactly one of many simultaneous casts by the same owner lands.
func (s *RedisStoreSuite) TestConcurrentDuplicateAppends() {
	ctx := context.Background()
	itemID := id.AgendaItemID(uuid.New())
	meetingID := id.MeetingID(uuid.New())
	ownerID := id.OwnerID(uuid.New())
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.AppendIfAbsent(ctx, s.newVote(itemID, meetingID, ownerID, time.Now().UTC()))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one append should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")

	votes, err := s.store.ListByItem(ctx, itemID)
	s.Require().NoError(err)
	s.Len(votes, 1)
}

func (s *RedisStoreSuite) TestListByItemOrderedByCastTime() {
	ctx := context.Background()
	itemID := id.AgendaItemID(uuid.New())
	meetingID := id.MeetingID(uuid.New())
	now := time.Now().UTC().Truncate(time.Millisecond)

	first := s.newVote(itemID, meetingID, id.OwnerID(uuid.New()), now)
	second := s.newVote(itemID, meetingID, id.OwnerID(uuid.New()), now.Add(time.Minute))

	// Append out of order; listing sorts by cast time.
	s.Require().NoError(s.store.AppendIfAbsent(ctx, second))
	s.Require().NoError(s.store.AppendIfAbsent(ctx, first))

	votes, err := s.store.ListByItem(ctx, itemID)
	s.Require().NoError(err)
	s.Require().Len(votes, 2)
	s.Equal(first.ID, votes[0].ID)
	s.Equal(second.ID, votes[1].ID)
}

func (s *RedisStoreSuite) TestHasVoteInMeetingTracksAllItems() {
	ctx := context.Background()
	meetingID := id.MeetingID(uuid.New())
	ownerID := id.OwnerID(uuid.New())
	itemID := id.AgendaItemID(uuid.New())

	has, err := s.store.HasVoteInMeeting(ctx, meetingID, ownerID)
	s.Require().NoError(err)
	s.False(has)

	s.Require().NoError(s.store.AppendIfAbsent(ctx, s.newVote(itemID, meetingID, ownerID, time.Now().UTC())))

	has, err = s.store.HasVoteInMeeting(ctx, meetingID, ownerID)
	s.Require().NoError(err)
	s.True(has, "the meeting voters index must reflect a vote on any item")

	// A different item in the same meeting still reports the owner as voted.
	has, err = s.store.HasVote(ctx, id.AgendaItemID(uuid.New()), ownerID)
	s.Require().NoError(err)
	s.False(has)
}
