package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"agorax/internal/voting/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

// Redis backs the vote ledger with one hash per agenda item. HSETNX is the
// atomic compare-and-append: it refuses to overwrite an existing field, so
// two concurrent casts by the same owner are decided by the server with no
// read-check-write window.
//
// A second hash per meeting indexes owners who voted anywhere in the
// meeting; it only ever grows, matching the ledger's append-only contract.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func itemHashKey(itemID id.AgendaItemID) string {
	return "agorax:votes:item:" + itemID.String()
}

func meetingVotersKey(meetingID id.MeetingID) string {
	return "agorax:votes:meeting:" + meetingID.String()
}

func (s *Redis) AppendIfAbsent(ctx context.Context, vote *models.Vote) error {
	payload, err := json.Marshal(redisVote{
		Vote:           vote,
		EncryptedValue: vote.EncryptedValue,
	})
	if err != nil {
		return fmt.Errorf("encoding vote: %w", err)
	}

	stored, err := s.client.HSetNX(ctx, itemHashKey(vote.AgendaItemID), vote.OwnerID.String(), payload).Result()
	if err != nil {
		return fmt.Errorf("appending vote: %w", err)
	}
	if !stored {
		return sentinel.ErrConflict
	}
	if err := s.client.HSet(ctx, meetingVotersKey(vote.MeetingID), vote.OwnerID.String(), vote.CastAt.UnixNano()).Err(); err != nil {
		return fmt.Errorf("indexing meeting voter: %w", err)
	}
	return nil
}

func (s *Redis) ListByItem(ctx context.Context, itemID id.AgendaItemID) ([]*models.Vote, error) {
	entries, err := s.client.HGetAll(ctx, itemHashKey(itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing votes: %w", err)
	}
	votes := make([]*models.Vote, 0, len(entries))
	for _, payload := range entries {
		var stored redisVote
		stored.Vote = &models.Vote{}
		if err := json.Unmarshal([]byte(payload), &stored); err != nil {
			return nil, fmt.Errorf("decoding vote: %w", err)
		}
		stored.Vote.EncryptedValue = stored.EncryptedValue
		votes = append(votes, stored.Vote)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].CastAt.Before(votes[j].CastAt) })
	return votes, nil
}

func (s *Redis) HasVote(ctx context.Context, itemID id.AgendaItemID, ownerID id.OwnerID) (bool, error) {
	exists, err := s.client.HExists(ctx, itemHashKey(itemID), ownerID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("checking vote existence: %w", err)
	}
	return exists, nil
}

func (s *Redis) HasVoteInMeeting(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (bool, error) {
	exists, err := s.client.HExists(ctx, meetingVotersKey(meetingID), ownerID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("checking meeting votes: %w", err)
	}
	return exists, nil
}

// redisVote carries the ciphertext explicitly since Vote excludes it from
// JSON on the API surface.
type redisVote struct {
	*models.Vote
	EncryptedValue []byte `json:"encrypted_value"`
}
