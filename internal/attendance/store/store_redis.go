package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"agorax/internal/attendance/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

// Redis keeps each meeting's presences in a hash keyed by owner id, so a
// whole meeting's roster is one HGETALL away for the quorum calculator.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func presenceHashKey(meetingID id.MeetingID) string {
	return "agorax:presences:" + meetingID.String()
}

func (s *Redis) Upsert(ctx context.Context, presence *models.Presence) error {
	payload, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("encoding presence: %w", err)
	}
	if err := s.client.HSet(ctx, presenceHashKey(presence.MeetingID), presence.OwnerID.String(), payload).Err(); err != nil {
		return fmt.Errorf("upserting presence: %w", err)
	}
	return nil
}

func (s *Redis) Find(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (*models.Presence, error) {
	payload, err := s.client.HGet(ctx, presenceHashKey(meetingID), ownerID.String()).Result()
	if err == redis.Nil {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding presence: %w", err)
	}
	var presence models.Presence
	if err := json.Unmarshal([]byte(payload), &presence); err != nil {
		return nil, fmt.Errorf("decoding presence: %w", err)
	}
	return &presence, nil
}

func (s *Redis) Remove(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) error {
	removed, err := s.client.HDel(ctx, presenceHashKey(meetingID), ownerID.String()).Result()
	if err != nil {
		return fmt.Errorf("removing presence: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Redis) ListByMeeting(ctx context.Context, meetingID id.MeetingID) ([]*models.Presence, error) {
	entries, err := s.client.HGetAll(ctx, presenceHashKey(meetingID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing presences: %w", err)
	}
	presences := make([]*models.Presence, 0, len(entries))
	for _, payload := range entries {
		var presence models.Presence
		if err := json.Unmarshal([]byte(payload), &presence); err != nil {
			return nil, fmt.Errorf("decoding presence: %w", err)
		}
		presences = append(presences, &presence)
	}
	return presences, nil
}
