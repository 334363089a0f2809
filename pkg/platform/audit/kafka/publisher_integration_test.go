//go:build integration

package kafka_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "agorax/pkg/domain"
	audit "agorax/pkg/platform/audit"
	auditkafka "agorax/pkg/platform/audit/kafka"
	"agorax/pkg/testutil/containers"
)

func TestPublisherStreamsEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	topic := "agorax.audit.events.test"
	require.NoError(t, redpanda.CreateTopic(ctx, topic))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	publisher, err := auditkafka.New([]string{redpanda.Broker}, topic, logger)
	require.NoError(t, err)

	actorID := id.OwnerID(uuid.New())
	meetingID := uuid.NewString()
	event := audit.Event{
		Timestamp:   time.Now().UTC(),
		ActorID:     actorID,
		Action:      string(audit.EventMeetingOpened),
		EntityType:  audit.EntityMeeting,
		EntityID:    meetingID,
		Description: "meeting opened with quorum 62.5",
		RequestID:   "req-123",
		ClientIP:    "203.0.113.7",
	}
	require.NoError(t, publisher.Emit(ctx, event))

	closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, publisher.Close(closeCtx), "close must flush the buffered record")

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	pollCtx, cancelPoll := context.WithTimeout(ctx, 15*time.Second)
	defer cancelPoll()
	fetches := consumer.PollFetches(pollCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)

	record := records[0]
	require.Equal(t, audit.EntityMeeting+":"+meetingID, string(record.Key),
		"events for the same entity must share a partition key")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(record.Value, &payload))
	require.Equal(t, string(audit.EventMeetingOpened), payload["action"])
	require.Equal(t, audit.EntityMeeting, payload["entity_type"])
	require.Equal(t, meetingID, payload["entity_id"])
	require.Equal(t, actorID.String(), payload["actor_id"])
	require.Equal(t, "req-123", payload["request_id"])
	require.NotEmpty(t, payload["id"], "every streamed record carries its own id")
}

func TestTopicMetadataAfterCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	topic := "agorax.audit.metadata.test"
	require.NoError(t, redpanda.CreateTopic(ctx, topic))
	require.NoError(t, redpanda.CreateTopic(ctx, topic), "re-creating an existing topic is not an error")

	details, err := redpanda.Admin.ListTopics(ctx, topic)
	require.NoError(t, err)
	require.True(t, details.Has(topic))
}
