package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agorax/pkg/domain"
	audit "agorax/pkg/platform/audit"
	"agorax/pkg/platform/audit/store/memory"
)

func newEvent(actorID id.OwnerID, action audit.AuditEvent) audit.Event {
	return audit.Event{
		Timestamp:  time.Now().UTC(),
		ActorID:    actorID,
		Action:     string(action),
		EntityType: audit.EntityMeeting,
		EntityID:   uuid.NewString(),
	}
}

func TestAppendAndListByActor(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	actorA := id.OwnerID(uuid.New())
	actorB := id.OwnerID(uuid.New())

	require.NoError(t, store.Append(ctx, newEvent(actorA, audit.EventMeetingCreated)))
	require.NoError(t, store.Append(ctx, newEvent(actorA, audit.EventMeetingOpened)))
	require.NoError(t, store.Append(ctx, newEvent(actorB, audit.EventVoteCast)))

	events, err := store.ListByActor(ctx, actorA)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventMeetingCreated), events[0].Action)
	assert.Equal(t, string(audit.EventMeetingOpened), events[1].Action)

	events, err = store.ListByActor(ctx, actorB)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventVoteCast), events[0].Action)
}

func TestListByActorUnknownActor(t *testing.T) {
	store := memory.NewInMemoryStore()
	events, err := store.ListByActor(context.Background(), id.OwnerID(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListRecent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	actor := id.OwnerID(uuid.New())

	for _, action := range []audit.AuditEvent{
		audit.EventMeetingCreated, audit.EventMeetingOpened, audit.EventVoteCast,
	} {
		require.NoError(t, store.Append(ctx, newEvent(actor, action)))
	}

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, string(audit.EventMeetingOpened), recent[0].Action)
	assert.Equal(t, string(audit.EventVoteCast), recent[1].Action)

	all, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	actor := id.OwnerID(uuid.New())
	require.NoError(t, store.Append(ctx, newEvent(actor, audit.EventVoteCast)))

	store.Clear()

	events, err := store.ListByActor(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, events)
}
