package audit

import (
	"context"
	"time"

	id "agorax/pkg/domain"
)

// Event is emitted from domain logic after every successful transition,
// presence change, or vote. Keep it transport-agnostic so stores and sinks
// can fan out. Audit is best-effort: a failed write never rolls back the
// operation that produced it.
type Event struct {
	Timestamp time.Time
	// ActorID is the authenticated caller. Nil for system-initiated actions.
	ActorID     id.OwnerID
	Action      string
	EntityType  string
	EntityID    string
	Description string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
	ClientIP  string
}

type AuditEvent string

const (
	// Meeting lifecycle
	EventMeetingCreated AuditEvent = "meeting_created"
	EventMeetingOpened  AuditEvent = "meeting_opened"
	EventMeetingClosed  AuditEvent = "meeting_closed"

	// Agenda item lifecycle
	EventAgendaItemAdded  AuditEvent = "agenda_item_added"
	EventAgendaItemOpened AuditEvent = "agenda_item_opened"
	EventAgendaItemClosed AuditEvent = "agenda_item_closed"

	// Attendance
	EventPresenceRegistered AuditEvent = "presence_registered"
	EventPresenceRevoked    AuditEvent = "presence_revoked"

	// Voting
	EventVoteCast AuditEvent = "vote_cast"
)

// Entity types referenced by events.
const (
	EntityMeeting    = "meeting"
	EntityAgendaItem = "agenda_item"
	EntityPresence   = "presence"
	EntityVote       = "vote"
)

// Store persists audit events. Implementations must be safe for concurrent
// use; ordering is only guaranteed per actor.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID id.OwnerID) ([]Event, error)
}

// Sink receives a copy of every event after it is persisted. Used to stream
// events to Kafka for downstream consumers without coupling emitters to the
// broker.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}
