package domain

import (
	"github.com/google/uuid"

	dErrors "agorax/pkg/domain-errors"
)

// Typed UUID identifiers. Distinct types make it a compile error to hand a
// meeting ID to an owner lookup, which matters in an engine where most
// operations take two or three IDs at once.
type (
	CondominiumID uuid.UUID
	OwnerID       uuid.UUID
	MeetingID     uuid.UUID
	AgendaItemID  uuid.UUID
	VoteID        uuid.UUID
)

func (id CondominiumID) String() string { return uuid.UUID(id).String() }
func (id OwnerID) String() string       { return uuid.UUID(id).String() }
func (id MeetingID) String() string     { return uuid.UUID(id).String() }
func (id AgendaItemID) String() string  { return uuid.UUID(id).String() }
func (id VoteID) String() string        { return uuid.UUID(id).String() }

func (id CondominiumID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OwnerID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id MeetingID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id AgendaItemID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id VoteID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// The defined types do not inherit uuid.UUID's TextMarshaler, so JSON
// encoding is spelled out here; without it an ID would serialize as a byte
// array.
func (id CondominiumID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id OwnerID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id MeetingID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id AgendaItemID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id VoteID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }

func (id *CondominiumID) UnmarshalText(text []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(text)
}
func (id *OwnerID) UnmarshalText(text []byte) error      { return (*uuid.UUID)(id).UnmarshalText(text) }
func (id *MeetingID) UnmarshalText(text []byte) error    { return (*uuid.UUID)(id).UnmarshalText(text) }
func (id *AgendaItemID) UnmarshalText(text []byte) error { return (*uuid.UUID)(id).UnmarshalText(text) }
func (id *VoteID) UnmarshalText(text []byte) error       { return (*uuid.UUID)(id).UnmarshalText(text) }

// parseUUID enforces the trust-boundary invariant: IDs must be valid,
// non-empty, non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return parsed, nil
}

func ParseCondominiumID(raw string) (CondominiumID, error) {
	parsed, err := parseUUID(raw, "condominium")
	return CondominiumID(parsed), err
}

func ParseOwnerID(raw string) (OwnerID, error) {
	parsed, err := parseUUID(raw, "owner")
	return OwnerID(parsed), err
}

func ParseMeetingID(raw string) (MeetingID, error) {
	parsed, err := parseUUID(raw, "meeting")
	return MeetingID(parsed), err
}

func ParseAgendaItemID(raw string) (AgendaItemID, error) {
	parsed, err := parseUUID(raw, "agenda item")
	return AgendaItemID(parsed), err
}
