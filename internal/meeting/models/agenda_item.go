package models

import (
	"time"

	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
)

// AgendaItemState is the per-item voting window state. Independent of the
// meeting's own state, except that an item can only be Open while its
// meeting is InProgress.
type AgendaItemState string

const (
	AgendaItemStatePending AgendaItemState = "PENDING"
	AgendaItemStateOpen    AgendaItemState = "OPEN"
	AgendaItemStateClosed  AgendaItemState = "CLOSED"
)

func (s AgendaItemState) CanTransitionTo(target AgendaItemState) bool {
	switch s {
	case AgendaItemStatePending:
		return target == AgendaItemStateOpen
	case AgendaItemStateOpen:
		return target == AgendaItemStateClosed
	default:
		return false
	}
}

// AgendaItem is a single decision point within a meeting, voted on
// independently. At most one item per meeting is Open at a time; the store
// enforces that.
type AgendaItem struct {
	ID        id.AgendaItemID `json:"id"`
	MeetingID id.MeetingID    `json:"meeting_id"`
	Title     string          `json:"title"`
	State     AgendaItemState `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	OpenedAt  *time.Time      `json:"opened_at,omitempty"`
	ClosedAt  *time.Time      `json:"closed_at,omitempty"`
}

func NewAgendaItem(itemID id.AgendaItemID, meetingID id.MeetingID, title string, now time.Time) (*AgendaItem, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "agenda item title is required")
	}
	if meetingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "agenda item meeting is required")
	}
	return &AgendaItem{
		ID:        itemID,
		MeetingID: meetingID,
		Title:     title,
		State:     AgendaItemStatePending,
		CreatedAt: now,
	}, nil
}

func (a *AgendaItem) IsOpen() bool { return a.State == AgendaItemStateOpen }

func (a *AgendaItem) CanOpen() error {
	if !a.State.CanTransitionTo(AgendaItemStateOpen) {
		return dErrors.Newf(dErrors.CodeInvalidState, "agenda item cannot open from state %s", a.State)
	}
	return nil
}

func (a *AgendaItem) ApplyOpen(now time.Time) {
	a.State = AgendaItemStateOpen
	a.OpenedAt = &now
}

// CanClose: closing is unconditional once Open.
func (a *AgendaItem) CanClose() error {
	if !a.State.CanTransitionTo(AgendaItemStateClosed) {
		return dErrors.Newf(dErrors.CodeInvalidState, "agenda item cannot close from state %s", a.State)
	}
	return nil
}

func (a *AgendaItem) ApplyClose(now time.Time) {
	a.State = AgendaItemStateClosed
	a.ClosedAt = &now
}
