package models

import (
	"time"

	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
)

// MeetingState is the assembly lifecycle state. Transitions are
// one-directional and terminal at Closed.
type MeetingState string

const (
	MeetingStateCreated    MeetingState = "CREATED"
	MeetingStateInProgress MeetingState = "IN_PROGRESS"
	MeetingStateClosed     MeetingState = "CLOSED"
)

// CanTransitionTo encodes the only legal edges:
// Created -> InProgress -> Closed.
func (s MeetingState) CanTransitionTo(target MeetingState) bool {
	switch s {
	case MeetingStateCreated:
		return target == MeetingStateInProgress
	case MeetingStateInProgress:
		return target == MeetingStateClosed
	default:
		return false
	}
}

// Meeting is the aggregate root for one general assembly.
//
// Invariants:
//   - TotalCoefficientSnapshot is captured from the condominium at creation
//     and is the quorum denominator for the life of the meeting, even if the
//     condominium's live total later diverges
//   - At most one meeting per condominium is InProgress at any time; the
//     store enforces this, not the model
//   - State and OpenedAt/ClosedAt change together, only through the
//     Can*/Apply* pairs run inside a store Execute callback
type Meeting struct {
	ID                       id.MeetingID     `json:"id"`
	CondominiumID            id.CondominiumID `json:"condominium_id"`
	Title                    string           `json:"title"`
	ScheduledFor             time.Time        `json:"scheduled_for"`
	TotalCoefficientSnapshot float64          `json:"total_coefficient_snapshot"`
	State                    MeetingState     `json:"state"`
	CreatedAt                time.Time        `json:"created_at"`
	OpenedAt                 *time.Time       `json:"opened_at,omitempty"`
	ClosedAt                 *time.Time       `json:"closed_at,omitempty"`
}

func NewMeeting(meetingID id.MeetingID, condominiumID id.CondominiumID, title string, scheduledFor time.Time, totalCoefficientSnapshot float64, now time.Time) (*Meeting, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "meeting title is required")
	}
	if condominiumID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "meeting condominium is required")
	}
	if totalCoefficientSnapshot <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "meeting coefficient snapshot must be positive")
	}
	return &Meeting{
		ID:                       meetingID,
		CondominiumID:            condominiumID,
		Title:                    title,
		ScheduledFor:             scheduledFor,
		TotalCoefficientSnapshot: totalCoefficientSnapshot,
		State:                    MeetingStateCreated,
		CreatedAt:                now,
	}, nil
}

func (m *Meeting) IsInProgress() bool { return m.State == MeetingStateInProgress }
func (m *Meeting) IsClosed() bool     { return m.State == MeetingStateClosed }

// CanOpen checks the state precondition for opening. The quorum gate and the
// single-in-progress invariant live with the caller and the store.
func (m *Meeting) CanOpen() error {
	if !m.State.CanTransitionTo(MeetingStateInProgress) {
		return dErrors.Newf(dErrors.CodeInvalidState, "meeting cannot open from state %s", m.State)
	}
	return nil
}

// ApplyOpen transitions to InProgress. Call CanOpen first; the pair runs
// inside the store's Execute so state and timestamp commit together.
func (m *Meeting) ApplyOpen(now time.Time) {
	m.State = MeetingStateInProgress
	m.OpenedAt = &now
}

func (m *Meeting) CanClose() error {
	if !m.State.CanTransitionTo(MeetingStateClosed) {
		return dErrors.Newf(dErrors.CodeInvalidState, "meeting cannot close from state %s", m.State)
	}
	return nil
}

func (m *Meeting) ApplyClose(now time.Time) {
	m.State = MeetingStateClosed
	m.ClosedAt = &now
}
