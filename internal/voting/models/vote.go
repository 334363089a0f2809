package models

import (
	"time"

	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
)

// Vote is one owner's recorded choice on an agenda item. Votes are
// append-only: the production contract has no update or delete.
//
// MeetingID is denormalized from the agenda item so revocation checks and
// per-meeting queries need no join. EncryptedValue is opaque ciphertext; the
// engine never persists or returns the plaintext choice before the meeting
// closes.
type Vote struct {
	ID             id.VoteID       `json:"id"`
	AgendaItemID   id.AgendaItemID `json:"agenda_item_id"`
	MeetingID      id.MeetingID    `json:"meeting_id"`
	OwnerID        id.OwnerID      `json:"owner_id"`
	EncryptedValue []byte          `json:"-"`
	IPAddress      string          `json:"ip_address"`
	CastAt         time.Time       `json:"cast_at"`
}

func NewVote(voteID id.VoteID, itemID id.AgendaItemID, meetingID id.MeetingID, ownerID id.OwnerID, encryptedValue []byte, ipAddress string, now time.Time) (*Vote, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "vote owner is required")
	}
	if len(encryptedValue) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vote value must be encrypted before persistence")
	}
	return &Vote{
		ID:             voteID,
		AgendaItemID:   itemID,
		MeetingID:      meetingID,
		OwnerID:        ownerID,
		EncryptedValue: encryptedValue,
		IPAddress:      ipAddress,
		CastAt:         now,
	}, nil
}

// RejectionReason is the single first-failing eligibility check reported to
// the caller. The checks run in a fixed order, so the reason is deterministic
// for a given state.
type RejectionReason string

const (
	ReasonMeetingNotInProgress   RejectionReason = "meeting_not_in_progress"
	ReasonAgendaItemNotOpen      RejectionReason = "agenda_item_not_open"
	ReasonOwnerInDebt            RejectionReason = "owner_in_debt"
	ReasonAttendanceNotConfirmed RejectionReason = "attendance_not_confirmed"
	ReasonAlreadyVoted           RejectionReason = "already_voted"
)

// Value is the vote choice vocabulary accepted at the API boundary. The
// engine encrypts and stores the value without interpreting it.
type Value string

const (
	ValueYes     Value = "YES"
	ValueNo      Value = "NO"
	ValueAbstain Value = "ABSTAIN"
)

func ParseValue(raw string) (Value, error) {
	switch Value(raw) {
	case ValueYes, ValueNo, ValueAbstain:
		return Value(raw), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "vote value must be YES, NO or ABSTAIN")
}
