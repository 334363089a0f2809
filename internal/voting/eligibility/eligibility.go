// Package eligibility is the pure admission gate for vote casting. It holds
// no state and mutates nothing; the service re-evaluates it fresh on every
// attempt and the vote store's atomic append remains the authority on
// duplicates.
package eligibility

import (
	directory "agorax/internal/directory/models"
	meeting "agorax/internal/meeting/models"
	"agorax/internal/voting/models"
)

// Input is the snapshot of state the gate decides on.
type Input struct {
	Meeting      *meeting.Meeting
	Item         *meeting.AgendaItem
	Owner        *directory.Owner
	HasPresence  bool
	HasPriorVote bool
}

// Check runs the admission checks in their fixed order and returns the first
// failing reason, or empty when the owner may vote. The order is part of the
// contract: a debtor without a presence is told about the debt, not the
// missing presence.
func Check(in Input) models.RejectionReason {
	switch {
	case !in.Meeting.IsInProgress():
		return models.ReasonMeetingNotInProgress
	case !in.Item.IsOpen():
		return models.ReasonAgendaItemNotOpen
	case in.Owner.InDebt:
		return models.ReasonOwnerInDebt
	case !in.HasPresence:
		return models.ReasonAttendanceNotConfirmed
	case in.HasPriorVote:
		return models.ReasonAlreadyVoted
	}
	return ""
}
