package eligibility_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	directory "agorax/internal/directory/models"
	meeting "agorax/internal/meeting/models"
	"agorax/internal/voting/eligibility"
	"agorax/internal/voting/models"
	id "agorax/pkg/domain"
)

func eligibleInput() eligibility.Input {
	now := time.Now()
	return eligibility.Input{
		Meeting: &meeting.Meeting{
			ID:    id.MeetingID(uuid.New()),
			State: meeting.MeetingStateInProgress,
		},
		Item: &meeting.AgendaItem{
			ID:    id.AgendaItemID(uuid.New()),
			State: meeting.AgendaItemStateOpen,
		},
		Owner: &directory.Owner{
			ID:          id.OwnerID(uuid.New()),
			Coefficient: 1.5,
			CreatedAt:   now,
		},
		HasPresence:  true,
		HasPriorVote: false,
	}
}

func TestEligibleOwnerPasses(t *testing.T) {
	assert.Empty(t, eligibility.Check(eligibleInput()))
}

func TestChecksFailInFixedOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *eligibility.Input)
		want   models.RejectionReason
	}{
		{
			name:   "meeting not in progress",
			mutate: func(in *eligibility.Input) { in.Meeting.State = meeting.MeetingStateCreated },
			want:   models.ReasonMeetingNotInProgress,
		},
		{
			name:   "closed meeting",
			mutate: func(in *eligibility.Input) { in.Meeting.State = meeting.MeetingStateClosed },
			want:   models.ReasonMeetingNotInProgress,
		},
		{
			name:   "item not open",
			mutate: func(in *eligibility.Input) { in.Item.State = meeting.AgendaItemStatePending },
			want:   models.ReasonAgendaItemNotOpen,
		},
		{
			name:   "owner in debt",
			mutate: func(in *eligibility.Input) { in.Owner.InDebt = true },
			want:   models.ReasonOwnerInDebt,
		},
		{
			name:   "attendance not confirmed",
			mutate: func(in *eligibility.Input) { in.HasPresence = false },
			want:   models.ReasonAttendanceNotConfirmed,
		},
		{
			name:   "already voted",
			mutate: func(in *eligibility.Input) { in.HasPriorVote = true },
			want:   models.ReasonAlreadyVoted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := eligibleInput()
			tt.mutate(&in)
			assert.Equal(t, tt.want, eligibility.Check(in))
		})
	}
}

// A debtor with every later check also failing is told about the debt first;
// the first-failing reason is deterministic.
func TestDebtReportedBeforeMissingPresence(t *testing.T) {
	in := eligibleInput()
	in.Owner.InDebt = true
	in.HasPresence = false
	in.HasPriorVote = true

	assert.Equal(t, models.ReasonOwnerInDebt, eligibility.Check(in))
}
