package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	attendance "agorax/internal/attendance/models"
	directory "agorax/internal/directory/models"
	meetingmodels "agorax/internal/meeting/models"
	"agorax/internal/voting/codec"
	"agorax/internal/voting/mocks"
	"agorax/internal/voting/models"
	"agorax/internal/voting/service"
	votestore "agorax/internal/voting/store"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/platform/sentinel"
	"agorax/pkg/requestcontext"
)

type fixture struct {
	ctrl      *gomock.Controller
	votes     *mocks.MockVoteStore
	agendas   *mocks.MockAgendaItemReader
	meetings  *mocks.MockMeetingReader
	owners    *mocks.MockOwnerReader
	presences *mocks.MockPresenceReader

	svc *service.Service

	meeting *meetingmodels.Meeting
	item    *meetingmodels.AgendaItem
	owner   *directory.Owner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		ctrl:      ctrl,
		votes:     mocks.NewMockVoteStore(ctrl),
		agendas:   mocks.NewMockAgendaItemReader(ctrl),
		meetings:  mocks.NewMockMeetingReader(ctrl),
		owners:    mocks.NewMockOwnerReader(ctrl),
		presences: mocks.NewMockPresenceReader(ctrl),
	}

	voteCodec, err := codec.NewAESGCM(make([]byte, codec.KeySize))
	require.NoError(t, err)
	f.svc = service.New(f.votes, f.agendas, f.meetings, f.owners, f.presences, voteCodec)

	now := time.Now()
	meetingID := id.MeetingID(uuid.New())
	f.meeting = &meetingmodels.Meeting{
		ID:                       meetingID,
		CondominiumID:            id.CondominiumID(uuid.New()),
		Title:                    "assembly",
		TotalCoefficientSnapshot: 100,
		State:                    meetingmodels.MeetingStateInProgress,
		CreatedAt:                now,
	}
	f.item = &meetingmodels.AgendaItem{
		ID:        id.AgendaItemID(uuid.New()),
		MeetingID: meetingID,
		Title:     "budget approval",
		State:     meetingmodels.AgendaItemStateOpen,
		CreatedAt: now,
	}
	f.owner = &directory.Owner{
		ID:            id.OwnerID(uuid.New()),
		CondominiumID: f.meeting.CondominiumID,
		Name:          "Apt 101",
		Coefficient:   2.5,
		CreatedAt:     now,
	}
	return f
}

func (f *fixture) expectResolution() {
	f.agendas.EXPECT().FindByID(gomock.Any(), f.item.ID).Return(f.item, nil)
	f.meetings.EXPECT().FindByID(gomock.Any(), f.meeting.ID).Return(f.meeting, nil)
	f.owners.EXPECT().FindByID(gomock.Any(), f.owner.ID).Return(f.owner, nil)
}

func (f *fixture) expectPresence(present bool) {
	if present {
		f.presences.EXPECT().Find(gomock.Any(), f.meeting.ID, f.owner.ID).
			Return(&attendance.Presence{MeetingID: f.meeting.ID, OwnerID: f.owner.ID, Coefficient: 2.5}, nil)
		return
	}
	f.presences.EXPECT().Find(gomock.Any(), f.meeting.ID, f.owner.ID).
		Return(nil, sentinel.ErrNotFound)
}

func TestCastVoteRecordsEncryptedValue(t *testing.T) {
	f := newFixture(t)
	f.expectResolution()
	f.expectPresence(true)
	f.votes.EXPECT().HasVote(gomock.Any(), f.item.ID, f.owner.ID).Return(false, nil)

	var appended *models.Vote
	f.votes.EXPECT().AppendIfAbsent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, vote *models.Vote) error {
			appended = vote
			return nil
		})

	ctx := requestcontext.WithClientIP(context.Background(), "203.0.113.7")
	vote, err := f.svc.CastVote(ctx, f.item.ID, f.owner.ID, models.ValueYes)
	require.NoError(t, err)

	require.NotNil(t, appended)
	assert.Equal(t, vote.ID, appended.ID)
	assert.Equal(t, f.meeting.ID, appended.MeetingID)
	assert.Equal(t, "203.0.113.7", appended.IPAddress)
	assert.NotEmpty(t, appended.EncryptedValue)
	assert.NotContains(t, string(appended.EncryptedValue), "YES")
}

func TestCastVoteDebtorRejectedBeforePresenceCheck(t *testing.T) {
	f := newFixture(t)
	f.owner.InDebt = true
	f.expectResolution()
	f.expectPresence(false)
	f.votes.EXPECT().HasVote(gomock.Any(), f.item.ID, f.owner.ID).Return(false, nil)

	_, err := f.svc.CastVote(context.Background(), f.item.ID, f.owner.ID, models.ValueNo)
	require.True(t, dErrors.HasCode(err, dErrors.CodeEligibilityRejected))
	assert.Equal(t, string(models.ReasonOwnerInDebt), dErrors.DetailsOf(err)["reason"])
}

func TestCastVoteOnClosedMeeting(t *testing.T) {
	f := newFixture(t)
	f.meeting.State = meetingmodels.MeetingStateClosed
	f.expectResolution()
	f.expectPresence(true)
	f.votes.EXPECT().HasVote(gomock.Any(), f.item.ID, f.owner.ID).Return(false, nil)

	_, err := f.svc.CastVote(context.Background(), f.item.ID, f.owner.ID, models.ValueYes)
	require.True(t, dErrors.HasCode(err, dErrors.CodeEligibilityRejected))
	assert.Equal(t, string(models.ReasonMeetingNotInProgress), dErrors.DetailsOf(err)["reason"])
}

func TestCastVoteOnPendingItem(t *testing.T) {
	f := newFixture(t)
	f.item.State = meetingmodels.AgendaItemStatePending
	f.expectResolution()
	f.expectPresence(true)
	f.votes.EXPECT().HasVote(gomock.Any(), f.item.ID, f.owner.ID).Return(false, nil)

	_, err := f.svc.CastVote(context.Background(), f.item.ID, f.owner.ID, models.ValueYes)
	require.True(t, dErrors.HasCode(err, dErrors.CodeEligibilityRejected))
	assert.Equal(t, string(models.ReasonAgendaItemNotOpen), dErrors.DetailsOf(err)["reason"])
}

func TestCastVoteWithoutPresence(t *testing.T) {
	f := newFixture(t)
	f.expectResolution()
	f.expectPresence(false)
	f.votes.EXPECT().HasVote(gomock.Any(), f.item.ID, f.owner.ID).Return(false, nil)

	_, err := f.svc.CastVote(context.Background(), f.item.ID, f.owner.ID, models.ValueYes)
	require.True(t, dErrors.HasCode(err, dErrors.CodeEligibilityRejected))
	assert.Equal(t, string(models.ReasonAttendanceNotConfirmed), dErrors.DetailsOf(err)["reason"])
}

func TestCastVoteTwiceRejectedByFastPath(t *testing.T) {
	f := newFixture(t)
	f.expectResolution()
	f.expectPresence(true)
	f.votes.EXPECT().HasVote(gomock.Any(), f.item.ID, f.owner.ID).Return(true, nil)

	_, err := f.svc.CastVote(context.Background(), f.item.ID, f.owner.ID, models.ValueYes)
	require.True(t, dErrors.HasCode(err, dErrors.CodeEligibilityRejected))
	assert.Equal(t, string(models.ReasonAlreadyVoted), dErrors.DetailsOf(err)["reason"])
}

// The store is the authority on duplicates: even when the fast path saw no
// prior vote, a concurrent append that loses the race maps to Conflict.
func TestCastVoteStoreConflictWinsOverFastPath(t *testing.T) {
	f := newFixture(t)
	f.expectResolution()
	f.expectPresence(true)
	f.votes.EXPECT().HasVote(gomock.Any(), f.item.ID, f.owner.ID).Return(false, nil)
	f.votes.EXPECT().AppendIfAbsent(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

	_, err := f.svc.CastVote(context.Background(), f.item.ID, f.owner.ID, models.ValueYes)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestCastVoteUnknownAgendaItem(t *testing.T) {
	f := newFixture(t)
	f.agendas.EXPECT().FindByID(gomock.Any(), f.item.ID).Return(nil, sentinel.ErrNotFound)

	_, err := f.svc.CastVote(context.Background(), f.item.ID, f.owner.ID, models.ValueYes)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

// Two goroutines racing the real in-memory ledger: exactly one append wins.
func TestConcurrentDuplicateVotes(t *testing.T) {
	f := newFixture(t)
	ledger := votestore.NewInMemory()
	voteCodec, err := codec.NewAESGCM(make([]byte, codec.KeySize))
	require.NoError(t, err)
	svc := service.New(ledger, f.agendas, f.meetings, f.owners, f.presences, voteCodec)

	f.agendas.EXPECT().FindByID(gomock.Any(), f.item.ID).Return(f.item, nil).AnyTimes()
	f.meetings.EXPECT().FindByID(gomock.Any(), f.meeting.ID).Return(f.meeting, nil).AnyTimes()
	f.owners.EXPECT().FindByID(gomock.Any(), f.owner.ID).Return(f.owner, nil).AnyTimes()
	f.presences.EXPECT().Find(gomock.Any(), f.meeting.ID, f.owner.ID).
		Return(&attendance.Presence{MeetingID: f.meeting.ID, OwnerID: f.owner.ID}, nil).AnyTimes()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CastVote(context.Background(), f.item.ID, f.owner.ID, models.ValueYes)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			rejected := dErrors.HasCode(err, dErrors.CodeConflict) ||
				dErrors.HasCode(err, dErrors.CodeEligibilityRejected)
			assert.True(t, rejected, "loser must map to conflict or already_voted, got %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	votes, err := ledger.ListByItem(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestListByItemKeepsValuesSealedUntilClose(t *testing.T) {
	f := newFixture(t)
	voteCodec, err := codec.NewAESGCM(make([]byte, codec.KeySize))
	require.NoError(t, err)
	sealed, err := voteCodec.Encrypt("ABSTAIN")
	require.NoError(t, err)

	stored := &models.Vote{
		ID:             id.VoteID(uuid.New()),
		AgendaItemID:   f.item.ID,
		MeetingID:      f.meeting.ID,
		OwnerID:        f.owner.ID,
		EncryptedValue: sealed,
		CastAt:         time.Now(),
	}

	f.agendas.EXPECT().FindByID(gomock.Any(), f.item.ID).Return(f.item, nil).Times(2)
	f.meetings.EXPECT().FindByID(gomock.Any(), f.meeting.ID).Return(f.meeting, nil).Times(2)
	f.votes.EXPECT().ListByItem(gomock.Any(), f.item.ID).Return([]*models.Vote{stored}, nil).Times(2)

	svc := service.New(f.votes, f.agendas, f.meetings, f.owners, f.presences, voteCodec)

	records, err := svc.ListByItem(context.Background(), f.item.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Value, "values stay sealed while the meeting is running")
	assert.Equal(t, f.owner.ID, records[0].OwnerID)

	f.meeting.State = meetingmodels.MeetingStateClosed
	records, err = svc.ListByItem(context.Background(), f.item.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ABSTAIN", records[0].Value)
}
