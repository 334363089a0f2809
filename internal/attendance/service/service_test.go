package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"agorax/internal/attendance/service"
	"agorax/internal/attendance/store"
	directory "agorax/internal/directory/models"
	ownerstore "agorax/internal/directory/store/owner"
	meetingmodels "agorax/internal/meeting/models"
	meetingstore "agorax/internal/meeting/store/meeting"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/requestcontext"
)

type stubVoteChecker struct {
	hasVote bool
}

func (c *stubVoteChecker) HasVoteInMeeting(context.Context, id.MeetingID, id.OwnerID) (bool, error) {
	return c.hasVote, nil
}

type AttendanceServiceSuite struct {
	suite.Suite

	presences *store.InMemory
	meetings  *meetingstore.InMemory
	owners    *ownerstore.InMemory
	votes     *stubVoteChecker
	svc       *service.Service

	condominiumID id.CondominiumID
	meetingID     id.MeetingID
	ownerID       id.OwnerID
}

func TestAttendanceServiceSuite(t *testing.T) {
	suite.Run(t, new(AttendanceServiceSuite))
}

func (s *AttendanceServiceSuite) SetupTest() {
	s.presences = store.NewInMemory()
	s.meetings = meetingstore.NewInMemory()
	s.owners = ownerstore.NewInMemory()
	s.votes = &stubVoteChecker{}
	s.svc = service.New(s.presences, s.meetings, s.owners, s.votes)

	ctx := context.Background()
	now := time.Now()

	s.condominiumID = id.CondominiumID(uuid.New())
	s.meetingID = id.MeetingID(uuid.New())
	s.ownerID = id.OwnerID(uuid.New())

	meeting, err := meetingmodels.NewMeeting(s.meetingID, s.condominiumID, "annual assembly", now, 100, now)
	s.Require().NoError(err)
	s.Require().NoError(s.meetings.Create(ctx, meeting))

	owner, err := directory.NewOwner(s.ownerID, s.condominiumID, "Apt 101", 2.5, now)
	s.Require().NoError(err)
	s.Require().NoError(s.owners.Create(ctx, owner))
}

func (s *AttendanceServiceSuite) TestRegisterCapturesCoefficient() {
	registeredAt := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), registeredAt)

	presence, err := s.svc.Register(ctx, s.meetingID, s.ownerID)
	s.Require().NoError(err)
	s.Equal(2.5, presence.Coefficient)
	s.Equal(registeredAt, presence.RegisteredAt)

	listed, err := s.svc.List(ctx, s.meetingID)
	s.Require().NoError(err)
	s.Len(listed, 1)
}

func (s *AttendanceServiceSuite) TestRegisterIsIdempotentUpsert() {
	ctx := context.Background()
	_, err := s.svc.Register(ctx, s.meetingID, s.ownerID)
	s.Require().NoError(err)
	_, err = s.svc.Register(ctx, s.meetingID, s.ownerID)
	s.Require().NoError(err)

	listed, err := s.svc.List(ctx, s.meetingID)
	s.Require().NoError(err)
	s.Len(listed, 1)
}

func (s *AttendanceServiceSuite) TestRegisterRejectsUnknownMeeting() {
	_, err := s.svc.Register(context.Background(), id.MeetingID(uuid.New()), s.ownerID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AttendanceServiceSuite) TestRegisterRejectsForeignOwner() {
	ctx := context.Background()
	strangerID := id.OwnerID(uuid.New())
	stranger, err := directory.NewOwner(strangerID, id.CondominiumID(uuid.New()), "Apt 900", 1.0, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.owners.Create(ctx, stranger))

	_, err = s.svc.Register(ctx, s.meetingID, strangerID)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *AttendanceServiceSuite) TestRegisterRejectsClosedMeeting() {
	s.transitionMeetingToClosed()

	_, err := s.svc.Register(context.Background(), s.meetingID, s.ownerID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *AttendanceServiceSuite) TestLateRegistrationFollowsConfiguration() {
	s.openMeeting()

	// Default: late arrivals welcome.
	_, err := s.svc.Register(context.Background(), s.meetingID, s.ownerID)
	s.Require().NoError(err)

	strict := service.New(s.presences, s.meetings, s.owners, s.votes,
		service.WithLateRegistration(false))
	_, err = strict.Register(context.Background(), s.meetingID, s.ownerID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *AttendanceServiceSuite) TestRevokeRemovesPresence() {
	ctx := context.Background()
	_, err := s.svc.Register(ctx, s.meetingID, s.ownerID)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Revoke(ctx, s.meetingID, s.ownerID))

	listed, err := s.svc.List(ctx, s.meetingID)
	s.Require().NoError(err)
	s.Empty(listed)
}

func (s *AttendanceServiceSuite) TestRevokeUnknownPresenceIsNotFound() {
	err := s.svc.Revoke(context.Background(), s.meetingID, s.ownerID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AttendanceServiceSuite) TestRevokeRefusedOnceOwnerVoted() {
	ctx := context.Background()
	_, err := s.svc.Register(ctx, s.meetingID, s.ownerID)
	s.Require().NoError(err)

	s.votes.hasVote = true
	err = s.svc.Revoke(ctx, s.meetingID, s.ownerID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// The presence stays in place.
	listed, err := s.svc.List(ctx, s.meetingID)
	s.Require().NoError(err)
	s.Len(listed, 1)
}

func (s *AttendanceServiceSuite) openMeeting() {
	_, err := s.meetings.Execute(context.Background(), s.meetingID,
		func(_ context.Context, m *meetingmodels.Meeting) error { return m.CanOpen() },
		func(m *meetingmodels.Meeting) { m.ApplyOpen(time.Now()) },
	)
	require.NoError(s.T(), err)
}

func (s *AttendanceServiceSuite) transitionMeetingToClosed() {
	s.openMeeting()
	_, err := s.meetings.Execute(context.Background(), s.meetingID,
		func(_ context.Context, m *meetingmodels.Meeting) error { return m.CanClose() },
		func(m *meetingmodels.Meeting) { m.ApplyClose(time.Now()) },
	)
	require.NoError(s.T(), err)
}
