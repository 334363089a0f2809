package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agorax/internal/attendance/models"
	directory "agorax/internal/directory/models"
	meetingmodels "agorax/internal/meeting/models"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/platform/audit"
	"agorax/pkg/platform/sentinel"
	"agorax/pkg/requestcontext"
)

type PresenceStore interface {
	Upsert(ctx context.Context, presence *models.Presence) error
	Find(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (*models.Presence, error)
	Remove(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) error
	ListByMeeting(ctx context.Context, meetingID id.MeetingID) ([]*models.Presence, error)
}

type MeetingReader interface {
	FindByID(ctx context.Context, meetingID id.MeetingID) (*meetingmodels.Meeting, error)
}

type OwnerReader interface {
	FindByID(ctx context.Context, ownerID id.OwnerID) (*directory.Owner, error)
}

// VoteChecker reports whether an owner has already voted in a meeting.
// Revoking a presence that backs a recorded vote would falsify the quorum
// the vote was admitted under, so such revocations are refused.
type VoteChecker interface {
	HasVoteInMeeting(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service maintains the attendance registry for meetings.
type Service struct {
	presences             PresenceStore
	meetings              MeetingReader
	owners                OwnerReader
	votes                 VoteChecker
	allowLateRegistration bool
	logger                *slog.Logger
	auditPublisher        AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithLateRegistration controls whether owners may register while the
// meeting is already in progress. Enabled by default (late arrivals count).
func WithLateRegistration(allowed bool) Option {
	return func(s *Service) {
		s.allowLateRegistration = allowed
	}
}

// New constructs a Service.
func New(presences PresenceStore, meetings MeetingReader, owners OwnerReader, votes VoteChecker, opts ...Option) *Service {
	s := &Service{
		presences:             presences,
		meetings:              meetings,
		owners:                owners,
		votes:                 votes,
		allowLateRegistration: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register confirms an owner's attendance at a meeting, capturing the
// owner's coefficient at registration time. Registering twice is an upsert:
// the second call refreshes the captured coefficient and timestamp.
func (s *Service) Register(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (*models.Presence, error) {
	meeting, err := s.loadMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRegistrationWindow(meeting); err != nil {
		return nil, err
	}

	owner, err := s.owners.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load owner")
	}
	if owner.CondominiumID != meeting.CondominiumID {
		return nil, dErrors.New(dErrors.CodeValidation, "owner does not belong to the meeting's condominium")
	}

	presence := &models.Presence{
		MeetingID:    meetingID,
		OwnerID:      ownerID,
		Coefficient:  owner.Coefficient,
		RegisteredAt: requestcontext.Now(ctx),
	}
	if err := s.presences.Upsert(ctx, presence); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register presence")
	}

	s.logAudit(ctx, audit.EventPresenceRegistered, meetingID.String(),
		fmt.Sprintf("owner %s registered with coefficient %.2f", ownerID, owner.Coefficient))
	return presence, nil
}

// Revoke removes a previously registered presence. It refuses to revoke once
// the owner has cast any vote in the meeting.
func (s *Service) Revoke(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) error {
	meeting, err := s.loadMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting.IsClosed() {
		return dErrors.New(dErrors.CodeInvalidState, "meeting is closed")
	}

	if _, err := s.presences.Find(ctx, meetingID, ownerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "presence not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load presence")
	}

	hasVoted, err := s.votes.HasVoteInMeeting(ctx, meetingID, ownerID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check votes for presence")
	}
	if hasVoted {
		return dErrors.New(dErrors.CodeConflict, "presence backs a recorded vote and cannot be revoked")
	}

	if err := s.presences.Remove(ctx, meetingID, ownerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "presence not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke presence")
	}

	s.logAudit(ctx, audit.EventPresenceRevoked, meetingID.String(),
		fmt.Sprintf("owner %s revoked attendance", ownerID))
	return nil
}

// List returns the meeting's registered presences.
func (s *Service) List(ctx context.Context, meetingID id.MeetingID) ([]*models.Presence, error) {
	if _, err := s.loadMeeting(ctx, meetingID); err != nil {
		return nil, err
	}
	presences, err := s.presences.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list presences")
	}
	return presences, nil
}

func (s *Service) loadMeeting(ctx context.Context, meetingID id.MeetingID) (*meetingmodels.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "meeting not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load meeting")
	}
	return meeting, nil
}

func (s *Service) checkRegistrationWindow(meeting *meetingmodels.Meeting) error {
	switch {
	case meeting.IsClosed():
		return dErrors.New(dErrors.CodeInvalidState, "meeting is closed")
	case meeting.IsInProgress() && !s.allowLateRegistration:
		return dErrors.New(dErrors.CodeInvalidState, "late registration is disabled for in-progress meetings")
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, action audit.AuditEvent, meetingID, description string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"meeting_id", meetingID,
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit")
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:     requestcontext.ActorFrom(ctx).OwnerID,
		Action:      string(action),
		EntityType:  audit.EntityPresence,
		EntityID:    meetingID,
		Description: description,
		RequestID:   requestcontext.RequestID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
	})
}
