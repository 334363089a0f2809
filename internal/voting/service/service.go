package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	attendance "agorax/internal/attendance/models"
	directory "agorax/internal/directory/models"
	meetingmodels "agorax/internal/meeting/models"
	"agorax/internal/voting/eligibility"
	"agorax/internal/voting/metrics"
	"agorax/internal/voting/models"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/platform/audit"
	"agorax/pkg/platform/sentinel"
	"agorax/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=../mocks/service_mocks.go -package=mocks

// VoteStore is the append-only ledger. AppendIfAbsent must be atomic per
// (agenda item, owner): under concurrent duplicates exactly one append
// succeeds and the rest return sentinel.ErrConflict.
type VoteStore interface {
	AppendIfAbsent(ctx context.Context, vote *models.Vote) error
	ListByItem(ctx context.Context, itemID id.AgendaItemID) ([]*models.Vote, error)
	HasVote(ctx context.Context, itemID id.AgendaItemID, ownerID id.OwnerID) (bool, error)
	HasVoteInMeeting(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (bool, error)
}

type AgendaItemReader interface {
	FindByID(ctx context.Context, itemID id.AgendaItemID) (*meetingmodels.AgendaItem, error)
}

type MeetingReader interface {
	FindByID(ctx context.Context, meetingID id.MeetingID) (*meetingmodels.Meeting, error)
}

type OwnerReader interface {
	FindByID(ctx context.Context, ownerID id.OwnerID) (*directory.Owner, error)
}

type PresenceReader interface {
	Find(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (*attendance.Presence, error)
}

// Codec seals vote values before persistence and opens them for results.
type Codec interface {
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(ciphertext []byte) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// VoteRecord is the API projection of a ledger entry. Value is populated
// only once the meeting is closed; until then results stay sealed.
type VoteRecord struct {
	ID           id.VoteID       `json:"id"`
	AgendaItemID id.AgendaItemID `json:"agenda_item_id"`
	MeetingID    id.MeetingID    `json:"meeting_id"`
	OwnerID      id.OwnerID      `json:"owner_id"`
	IPAddress    string          `json:"ip_address"`
	CastAt       time.Time       `json:"cast_at"`
	Value        string          `json:"value,omitempty"`
}

// Service admits and records votes.
type Service struct {
	votes          VoteStore
	agendas        AgendaItemReader
	meetings       MeetingReader
	owners         OwnerReader
	presences      PresenceReader
	codec          Codec
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(votes VoteStore, agendas AgendaItemReader, meetings MeetingReader,
	owners OwnerReader, presences PresenceReader, voteCodec Codec, opts ...Option) *Service {
	s := &Service{
		votes:     votes,
		agendas:   agendas,
		meetings:  meetings,
		owners:    owners,
		presences: presences,
		codec:     voteCodec,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CastVote runs the ordered eligibility checks and appends the encrypted
// vote. The eligibility pass is the fast path; the store's atomic append is
// the authority on duplicates, so a concurrent second cast still loses.
func (s *Service) CastVote(ctx context.Context, itemID id.AgendaItemID, ownerID id.OwnerID, value models.Value) (*models.Vote, error) {
	start := time.Now()
	defer s.observeCastVote(start)

	item, err := s.agendas.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "agenda item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agenda item")
	}
	meeting, err := s.meetings.FindByID(ctx, item.MeetingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "meeting not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load meeting")
	}
	owner, err := s.owners.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load owner")
	}

	hasPresence := true
	if _, err := s.presences.Find(ctx, meeting.ID, ownerID); err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load presence")
		}
		hasPresence = false
	}
	hasPriorVote, err := s.votes.HasVote(ctx, itemID, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check prior votes")
	}

	if reason := eligibility.Check(eligibility.Input{
		Meeting:      meeting,
		Item:         item,
		Owner:        owner,
		HasPresence:  hasPresence,
		HasPriorVote: hasPriorVote,
	}); reason != "" {
		s.incrementVoteRejected(string(reason))
		return nil, dErrors.New(dErrors.CodeEligibilityRejected, "owner is not eligible to vote").
			WithDetails(map[string]any{"reason": string(reason)})
	}

	encrypted, err := s.codec.Encrypt(string(value))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encrypt vote value")
	}
	vote, err := models.NewVote(id.VoteID(uuid.New()), itemID, meeting.ID, ownerID,
		encrypted, requestcontext.ClientIP(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.votes.AppendIfAbsent(ctx, vote); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.incrementVoteRejected(string(models.ReasonAlreadyVoted))
			return nil, dErrors.New(dErrors.CodeConflict, "owner has already voted on this agenda item")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append vote")
	}

	if s.metrics != nil {
		s.metrics.IncrementVoteCast()
	}
	s.logAudit(ctx, vote,
		fmt.Sprintf("owner %s voted on agenda item %s", ownerID, itemID))
	return vote, nil
}

// ListByItem returns the ledger entries for an agenda item. Vote values stay
// sealed until the meeting is closed; before that only metadata is exposed.
func (s *Service) ListByItem(ctx context.Context, itemID id.AgendaItemID) ([]*VoteRecord, error) {
	item, err := s.agendas.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "agenda item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agenda item")
	}
	meeting, err := s.meetings.FindByID(ctx, item.MeetingID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load meeting")
	}

	votes, err := s.votes.ListByItem(ctx, itemID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list votes")
	}

	records := make([]*VoteRecord, 0, len(votes))
	for _, vote := range votes {
		record := &VoteRecord{
			ID:           vote.ID,
			AgendaItemID: vote.AgendaItemID,
			MeetingID:    vote.MeetingID,
			OwnerID:      vote.OwnerID,
			IPAddress:    vote.IPAddress,
			CastAt:       vote.CastAt,
		}
		if meeting.IsClosed() {
			value, err := s.codec.Decrypt(vote.EncryptedValue)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decrypt vote value")
			}
			record.Value = value
		}
		records = append(records, record)
	}
	return records, nil
}

// HasVoteInMeeting reports whether the owner has any recorded vote in the
// meeting. The attendance registry consults this before revoking a presence.
func (s *Service) HasVoteInMeeting(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (bool, error) {
	return s.votes.HasVoteInMeeting(ctx, meetingID, ownerID)
}

func (s *Service) observeCastVote(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCastVote(start)
	}
}

func (s *Service) incrementVoteRejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementVoteRejected(reason)
	}
}

func (s *Service) logAudit(ctx context.Context, vote *models.Vote, description string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(audit.EventVoteCast),
			"vote_id", vote.ID.String(),
			"agenda_item_id", vote.AgendaItemID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit")
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:     requestcontext.ActorFrom(ctx).OwnerID,
		Action:      string(audit.EventVoteCast),
		EntityType:  audit.EntityVote,
		EntityID:    vote.ID.String(),
		Description: description,
		RequestID:   requestcontext.RequestID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
	})
}
