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
	"agorax/internal/meeting/metrics"
	"agorax/internal/meeting/models"
	"agorax/internal/quorum"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/platform/audit"
	"agorax/pkg/platform/sentinel"
	"agorax/pkg/requestcontext"
)

type MeetingStore interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	FindByID(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error)
	ListByCondominium(ctx context.Context, condominiumID id.CondominiumID) ([]*models.Meeting, error)
	Execute(ctx context.Context, meetingID id.MeetingID,
		validate func(ctx context.Context, m *models.Meeting) error,
		apply func(m *models.Meeting)) (*models.Meeting, error)
	OpenExclusive(ctx context.Context, meetingID id.MeetingID,
		validate func(ctx context.Context, m *models.Meeting) error,
		apply func(m *models.Meeting)) (*models.Meeting, error)
}

type AgendaStore interface {
	Create(ctx context.Context, item *models.AgendaItem) error
	FindByID(ctx context.Context, itemID id.AgendaItemID) (*models.AgendaItem, error)
	ListByMeeting(ctx context.Context, meetingID id.MeetingID) ([]*models.AgendaItem, error)
	Execute(ctx context.Context, itemID id.AgendaItemID,
		validate func(ctx context.Context, item *models.AgendaItem) error,
		apply func(item *models.AgendaItem)) (*models.AgendaItem, error)
	OpenExclusive(ctx context.Context, itemID id.AgendaItemID,
		validate func(ctx context.Context, item *models.AgendaItem) error,
		apply func(item *models.AgendaItem)) (*models.AgendaItem, error)
}

type CondominiumReader interface {
	FindByID(ctx context.Context, condominiumID id.CondominiumID) (*directory.Condominium, error)
}

// AttendanceReader supplies the presence roster the quorum gate sums over.
// Inside OpenMeeting it is called with the store's transaction context so the
// roster read and the state transition commit as one decision.
type AttendanceReader interface {
	ListByMeeting(ctx context.Context, meetingID id.MeetingID) ([]*attendance.Presence, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// QuorumDetails is the aggregate quorum verdict plus the presences behind it.
type QuorumDetails struct {
	quorum.Result
	RoundedPercentage float64                `json:"rounded_percentage"`
	Presences         []*attendance.Presence `json:"presences"`
}

// Service orchestrates the meeting and agenda item lifecycles.
type Service struct {
	meetings       MeetingStore
	agendas        AgendaStore
	condominiums   CondominiumReader
	attendance     AttendanceReader
	quorum         quorum.Calculator
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
func New(meetings MeetingStore, agendas AgendaStore, condominiums CondominiumReader,
	attendanceReader AttendanceReader, calculator quorum.Calculator, opts ...Option) *Service {
	s := &Service{
		meetings:     meetings,
		agendas:      agendas,
		condominiums: condominiums,
		attendance:   attendanceReader,
		quorum:       calculator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMeeting schedules an assembly for a condominium, snapshotting the
// condominium's live total coefficient as the quorum denominator for the
// life of the meeting.
func (s *Service) CreateMeeting(ctx context.Context, condominiumID id.CondominiumID, title string, scheduledFor time.Time) (*models.Meeting, error) {
	condominium, err := s.condominiums.FindByID(ctx, condominiumID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "condominium not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load condominium")
	}

	meeting, err := models.NewMeeting(id.MeetingID(uuid.New()), condominiumID, title,
		scheduledFor, condominium.TotalCoefficient, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create meeting")
	}

	s.logAudit(ctx, audit.EventMeetingCreated, audit.EntityMeeting, meeting.ID.String(),
		fmt.Sprintf("meeting %q scheduled for condominium %s", title, condominiumID))
	return meeting, nil
}

// GetMeeting returns a meeting by id.
func (s *Service) GetMeeting(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "meeting not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load meeting")
	}
	return meeting, nil
}

// ListMeetings returns the meetings of a condominium.
func (s *Service) ListMeetings(ctx context.Context, condominiumID id.CondominiumID) ([]*models.Meeting, error) {
	meetings, err := s.meetings.ListByCondominium(ctx, condominiumID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list meetings")
	}
	return meetings, nil
}

// OpenMeeting transitions a meeting from Created to InProgress. The quorum
// gate runs inside the store's validate callback, so the attendance read, the
// verdict, and the transition are one atomic decision; the store additionally
// refuses to open while a sibling meeting of the condominium is in progress.
func (s *Service) OpenMeeting(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error) {
	now := requestcontext.Now(ctx)
	meeting, err := s.meetings.OpenExclusive(ctx, meetingID,
		func(txCtx context.Context, m *models.Meeting) error {
			if err := m.CanOpen(); err != nil {
				s.incrementOpenRejected("invalid_state")
				return err
			}
			result, err := s.computeQuorum(txCtx, m)
			if err != nil {
				return err
			}
			if !result.MeetsMinimum {
				s.incrementOpenRejected("quorum_not_met")
				return dErrors.New(dErrors.CodeQuorumNotMet, "quorum not met").
					WithDetails(map[string]any{
						"percentage": result.RoundedPercentage(),
						"minimum":    result.Minimum,
					})
			}
			return nil
		},
		func(m *models.Meeting) { m.ApplyOpen(now) },
	)
	if err != nil {
		return nil, s.translateTransitionErr(err, "meeting", "another meeting of this condominium is already in progress")
	}

	if s.metrics != nil {
		s.metrics.IncrementMeetingOpened()
	}
	s.logAudit(ctx, audit.EventMeetingOpened, audit.EntityMeeting, meetingID.String(),
		"meeting opened with quorum met")
	return meeting, nil
}

// CloseMeeting transitions a meeting from InProgress to Closed. Closing is
// terminal; encrypted vote values become listable once closed.
func (s *Service) CloseMeeting(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error) {
	now := requestcontext.Now(ctx)
	meeting, err := s.meetings.Execute(ctx, meetingID,
		func(_ context.Context, m *models.Meeting) error { return m.CanClose() },
		func(m *models.Meeting) { m.ApplyClose(now) },
	)
	if err != nil {
		return nil, s.translateTransitionErr(err, "meeting", "")
	}

	if s.metrics != nil {
		s.metrics.IncrementMeetingClosed()
	}
	s.logAudit(ctx, audit.EventMeetingClosed, audit.EntityMeeting, meetingID.String(),
		"meeting closed")
	return meeting, nil
}

// AddAgendaItem appends a pending item to a meeting's agenda. Items can be
// added up until the meeting closes.
func (s *Service) AddAgendaItem(ctx context.Context, meetingID id.MeetingID, title string) (*models.AgendaItem, error) {
	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.IsClosed() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "meeting is closed")
	}

	item, err := models.NewAgendaItem(id.AgendaItemID(uuid.New()), meetingID, title, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.agendas.Create(ctx, item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create agenda item")
	}

	s.logAudit(ctx, audit.EventAgendaItemAdded, audit.EntityAgendaItem, item.ID.String(),
		fmt.Sprintf("agenda item %q added to meeting %s", title, meetingID))
	return item, nil
}

// ListAgendaItems returns the agenda of a meeting.
func (s *Service) ListAgendaItems(ctx context.Context, meetingID id.MeetingID) ([]*models.AgendaItem, error) {
	if _, err := s.GetMeeting(ctx, meetingID); err != nil {
		return nil, err
	}
	items, err := s.agendas.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list agenda items")
	}
	return items, nil
}

// OpenAgendaItem opens a pending item for voting. Requires the meeting in
// progress; the store refuses while a sibling item of the meeting is open.
func (s *Service) OpenAgendaItem(ctx context.Context, itemID id.AgendaItemID) (*models.AgendaItem, error) {
	now := requestcontext.Now(ctx)
	item, err := s.agendas.OpenExclusive(ctx, itemID,
		func(txCtx context.Context, it *models.AgendaItem) error {
			if err := it.CanOpen(); err != nil {
				return err
			}
			meeting, err := s.meetings.FindByID(txCtx, it.MeetingID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load meeting for agenda item")
			}
			if !meeting.IsInProgress() {
				return dErrors.New(dErrors.CodeInvalidState, "meeting is not in progress")
			}
			return nil
		},
		func(it *models.AgendaItem) { it.ApplyOpen(now) },
	)
	if err != nil {
		return nil, s.translateTransitionErr(err, "agenda item", "another agenda item of this meeting is already open")
	}

	s.logAudit(ctx, audit.EventAgendaItemOpened, audit.EntityAgendaItem, itemID.String(),
		"agenda item opened for voting")
	return item, nil
}

// CloseAgendaItem closes an open item. Unconditional from Open.
func (s *Service) CloseAgendaItem(ctx context.Context, itemID id.AgendaItemID) (*models.AgendaItem, error) {
	now := requestcontext.Now(ctx)
	item, err := s.agendas.Execute(ctx, itemID,
		func(_ context.Context, it *models.AgendaItem) error { return it.CanClose() },
		func(it *models.AgendaItem) { it.ApplyClose(now) },
	)
	if err != nil {
		return nil, s.translateTransitionErr(err, "agenda item", "")
	}

	s.logAudit(ctx, audit.EventAgendaItemClosed, audit.EntityAgendaItem, itemID.String(),
		"agenda item closed")
	return item, nil
}

// GetQuorum reports the meeting's current quorum status along with the
// contributing presences. Informational; the authoritative gate runs in
// OpenMeeting.
func (s *Service) GetQuorum(ctx context.Context, meetingID id.MeetingID) (*QuorumDetails, error) {
	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	presences, err := s.attendance.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list presences")
	}

	present := 0.0
	for _, presence := range presences {
		present += presence.Coefficient
	}
	result := s.quorum.Compute(present, meeting.TotalCoefficientSnapshot)
	if s.metrics != nil {
		s.metrics.ObserveQuorumCheck(result.MeetsMinimum)
	}
	if presences == nil {
		presences = []*attendance.Presence{}
	}
	return &QuorumDetails{
		Result:            result,
		RoundedPercentage: result.RoundedPercentage(),
		Presences:         presences,
	}, nil
}

func (s *Service) computeQuorum(ctx context.Context, meeting *models.Meeting) (quorum.Result, error) {
	presences, err := s.attendance.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return quorum.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list presences for quorum")
	}
	present := 0.0
	for _, presence := range presences {
		present += presence.Coefficient
	}
	result := s.quorum.Compute(present, meeting.TotalCoefficientSnapshot)
	if s.metrics != nil {
		s.metrics.ObserveQuorumCheck(result.MeetsMinimum)
	}
	return result, nil
}

// translateTransitionErr maps store sentinels to coded errors; coded errors
// from validate callbacks pass through untouched.
func (s *Service) translateTransitionErr(err error, entity, conflictMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		if conflictMsg == "" {
			conflictMsg = entity + " was modified concurrently"
		}
		return dErrors.New(dErrors.CodeConflict, conflictMsg)
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transition "+entity)
}

func (s *Service) incrementOpenRejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementOpenRejected(reason)
	}
}

func (s *Service) logAudit(ctx context.Context, action audit.AuditEvent, entityType, entityID, description string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"entity_type", entityType,
			"entity_id", entityID,
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit")
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:     requestcontext.ActorFrom(ctx).OwnerID,
		Action:      string(action),
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		RequestID:   requestcontext.RequestID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
	})
}
