package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"agorax/internal/directory/models"
	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/platform/sentinel"
	"agorax/pkg/requestcontext"
)

type CondominiumStore interface {
	Create(ctx context.Context, condominium *models.Condominium) error
	FindByID(ctx context.Context, condominiumID id.CondominiumID) (*models.Condominium, error)
	Update(ctx context.Context, condominium *models.Condominium) error
}

type OwnerStore interface {
	Create(ctx context.Context, owner *models.Owner) error
	FindByID(ctx context.Context, ownerID id.OwnerID) (*models.Owner, error)
	ListByCondominium(ctx context.Context, condominiumID id.CondominiumID) ([]*models.Owner, error)
	SetDebtFlag(ctx context.Context, ownerID id.OwnerID, inDebt bool) error
}

// Service manages the condominium and owner reference data the assembly
// engine reads. Writes are administrative; the debt flag additionally comes
// from the external billing collaborator.
type Service struct {
	condominiums CondominiumStore
	owners       OwnerStore
	logger       *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(condominiums CondominiumStore, owners OwnerStore, opts ...Option) *Service {
	s := &Service{condominiums: condominiums, owners: owners}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateCondominium(ctx context.Context, name string, totalCoefficient float64) (*models.Condominium, error) {
	condominium, err := models.NewCondominium(id.CondominiumID(uuid.New()), name, totalCoefficient, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.condominiums.Create(ctx, condominium); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create condominium")
	}
	return condominium, nil
}

func (s *Service) GetCondominium(ctx context.Context, condominiumID id.CondominiumID) (*models.Condominium, error) {
	condominium, err := s.condominiums.FindByID(ctx, condominiumID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "condominium not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load condominium")
	}
	return condominium, nil
}

func (s *Service) CreateOwner(ctx context.Context, condominiumID id.CondominiumID, name string, coefficient float64) (*models.Owner, error) {
	if _, err := s.GetCondominium(ctx, condominiumID); err != nil {
		return nil, err
	}
	owner, err := models.NewOwner(id.OwnerID(uuid.New()), condominiumID, name, coefficient, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.owners.Create(ctx, owner); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create owner")
	}
	return owner, nil
}

func (s *Service) GetOwner(ctx context.Context, ownerID id.OwnerID) (*models.Owner, error) {
	owner, err := s.owners.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load owner")
	}
	return owner, nil
}

func (s *Service) ListOwners(ctx context.Context, condominiumID id.CondominiumID) ([]*models.Owner, error) {
	owners, err := s.owners.ListByCondominium(ctx, condominiumID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list owners")
	}
	return owners, nil
}

// SetDebtFlag records the billing collaborator's verdict. The engine only
// reads the flag during vote eligibility; it never computes debt itself.
func (s *Service) SetDebtFlag(ctx context.Context, ownerID id.OwnerID, inDebt bool) error {
	if err := s.owners.SetDebtFlag(ctx, ownerID, inDebt); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update debt flag")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "owner debt flag updated",
			"owner_id", ownerID.String(),
			"in_debt", inDebt,
			"request_id", requestcontext.RequestID(ctx))
	}
	return nil
}
