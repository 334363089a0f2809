package models

import (
	"time"

	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
)

// Condominium is the residential association an assembly belongs to.
//
// Invariants:
//   - TotalCoefficient > 0 (sum of all unit coefficients)
//
// Meetings snapshot TotalCoefficient at creation; a condominium edit after
// that never changes a running meeting's quorum denominator.
type Condominium struct {
	ID               id.CondominiumID `json:"id"`
	Name             string           `json:"name"`
	TotalCoefficient float64          `json:"total_coefficient"`
	CreatedAt        time.Time        `json:"created_at"`
}

func NewCondominium(condominiumID id.CondominiumID, name string, totalCoefficient float64, now time.Time) (*Condominium, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "condominium name is required")
	}
	if totalCoefficient <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "condominium total coefficient must be positive")
	}
	return &Condominium{
		ID:               condominiumID,
		Name:             name,
		TotalCoefficient: totalCoefficient,
		CreatedAt:        now,
	}, nil
}

// Owner holds a unit in a condominium. Coefficient is the owner's fractional
// share of total ownership; InDebt is maintained by the external billing
// collaborator and only read here.
type Owner struct {
	ID            id.OwnerID       `json:"id"`
	CondominiumID id.CondominiumID `json:"condominium_id"`
	Name          string           `json:"name"`
	Coefficient   float64          `json:"coefficient"`
	InDebt        bool             `json:"in_debt"`
	CreatedAt     time.Time        `json:"created_at"`
}

func NewOwner(ownerID id.OwnerID, condominiumID id.CondominiumID, name string, coefficient float64, now time.Time) (*Owner, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "owner name is required")
	}
	if condominiumID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner condominium is required")
	}
	if coefficient <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner coefficient must be positive")
	}
	return &Owner{
		ID:            ownerID,
		CondominiumID: condominiumID,
		Name:          name,
		Coefficient:   coefficient,
		CreatedAt:     now,
	}, nil
}
