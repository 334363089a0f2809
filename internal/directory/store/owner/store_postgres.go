package owner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agorax/internal/directory/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
)

// PostgresStore persists owners.
//
// Schema:
//
//	CREATE TABLE owners (
//	    id UUID PRIMARY KEY,
//	    condominium_id UUID NOT NULL REFERENCES condominiums(id),
//	    name TEXT NOT NULL,
//	    coefficient DOUBLE PRECISION NOT NULL CHECK (coefficient > 0),
//	    in_debt BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, owner *models.Owner) error {
	query := `
		INSERT INTO owners (id, condominium_id, name, coefficient, in_debt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(owner.ID), uuid.UUID(owner.CondominiumID), owner.Name,
		owner.Coefficient, owner.InDebt, owner.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert owner: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, ownerID id.OwnerID) (*models.Owner, error) {
	query := `
		SELECT id, condominium_id, name, coefficient, in_debt, created_at
		FROM owners WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(ownerID)))
}

func (s *PostgresStore) ListByCondominium(ctx context.Context, condominiumID id.CondominiumID) ([]*models.Owner, error) {
	query := `
		SELECT id, condominium_id, name, coefficient, in_debt, created_at
		FROM owners WHERE condominium_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(condominiumID))
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []*models.Owner
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

func (s *PostgresStore) SetDebtFlag(ctx context.Context, ownerID id.OwnerID, inDebt bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE owners SET in_debt = $2 WHERE id = $1`,
		uuid.UUID(ownerID), inDebt)
	if err != nil {
		return fmt.Errorf("set debt flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set debt flag: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row rowScanner) (*models.Owner, error) {
	owner, err := scanOwner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return owner, err
}

func scanOwner(row rowScanner) (*models.Owner, error) {
	var owner models.Owner
	var rawID, rawCondoID uuid.UUID
	if err := row.Scan(&rawID, &rawCondoID, &owner.Name, &owner.Coefficient, &owner.InDebt, &owner.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan owner: %w", err)
	}
	owner.ID = id.OwnerID(rawID)
	owner.CondominiumID = id.CondominiumID(rawCondoID)
	return &owner, nil
}
