package condominium

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

// PostgresStore persists condominiums.
//
// Schema:
//
//	CREATE TABLE condominiums (
//	    id UUID PRIMARY KEY,
//	    name TEXT NOT NULL,
//	    total_coefficient DOUBLE PRECISION NOT NULL CHECK (total_coefficient > 0),
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, condominium *models.Condominium) error {
	query := `
		INSERT INTO condominiums (id, name, total_coefficient, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(condominium.ID), condominium.Name, condominium.TotalCoefficient, condominium.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert condominium: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, condominiumID id.CondominiumID) (*models.Condominium, error) {
	query := `
		SELECT id, name, total_coefficient, created_at
		FROM condominiums WHERE id = $1
	`
	var condominium models.Condominium
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(condominiumID)).Scan(
		&rawID, &condominium.Name, &condominium.TotalCoefficient, &condominium.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find condominium: %w", err)
	}
	condominium.ID = id.CondominiumID(rawID)
	return &condominium, nil
}

func (s *PostgresStore) Update(ctx context.Context, condominium *models.Condominium) error {
	query := `
		UPDATE condominiums SET name = $2, total_coefficient = $3 WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(condominium.ID), condominium.Name, condominium.TotalCoefficient)
	if err != nil {
		return fmt.Errorf("update condominium: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update condominium: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
