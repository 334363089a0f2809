package meeting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agorax/internal/meeting/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
	txcontext "agorax/pkg/platform/tx"
)

// PostgresStore persists meetings. Transition atomicity comes from
// SELECT ... FOR UPDATE inside a transaction; the single-in-progress
// invariant is backstopped by a partial unique index, so a race between two
// opens is decided by the database, not by application reads.
//
// Schema:
//
//	CREATE TABLE meetings (
//	    id UUID PRIMARY KEY,
//	    condominium_id UUID NOT NULL REFERENCES condominiums(id),
//	    title TEXT NOT NULL,
//	    scheduled_for TIMESTAMPTZ NOT NULL,
//	    total_coefficient_snapshot DOUBLE PRECISION NOT NULL CHECK (total_coefficient_snapshot > 0),
//	    state TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    opened_at TIMESTAMPTZ,
//	    closed_at TIMESTAMPTZ
//	);
//	CREATE UNIQUE INDEX uq_meetings_in_progress
//	    ON meetings (condominium_id) WHERE state = 'IN_PROGRESS';
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const meetingColumns = `id, condominium_id, title, scheduled_for, total_coefficient_snapshot, state, created_at, opened_at, closed_at`

func (s *PostgresStore) Create(ctx context.Context, meeting *models.Meeting) error {
	query := `
		INSERT INTO meetings (` + meetingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(meeting.ID), uuid.UUID(meeting.CondominiumID), meeting.Title,
		meeting.ScheduledFor, meeting.TotalCoefficientSnapshot, string(meeting.State),
		meeting.CreatedAt, meeting.OpenedAt, meeting.ClosedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, meetingID id.MeetingID) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`
	meeting, err := scanMeeting(s.db.QueryRowContext(ctx, query, uuid.UUID(meetingID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return meeting, err
}

func (s *PostgresStore) ListByCondominium(ctx context.Context, condominiumID id.CondominiumID) ([]*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE condominium_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(condominiumID))
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*models.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	return meetings, rows.Err()
}

func (s *PostgresStore) Execute(ctx context.Context, meetingID id.MeetingID,
	validate func(ctx context.Context, m *models.Meeting) error,
	apply func(m *models.Meeting),
) (*models.Meeting, error) {
	return s.execute(ctx, meetingID, false, validate, apply)
}

func (s *PostgresStore) OpenExclusive(ctx context.Context, meetingID id.MeetingID,
	validate func(ctx context.Context, m *models.Meeting) error,
	apply func(m *models.Meeting),
) (*models.Meeting, error) {
	return s.execute(ctx, meetingID, true, validate, apply)
}

func (s *PostgresStore) execute(ctx context.Context, meetingID id.MeetingID, exclusive bool,
	validate func(ctx context.Context, m *models.Meeting) error,
	apply func(m *models.Meeting),
) (*models.Meeting, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1 FOR UPDATE`
	meeting, err := scanMeeting(tx.QueryRowContext(ctx, query, uuid.UUID(meetingID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if exclusive {
		// Committed siblings only; in-flight opens are caught by the partial
		// unique index at UPDATE time.
		var siblingID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM meetings
			WHERE condominium_id = $1 AND state = $2 AND id <> $3
			LIMIT 1
		`, uuid.UUID(meeting.CondominiumID), string(models.MeetingStateInProgress), uuid.UUID(meetingID)).Scan(&siblingID)
		if err == nil {
			return nil, sentinel.ErrConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("check sibling meetings: %w", err)
		}
	}

	// Reads inside validate observe the transaction's snapshot.
	txCtx := txcontext.WithTx(ctx, tx)
	if err := validate(txCtx, meeting); err != nil {
		return nil, err
	}
	apply(meeting)

	_, err = tx.ExecContext(ctx, `
		UPDATE meetings SET state = $2, opened_at = $3, closed_at = $4 WHERE id = $1
	`, uuid.UUID(meeting.ID), string(meeting.State), meeting.OpenedAt, meeting.ClosedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("update meeting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return meeting, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*models.Meeting, error) {
	var meeting models.Meeting
	var rawID, rawCondoID uuid.UUID
	var state string
	var openedAt, closedAt sql.NullTime
	err := row.Scan(&rawID, &rawCondoID, &meeting.Title, &meeting.ScheduledFor,
		&meeting.TotalCoefficientSnapshot, &state, &meeting.CreatedAt, &openedAt, &closedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan meeting: %w", err)
	}
	meeting.ID = id.MeetingID(rawID)
	meeting.CondominiumID = id.CondominiumID(rawCondoID)
	meeting.State = models.MeetingState(state)
	if openedAt.Valid {
		meeting.OpenedAt = &openedAt.Time
	}
	if closedAt.Valid {
		meeting.ClosedAt = &closedAt.Time
	}
	return &meeting, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
