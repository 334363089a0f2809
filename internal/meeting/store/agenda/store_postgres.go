package agenda

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

// PostgresStore persists agenda items. Mirrors the meeting store: row lock
// for transition atomicity, partial unique index for the one-open-item
// invariant.
//
// Schema:
//
//	CREATE TABLE agenda_items (
//	    id UUID PRIMARY KEY,
//	    meeting_id UUID NOT NULL REFERENCES meetings(id),
//	    title TEXT NOT NULL,
//	    state TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    opened_at TIMESTAMPTZ,
//	    closed_at TIMESTAMPTZ
//	);
//	CREATE UNIQUE INDEX uq_agenda_items_open
//	    ON agenda_items (meeting_id) WHERE state = 'OPEN';
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const itemColumns = `id, meeting_id, title, state, created_at, opened_at, closed_at`

func (s *PostgresStore) Create(ctx context.Context, item *models.AgendaItem) error {
	query := `INSERT INTO agenda_items (` + itemColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(item.ID), uuid.UUID(item.MeetingID), item.Title,
		string(item.State), item.CreatedAt, item.OpenedAt, item.ClosedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert agenda item: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, itemID id.AgendaItemID) (*models.AgendaItem, error) {
	query := `SELECT ` + itemColumns + ` FROM agenda_items WHERE id = $1`
	item, err := scanItem(s.db.QueryRowContext(ctx, query, uuid.UUID(itemID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return item, err
}

func (s *PostgresStore) ListByMeeting(ctx context.Context, meetingID id.MeetingID) ([]*models.AgendaItem, error) {
	query := `SELECT ` + itemColumns + ` FROM agenda_items WHERE meeting_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(meetingID))
	if err != nil {
		return nil, fmt.Errorf("list agenda items: %w", err)
	}
	defer rows.Close()

	var items []*models.AgendaItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) Execute(ctx context.Context, itemID id.AgendaItemID,
	validate func(ctx context.Context, item *models.AgendaItem) error,
	apply func(item *models.AgendaItem),
) (*models.AgendaItem, error) {
	return s.execute(ctx, itemID, false, validate, apply)
}

func (s *PostgresStore) OpenExclusive(ctx context.Context, itemID id.AgendaItemID,
	validate func(ctx context.Context, item *models.AgendaItem) error,
	apply func(item *models.AgendaItem),
) (*models.AgendaItem, error) {
	return s.execute(ctx, itemID, true, validate, apply)
}

func (s *PostgresStore) execute(ctx context.Context, itemID id.AgendaItemID, exclusive bool,
	validate func(ctx context.Context, item *models.AgendaItem) error,
	apply func(item *models.AgendaItem),
) (*models.AgendaItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + itemColumns + ` FROM agenda_items WHERE id = $1 FOR UPDATE`
	item, err := scanItem(tx.QueryRowContext(ctx, query, uuid.UUID(itemID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if exclusive {
		var siblingID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM agenda_items
			WHERE meeting_id = $1 AND state = $2 AND id <> $3
			LIMIT 1
		`, uuid.UUID(item.MeetingID), string(models.AgendaItemStateOpen), uuid.UUID(itemID)).Scan(&siblingID)
		if err == nil {
			return nil, sentinel.ErrConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("check sibling items: %w", err)
		}
	}

	txCtx := txcontext.WithTx(ctx, tx)
	if err := validate(txCtx, item); err != nil {
		return nil, err
	}
	apply(item)

	_, err = tx.ExecContext(ctx, `
		UPDATE agenda_items SET state = $2, opened_at = $3, closed_at = $4 WHERE id = $1
	`, uuid.UUID(item.ID), string(item.State), item.OpenedAt, item.ClosedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("update agenda item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.AgendaItem, error) {
	var item models.AgendaItem
	var rawID, rawMeetingID uuid.UUID
	var state string
	var openedAt, closedAt sql.NullTime
	err := row.Scan(&rawID, &rawMeetingID, &item.Title, &state, &item.CreatedAt, &openedAt, &closedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan agenda item: %w", err)
	}
	item.ID = id.AgendaItemID(rawID)
	item.MeetingID = id.MeetingID(rawMeetingID)
	item.State = models.AgendaItemState(state)
	if openedAt.Valid {
		item.OpenedAt = &openedAt.Time
	}
	if closedAt.Valid {
		item.ClosedAt = &closedAt.Time
	}
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
