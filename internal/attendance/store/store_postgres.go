package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agorax/internal/attendance/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
	txcontext "agorax/pkg/platform/tx"
)

// Postgres persists presences in the presences table:
//
//	CREATE TABLE presences (
//	    meeting_id    UUID NOT NULL REFERENCES meetings(id),
//	    owner_id      UUID NOT NULL REFERENCES owners(id),
//	    coefficient   DOUBLE PRECISION NOT NULL,
//	    registered_at TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (meeting_id, owner_id)
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) runner(ctx context.Context) runner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Upsert(ctx context.Context, presence *models.Presence) error {
	const query = `
		INSERT INTO presences (meeting_id, owner_id, coefficient, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (meeting_id, owner_id)
		DO UPDATE SET coefficient = EXCLUDED.coefficient, registered_at = EXCLUDED.registered_at`
	if _, err := s.runner(ctx).ExecContext(ctx, query,
		presence.MeetingID.String(), presence.OwnerID.String(),
		presence.Coefficient, presence.RegisteredAt,
	); err != nil {
		return fmt.Errorf("upserting presence: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (*models.Presence, error) {
	const query = `
		SELECT meeting_id, owner_id, coefficient, registered_at
		FROM presences
		WHERE meeting_id = $1 AND owner_id = $2`
	presence, err := scanPresence(s.runner(ctx).QueryRowContext(ctx, query, meetingID.String(), ownerID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding presence: %w", err)
	}
	return presence, nil
}

func (s *Postgres) Remove(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) error {
	const query = `DELETE FROM presences WHERE meeting_id = $1 AND owner_id = $2`
	result, err := s.runner(ctx).ExecContext(ctx, query, meetingID.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("removing presence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing presence: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByMeeting(ctx context.Context, meetingID id.MeetingID) ([]*models.Presence, error) {
	const query = `
		SELECT meeting_id, owner_id, coefficient, registered_at
		FROM presences
		WHERE meeting_id = $1
		ORDER BY registered_at`
	rows, err := s.runner(ctx).QueryContext(ctx, query, meetingID.String())
	if err != nil {
		return nil, fmt.Errorf("listing presences: %w", err)
	}
	defer rows.Close()

	var presences []*models.Presence
	for rows.Next() {
		presence, err := scanPresence(rows)
		if err != nil {
			return nil, fmt.Errorf("listing presences: %w", err)
		}
		presences = append(presences, presence)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing presences: %w", err)
	}
	return presences, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPresence(row rowScanner) (*models.Presence, error) {
	var (
		presence           models.Presence
		meetingID, ownerID string
	)
	if err := row.Scan(&meetingID, &ownerID, &presence.Coefficient, &presence.RegisteredAt); err != nil {
		return nil, err
	}
	parsedMeeting, err := id.ParseMeetingID(meetingID)
	if err != nil {
		return nil, err
	}
	parsedOwner, err := id.ParseOwnerID(ownerID)
	if err != nil {
		return nil, err
	}
	presence.MeetingID = parsedMeeting
	presence.OwnerID = parsedOwner
	return &presence, nil
}
