package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agorax/internal/voting/models"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
	txcontext "agorax/pkg/platform/tx"
)

// Postgres persists the vote ledger:
//
//	CREATE TABLE votes (
//	    id              UUID PRIMARY KEY,
//	    agenda_item_id  UUID NOT NULL REFERENCES agenda_items(id),
//	    meeting_id      UUID NOT NULL REFERENCES meetings(id),
//	    owner_id        UUID NOT NULL REFERENCES owners(id),
//	    encrypted_value BYTEA NOT NULL,
//	    ip_address      TEXT NOT NULL DEFAULT '',
//	    cast_at         TIMESTAMPTZ NOT NULL,
//	    CONSTRAINT uq_votes_item_owner UNIQUE (agenda_item_id, owner_id)
//	);
//
// uq_votes_item_owner is the authoritative one-vote-per-owner-per-item
// guarantee; two concurrent inserts race at the constraint and the loser
// gets sentinel.ErrConflict.
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

func (s *Postgres) AppendIfAbsent(ctx context.Context, vote *models.Vote) error {
	const query = `
		INSERT INTO votes (id, agenda_item_id, meeting_id, owner_id, encrypted_value, ip_address, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.runner(ctx).ExecContext(ctx, query,
		vote.ID.String(), vote.AgendaItemID.String(), vote.MeetingID.String(),
		vote.OwnerID.String(), vote.EncryptedValue, vote.IPAddress, vote.CastAt,
	); err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("appending vote: %w", err)
	}
	return nil
}

func (s *Postgres) ListByItem(ctx context.Context, itemID id.AgendaItemID) ([]*models.Vote, error) {
	const query = `
		SELECT id, agenda_item_id, meeting_id, owner_id, encrypted_value, ip_address, cast_at
		FROM votes
		WHERE agenda_item_id = $1
		ORDER BY cast_at`
	rows, err := s.runner(ctx).QueryContext(ctx, query, itemID.String())
	if err != nil {
		return nil, fmt.Errorf("listing votes: %w", err)
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("listing votes: %w", err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing votes: %w", err)
	}
	return votes, nil
}

func (s *Postgres) HasVote(ctx context.Context, itemID id.AgendaItemID, ownerID id.OwnerID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM votes WHERE agenda_item_id = $1 AND owner_id = $2)`
	var exists bool
	if err := s.runner(ctx).QueryRowContext(ctx, query, itemID.String(), ownerID.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking vote existence: %w", err)
	}
	return exists, nil
}

func (s *Postgres) HasVoteInMeeting(ctx context.Context, meetingID id.MeetingID, ownerID id.OwnerID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM votes WHERE meeting_id = $1 AND owner_id = $2)`
	var exists bool
	if err := s.runner(ctx).QueryRowContext(ctx, query, meetingID.String(), ownerID.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking meeting votes: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVote(row rowScanner) (*models.Vote, error) {
	var (
		vote                               models.Vote
		voteID, itemID, meetingID, ownerID string
	)
	if err := row.Scan(&voteID, &itemID, &meetingID, &ownerID,
		&vote.EncryptedValue, &vote.IPAddress, &vote.CastAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(voteID)
	if err != nil {
		return nil, err
	}
	vote.ID = id.VoteID(parsed)
	parsedItem, err := id.ParseAgendaItemID(itemID)
	if err != nil {
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
	vote.AgendaItemID = parsedItem
	vote.MeetingID = parsedMeeting
	vote.OwnerID = parsedOwner
	return &vote, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
