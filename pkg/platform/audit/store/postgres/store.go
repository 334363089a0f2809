package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "agorax/pkg/domain"
	audit "agorax/pkg/platform/audit"
	txcontext "agorax/pkg/platform/tx"
)

// Store persists audit events in the audit_log table. Appends join the
// caller's transaction when one is in context, but audit remains best-effort:
// emitters never fail the business operation on an audit error.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) runner(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var actorID any
	if !event.ActorID.IsNil() {
		actorID = uuid.UUID(event.ActorID)
	}

	query := `
		INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, description, request_id, client_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		uuid.New(),
		actorID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.Description,
		event.RequestID,
		event.ClientIP,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit_log entry: %w", err)
	}
	return nil
}

func (s *Store) ListByActor(ctx context.Context, actorID id.OwnerID) ([]audit.Event, error) {
	query := `
		SELECT actor_id, action, entity_type, entity_id, description, request_id, client_ip, created_at
		FROM audit_log
		WHERE actor_id = $1
		ORDER BY created_at
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, uuid.UUID(actorID))
	if err != nil {
		return nil, fmt.Errorf("list audit_log entries: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var actor uuid.NullUUID
		if err := rows.Scan(&actor, &event.Action, &event.EntityType, &event.EntityID,
			&event.Description, &event.RequestID, &event.ClientIP, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit_log entry: %w", err)
		}
		if actor.Valid {
			event.ActorID = id.OwnerID(actor.UUID)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
