//go:build integration

package containers

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema is the engine's full DDL, applied fresh per container. The partial
// unique indexes are the authoritative single-in-progress guarantees.
const schema = `
CREATE TABLE condominiums (
    id                UUID PRIMARY KEY,
    name              TEXT NOT NULL,
    total_coefficient DOUBLE PRECISION NOT NULL CHECK (total_coefficient > 0),
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE owners (
    id             UUID PRIMARY KEY,
    condominium_id UUID NOT NULL REFERENCES condominiums(id),
    name           TEXT NOT NULL,
    coefficient    DOUBLE PRECISION NOT NULL CHECK (coefficient > 0),
    in_debt        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE meetings (
    id                         UUID PRIMARY KEY,
    condominium_id             UUID NOT NULL REFERENCES condominiums(id),
    title                      TEXT NOT NULL,
    scheduled_for              TIMESTAMPTZ NOT NULL,
    total_coefficient_snapshot DOUBLE PRECISION NOT NULL CHECK (total_coefficient_snapshot > 0),
    state                      TEXT NOT NULL,
    created_at                 TIMESTAMPTZ NOT NULL,
    opened_at                  TIMESTAMPTZ,
    closed_at                  TIMESTAMPTZ
);

CREATE UNIQUE INDEX uq_meetings_in_progress
    ON meetings (condominium_id) WHERE state = 'IN_PROGRESS';

CREATE TABLE agenda_items (
    id         UUID PRIMARY KEY,
    meeting_id UUID NOT NULL REFERENCES meetings(id),
    title      TEXT NOT NULL,
    state      TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    opened_at  TIMESTAMPTZ,
    closed_at  TIMESTAMPTZ
);

CREATE UNIQUE INDEX uq_agenda_items_open
    ON agenda_items (meeting_id) WHERE state = 'OPEN';

CREATE TABLE presences (
    meeting_id    UUID NOT NULL REFERENCES meetings(id),
    owner_id      UUID NOT NULL REFERENCES owners(id),
    coefficient   DOUBLE PRECISION NOT NULL,
    registered_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (meeting_id, owner_id)
);

CREATE TABLE votes (
    id              UUID PRIMARY KEY,
    agenda_item_id  UUID NOT NULL REFERENCES agenda_items(id),
    meeting_id      UUID NOT NULL REFERENCES meetings(id),
    owner_id        UUID NOT NULL REFERENCES owners(id),
    encrypted_value BYTEA NOT NULL,
    ip_address      TEXT NOT NULL DEFAULT '',
    cast_at         TIMESTAMPTZ NOT NULL,
    CONSTRAINT uq_votes_item_owner UNIQUE (agenda_item_id, owner_id)
);

CREATE TABLE audit_log (
    id          UUID PRIMARY KEY,
    actor_id    UUID,
    action      TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    entity_id   TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    request_id  TEXT NOT NULL DEFAULT '',
    client_ip   TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the engine
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container, applies the schema and
// verifies connectivity.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("agorax"),
		tcpostgres.WithUsername("agorax"),
		tcpostgres.WithPassword("agorax"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables empties the named tables. Use between tests to ensure isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE")
	return err
}
