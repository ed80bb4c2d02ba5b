// Package postgres provides the PostgreSQL-backed implementation of
// [memory.Store].
//
// All operations share a single [pgxpool.Pool]. [Migrate] creates the schema
// idempotently, so a fresh database needs no manual setup:
//
//	store, err := postgres.NewStore(ctx, dsn)
//	if err != nil { … }
//	defer store.Close()
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlClients = `
CREATE TABLE IF NOT EXISTS clients (
    id          BIGSERIAL    PRIMARY KEY,
    phone       TEXT         NOT NULL UNIQUE,
    name        TEXT         NOT NULL DEFAULT '',
    company     TEXT         NOT NULL DEFAULT '',
    niche       TEXT         NOT NULL DEFAULT '',
    language    TEXT         NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

const ddlConversationTurns = `
CREATE TABLE IF NOT EXISTS conversation_turns (
    id          BIGSERIAL    PRIMARY KEY,
    client_id   BIGINT       NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
    session_id  TEXT         NOT NULL DEFAULT '',
    role        TEXT         NOT NULL,
    content     TEXT         NOT NULL,
    language    TEXT         NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_conversation_turns_client
    ON conversation_turns (client_id, created_at);

CREATE INDEX IF NOT EXISTS idx_conversation_turns_session
    ON conversation_turns (client_id, session_id);
`

const ddlClientFacts = `
CREATE TABLE IF NOT EXISTS client_facts (
    client_id   BIGINT       NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
    category    TEXT         NOT NULL DEFAULT '',
    fact        TEXT         NOT NULL,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (client_id, fact)
);
`

// Migrate creates all required tables and indexes if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, ddl := range []string{ddlClients, ddlConversationTurns, ddlClientFacts} {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
