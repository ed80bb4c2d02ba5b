package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/executiveusa/synthia/pkg/memory"
)

// Compile-time interface check.
var _ memory.Store = (*Store)(nil)

const (
	// maxSummaryFacts bounds the KNOWN FACTS section of a context summary.
	maxSummaryFacts = 15
	// maxSummaryTurns bounds the conversation history section.
	maxSummaryTurns = 10
	// maxTurnRunes truncates long stored turns when rendered in a summary.
	maxTurnRunes = 300
)

// Store is the PostgreSQL-backed caller memory. All operations are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore establishes a connection pool to the database at dsn and runs
// [Migrate] to ensure the schema exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is still alive. Used by readiness
// checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// FindClient implements [memory.Store].
func (s *Store) FindClient(ctx context.Context, phone string) (*memory.ClientRecord, error) {
	const q = `
SELECT id, phone, name, company, niche, language, created_at, updated_at
FROM clients
WHERE phone = $1`

	var c memory.ClientRecord
	err := s.pool.QueryRow(ctx, q, phone).Scan(
		&c.ID, &c.Phone, &c.Name, &c.Company, &c.Niche, &c.Language,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, memory.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &c, nil
}

// UpsertClient implements [memory.Store]. Empty fields in the argument never
// overwrite stored non-empty values.
func (s *Store) UpsertClient(ctx context.Context, client memory.ClientRecord) (*memory.ClientRecord, error) {
	if client.Phone == "" {
		return nil, errors.New("upsert client: phone must not be empty")
	}
	const q = `
INSERT INTO clients (phone, name, company, niche, language)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (phone) DO UPDATE SET
    name       = COALESCE(NULLIF(EXCLUDED.name, ''), clients.name),
    company    = COALESCE(NULLIF(EXCLUDED.company, ''), clients.company),
    niche      = COALESCE(NULLIF(EXCLUDED.niche, ''), clients.niche),
    language   = COALESCE(NULLIF(EXCLUDED.language, ''), clients.language),
    updated_at = now()
RETURNING id, phone, name, company, niche, language, created_at, updated_at`

	var c memory.ClientRecord
	err := s.pool.QueryRow(ctx, q,
		client.Phone, client.Name, client.Company, client.Niche, client.Language,
	).Scan(
		&c.ID, &c.Phone, &c.Name, &c.Company, &c.Niche, &c.Language,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert client: %w", err)
	}
	return &c, nil
}

// AppendTurn implements [memory.Store].
func (s *Store) AppendTurn(ctx context.Context, clientID int64, sessionID, role, content, language string) error {
	const q = `
INSERT INTO conversation_turns (client_id, session_id, role, content, language)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.pool.Exec(ctx, q, clientID, sessionID, role, content, language); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// AppendFact implements [memory.Store]. Re-inserting an existing fact for
// the same client is a no-op, even under a different category.
func (s *Store) AppendFact(ctx context.Context, clientID int64, category, fact string) error {
	fact = strings.TrimSpace(fact)
	if fact == "" {
		return nil
	}
	const q = `
INSERT INTO client_facts (client_id, category, fact) VALUES ($1, $2, $3)
ON CONFLICT (client_id, fact) DO NOTHING`
	if _, err := s.pool.Exec(ctx, q, clientID, category, fact); err != nil {
		return fmt.Errorf("append fact: %w", err)
	}
	return nil
}

// ContextSummary implements [memory.Store].
func (s *Store) ContextSummary(ctx context.Context, phone string) (string, error) {
	client, err := s.FindClient(ctx, phone)
	if errors.Is(err, memory.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	facts, err := s.recentFacts(ctx, client.ID)
	if err != nil {
		return "", err
	}
	turns, err := s.recentTurns(ctx, client.ID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CLIENT: ")
	b.WriteString(describeClient(client))
	b.WriteByte('\n')

	if len(facts) > 0 {
		b.WriteString("KNOWN FACTS:\n")
		for _, f := range facts {
			b.WriteString("- ")
			if f.Category != "" {
				b.WriteString("[" + f.Category + "] ")
			}
			b.WriteString(f.Fact)
			b.WriteByte('\n')
		}
	}
	if len(turns) > 0 {
		b.WriteString("RECENT CONVERSATION HISTORY:\n")
		for _, t := range turns {
			b.WriteString(t.Role)
			b.WriteString(": ")
			b.WriteString(truncateRunes(t.Content, maxTurnRunes))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func (s *Store) recentFacts(ctx context.Context, clientID int64) ([]memory.Fact, error) {
	const q = `
SELECT category, fact, created_at FROM client_facts
WHERE client_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := s.pool.Query(ctx, q, clientID, maxSummaryFacts)
	if err != nil {
		return nil, fmt.Errorf("recent facts: %w", err)
	}
	defer rows.Close()

	var facts []memory.Fact
	for rows.Next() {
		var f memory.Fact
		if err := rows.Scan(&f.Category, &f.Fact, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("recent facts: scan: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// recentTurns returns the newest turns in chronological order.
func (s *Store) recentTurns(ctx context.Context, clientID int64) ([]memory.Turn, error) {
	const q = `
SELECT role, content, created_at FROM (
    SELECT role, content, created_at FROM conversation_turns
    WHERE client_id = $1
    ORDER BY created_at DESC, id DESC
    LIMIT $2
) latest
ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, q, clientID, maxSummaryTurns)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	var turns []memory.Turn
	for rows.Next() {
		var t memory.Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("recent turns: scan: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func describeClient(c *memory.ClientRecord) string {
	parts := []string{}
	if c.Name != "" {
		parts = append(parts, c.Name)
	}
	if c.Company != "" {
		parts = append(parts, "from "+c.Company)
	}
	if c.Niche != "" {
		parts = append(parts, "("+c.Niche+")")
	}
	if len(parts) == 0 {
		return c.Phone
	}
	return strings.Join(parts, " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
