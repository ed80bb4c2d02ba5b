// Package memory defines the persistent caller-memory contract: who called
// before, what was learned about them, and what was said. The telephony layer
// uses it to greet returning callers by name and to prime the reasoning
// engine with prior context.
package memory

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no client exists for the given phone number.
var ErrNotFound = errors.New("memory: client not found")

// ClientRecord is everything known about a caller, keyed by phone number.
type ClientRecord struct {
	ID        int64
	Phone     string
	Name      string
	Company   string
	Niche     string
	Language  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Turn is one stored exchange line from a past conversation. SessionID groups
// turns by call; Language is the language the line was spoken in.
type Turn struct {
	SessionID string
	Role      string
	Content   string
	Language  string
	CreatedAt time.Time
}

// Fact is a discrete piece of knowledge extracted from conversation,
// e.g. "budget around $2000" or "prefers a dark landing page". Category
// groups related facts ("identity", "business", "budget", ...).
type Fact struct {
	Category  string
	Fact      string
	CreatedAt time.Time
}

// Store persists caller memory across calls.
//
// All methods are safe for concurrent use.
type Store interface {
	// FindClient looks up a caller by phone number. Returns ErrNotFound
	// when the caller has never been seen.
	FindClient(ctx context.Context, phone string) (*ClientRecord, error)

	// UpsertClient inserts or updates a caller keyed by Phone. Empty fields
	// in the argument never overwrite previously stored non-empty values.
	// The stored record is returned.
	UpsertClient(ctx context.Context, client ClientRecord) (*ClientRecord, error)

	// AppendTurn stores one conversation line for the client, tagged with
	// the call session it belongs to and the language it was spoken in.
	AppendTurn(ctx context.Context, clientID int64, sessionID, role, content, language string) error

	// AppendFact stores a categorized fact about the client. Duplicate fact
	// text for the same client is ignored regardless of category.
	AppendFact(ctx context.Context, clientID int64, category, fact string) error

	// ContextSummary renders the stored knowledge about a caller as plain
	// text suitable for inclusion in a system prompt. Returns "" when the
	// caller is unknown.
	ContextSummary(ctx context.Context, phone string) (string, error)

	// Close releases any underlying resources.
	Close()
}
