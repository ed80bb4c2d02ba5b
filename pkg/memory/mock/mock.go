// Package mock provides an in-memory mock implementation of memory.Store
// for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/executiveusa/synthia/pkg/memory"
)

// Store is an in-memory implementation of [memory.Store]. The zero value is
// ready to use.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	clients map[string]*memory.ClientRecord
	turns   map[int64][]memory.Turn
	facts   map[int64][]memory.Fact

	// Summary, if non-empty, is returned by ContextSummary for any phone.
	Summary string
	// Err, if set, is returned by every method that can fail.
	Err error
}

var _ memory.Store = (*Store)(nil)

func (s *Store) init() {
	if s.clients == nil {
		s.clients = make(map[string]*memory.ClientRecord)
		s.turns = make(map[int64][]memory.Turn)
		s.facts = make(map[int64][]memory.Fact)
	}
}

// FindClient implements [memory.Store].
func (s *Store) FindClient(_ context.Context, phone string) (*memory.ClientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.init()
	c, ok := s.clients[phone]
	if !ok {
		return nil, memory.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// UpsertClient implements [memory.Store].
func (s *Store) UpsertClient(_ context.Context, client memory.ClientRecord) (*memory.ClientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.init()
	existing, ok := s.clients[client.Phone]
	if !ok {
		s.nextID++
		client.ID = s.nextID
		client.CreatedAt = time.Now()
		client.UpdatedAt = client.CreatedAt
		s.clients[client.Phone] = &client
		cp := client
		return &cp, nil
	}
	if client.Name != "" {
		existing.Name = client.Name
	}
	if client.Company != "" {
		existing.Company = client.Company
	}
	if client.Niche != "" {
		existing.Niche = client.Niche
	}
	if client.Language != "" {
		existing.Language = client.Language
	}
	existing.UpdatedAt = time.Now()
	cp := *existing
	return &cp, nil
}

// AppendTurn implements [memory.Store].
func (s *Store) AppendTurn(_ context.Context, clientID int64, sessionID, role, content, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.init()
	s.turns[clientID] = append(s.turns[clientID], memory.Turn{
		SessionID: sessionID, Role: role, Content: content,
		Language: language, CreatedAt: time.Now(),
	})
	return nil
}

// AppendFact implements [memory.Store]. Duplicate fact text is dropped
// regardless of category.
func (s *Store) AppendFact(_ context.Context, clientID int64, category, fact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.init()
	for _, f := range s.facts[clientID] {
		if f.Fact == fact {
			return nil
		}
	}
	s.facts[clientID] = append(s.facts[clientID], memory.Fact{
		Category: category, Fact: fact, CreatedAt: time.Now(),
	})
	return nil
}

// ContextSummary implements [memory.Store].
func (s *Store) ContextSummary(_ context.Context, phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	return s.Summary, nil
}

// Close implements [memory.Store]. It is a no-op.
func (s *Store) Close() {}

// Turns returns a copy of the turns stored for a client.
func (s *Store) Turns(clientID int64) []memory.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	out := make([]memory.Turn, len(s.turns[clientID]))
	copy(out, s.turns[clientID])
	return out
}

// Facts returns a copy of the facts stored for a client.
func (s *Store) Facts(clientID int64) []memory.Fact {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	out := make([]memory.Fact, len(s.facts[clientID]))
	copy(out, s.facts[clientID])
	return out
}
