package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"screening-agent/internal/domain"
)

// ErrNotFound reports an unknown session ID.
var ErrNotFound = errors.New("repository: session not found")

// newUUID is a seam for deterministic IDs in tests.
var newUUID = func() string { return uuid.NewString() }

var nowFunc = time.Now

// Store owns every live interview session. Sessions exist only in process
// memory; a restart discards them all.
//
// Acquire hands out a session together with its per-session lock, so at
// most one operation runs against a session at a time, the same
// one-event-at-a-time model the interview protocol assumes.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *domain.Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Create mints a session seeded with the instruction pair and registers it.
func (s *Store) Create(instruction, acknowledgment string) *domain.Session {
	sess := domain.NewSession(newUUID(), instruction, acknowledgment)
	sess.CreatedAt = nowFunc().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = &entry{session: sess}
	return sess
}

// Acquire returns the session and a release func that must be called once
// the operation finishes. While held, no other operation can touch the same
// session.
func (s *Store) Acquire(id string) (*domain.Session, func(), error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	e.mu.Lock()
	return e.session, func() { e.mu.Unlock() }, nil
}

// Remove discards a session entirely. There is no background cleanup;
// removal is the only way a session leaves memory before the process exits.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Count reports the number of live sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
