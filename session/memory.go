package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
	"github.com/tailored-agentic-units/stockagent/outcome"
)

type memorySession struct {
	turns     []protocol.Turn
	latest    *outcome.Outcome
	createdAt time.Time
	updatedAt time.Time
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	locks    *locks
	now      func() time.Time
}

// NewMemoryStore creates a Store backed by an in-memory map.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[string]*memorySession),
		locks:    newLocks(),
		now:      time.Now,
	}
}

// getOrCreate returns the session, creating it. Callers hold s.mu.
func (s *memoryStore) getOrCreate(id string) *memorySession {
	sess, exists := s.sessions[id]
	if !exists {
		now := s.now()
		sess = &memorySession{createdAt: now, updatedAt: now}
		s.sessions[id] = sess
	}
	return sess
}

func (s *memoryStore) GetOrCreate(_ context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	snap := Session{
		ID:        id,
		Turns:     slices.Clone(sess.turns),
		CreatedAt: sess.createdAt,
		UpdatedAt: sess.updatedAt,
	}
	if sess.latest != nil {
		latest := *sess.latest
		snap.Latest = &latest
	}
	return snap, nil
}

func (s *memoryStore) Append(_ context.Context, id string, turns ...protocol.Turn) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	sess.turns = append(sess.turns, turns...)
	sess.updatedAt = s.now()
	return nil
}

func (s *memoryStore) Turns(_ context.Context, id string) ([]protocol.Turn, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, nil
	}
	return slices.Clone(sess.turns), nil
}

func (s *memoryStore) LatestOutcome(_ context.Context, id string) (outcome.Outcome, bool, error) {
	if id == "" {
		return outcome.Outcome{}, false, ErrEmptySessionID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists || sess.latest == nil {
		return outcome.Outcome{}, false, nil
	}
	return *sess.latest, true, nil
}

func (s *memoryStore) SetOutcome(_ context.Context, id string, o outcome.Outcome) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	sess.latest = &o
	sess.updatedAt = s.now()
	return nil
}

func (s *memoryStore) Lock(ctx context.Context, id string) (UnlockFunc, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	return s.locks.lock(ctx, id)
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memoryStore) IDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
