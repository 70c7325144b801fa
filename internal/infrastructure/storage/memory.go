package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
)

// MemoryStore keeps sessions and audit entries in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.RoundTripState
	audit    []domain.AuditEntry
}

var (
	_ ports.SessionStore   = (*MemoryStore)(nil)
	_ ports.SessionExpirer = (*MemoryStore)(nil)
	_ ports.AuditLog       = (*MemoryStore)(nil)
	_ ports.AuditReader    = (*MemoryStore)(nil)
)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]domain.RoundTripState{}}
}

func (s *MemoryStore) Save(_ context.Context, state *domain.RoundTripState) error {
	if state == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = *state
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*domain.RoundTripState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &state, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, sessionID string, from domain.Phase) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok || state.Phase != from {
		return false, nil
	}
	state.Phase = domain.PhaseExecuting
	s.sessions[sessionID] = state
	return true, nil
}

func (s *MemoryStore) ExpireSessions(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expired := 0
	for id, state := range s.sessions {
		if state.UpdatedAt.Before(before) {
			delete(s.sessions, id)
			expired++
		}
	}
	return expired, nil
}

func (s *MemoryStore) Record(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
	return nil
}

func (s *MemoryStore) ListAudit(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	entries := make([]domain.AuditEntry, len(s.audit))
	copy(entries, s.audit)
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
