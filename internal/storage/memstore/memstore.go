// Package memstore is the reference in-memory MemoryRepository. Records
// live for the process lifetime only; durability comes from fronting the
// sqlite store behind the same contract.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/mindstash/mindstash/internal/core"
)

// Store holds all records plus per-owner id indices. Indices are only
// mutated through store methods, keeping the invariant that every index
// entry references an existing record mechanically checkable.
type Store struct {
	mu          sync.RWMutex
	records     map[string]*core.Memory
	byUser      map[string][]string
	bySession   map[string][]string
	byAgent     map[string][]string
	byWorkspace map[string][]string
}

func New() *Store {
	return &Store{
		records:     make(map[string]*core.Memory),
		byUser:      make(map[string][]string),
		bySession:   make(map[string][]string),
		byAgent:     make(map[string][]string),
		byWorkspace: make(map[string][]string),
	}
}

func (s *Store) Insert(ctx context.Context, m *core.Memory) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("%w: record without id", core.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[m.ID]; ok {
		return fmt.Errorf("%w: duplicate id %s", core.ErrInvalidInput, m.ID)
	}

	s.records[m.ID] = m.Clone()
	s.index(m)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*core.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.records[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *Store) Update(ctx context.Context, m *core.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.records[m.ID]
	if !ok {
		return core.ErrNotFound
	}
	// Owner fields are immutable after creation, so indices stay valid.
	if old.UserID != m.UserID || old.SessionID != m.SessionID ||
		old.AgentID != m.AgentID || old.WorkspaceID != m.WorkspaceID {
		return fmt.Errorf("%w: owner fields cannot change", core.ErrInvalidInput)
	}

	s.records[m.ID] = m.Clone()
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.records[id]
	if !ok {
		return false, nil
	}
	s.remove(m)
	return true, nil
}

func (s *Store) ByUser(ctx context.Context, userID string) ([]*core.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]*core.Memory, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.records[id]; ok {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (s *Store) ByOwner(ctx context.Context, f core.OwnerFilter) ([]*core.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Memory
	for _, m := range s.records {
		if f.Matches(m) {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (s *Store) All(ctx context.Context) ([]*core.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Memory, 0, len(s.records))
	for _, m := range s.records {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (s *Store) DeleteByUser(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := append([]string(nil), s.byUser[userID]...)
	count := 0
	for _, id := range ids {
		if m, ok := s.records[id]; ok {
			s.remove(m)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := append([]string(nil), s.bySession[sessionID]...)
	count := 0
	for _, id := range ids {
		m, ok := s.records[id]
		if !ok || m.Scope != core.ScopeSession {
			continue
		}
		s.remove(m)
		count++
	}
	return count, nil
}

func (s *Store) Close() error {
	return nil
}

// index and remove run under the write lock.

func (s *Store) index(m *core.Memory) {
	if m.UserID != "" {
		s.byUser[m.UserID] = append(s.byUser[m.UserID], m.ID)
	}
	if m.SessionID != "" {
		s.bySession[m.SessionID] = append(s.bySession[m.SessionID], m.ID)
	}
	if m.AgentID != "" {
		s.byAgent[m.AgentID] = append(s.byAgent[m.AgentID], m.ID)
	}
	if m.WorkspaceID != "" {
		s.byWorkspace[m.WorkspaceID] = append(s.byWorkspace[m.WorkspaceID], m.ID)
	}
}

func (s *Store) remove(m *core.Memory) {
	delete(s.records, m.ID)
	if m.UserID != "" {
		s.byUser[m.UserID] = dropID(s.byUser[m.UserID], m.ID)
		if len(s.byUser[m.UserID]) == 0 {
			delete(s.byUser, m.UserID)
		}
	}
	if m.SessionID != "" {
		s.bySession[m.SessionID] = dropID(s.bySession[m.SessionID], m.ID)
		if len(s.bySession[m.SessionID]) == 0 {
			delete(s.bySession, m.SessionID)
		}
	}
	if m.AgentID != "" {
		s.byAgent[m.AgentID] = dropID(s.byAgent[m.AgentID], m.ID)
		if len(s.byAgent[m.AgentID]) == 0 {
			delete(s.byAgent, m.AgentID)
		}
	}
	if m.WorkspaceID != "" {
		s.byWorkspace[m.WorkspaceID] = dropID(s.byWorkspace[m.WorkspaceID], m.ID)
		if len(s.byWorkspace[m.WorkspaceID]) == 0 {
			delete(s.byWorkspace, m.WorkspaceID)
		}
	}
}

func dropID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
