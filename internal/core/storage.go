package core

import "context"

// OwnerFilter narrows a listing to records reachable by the supplied
// identifiers. A field excludes a record only when the record carries a
// different non-empty value for it, so a user-scoped memory without a
// session id still matches a session-filtered listing.
type OwnerFilter struct {
	UserID      string
	SessionID   string
	AgentID     string
	WorkspaceID string
}

// Matches reports whether m passes the filter.
func (f OwnerFilter) Matches(m *Memory) bool {
	if f.UserID != "" && m.UserID != "" && m.UserID != f.UserID {
		return false
	}
	if f.SessionID != "" && m.SessionID != "" && m.SessionID != f.SessionID {
		return false
	}
	if f.AgentID != "" && m.AgentID != "" && m.AgentID != f.AgentID {
		return false
	}
	if f.WorkspaceID != "" && m.WorkspaceID != "" && m.WorkspaceID != f.WorkspaceID {
		return false
	}
	return true
}

// MemoryRepository is the record-store contract. The reference
// implementation is the in-memory store; a durable deployment fronts
// SQLite behind the same interface.
//
// Implementations must be safe for concurrent use and must keep their
// owner indices consistent: a deleted record disappears from every index
// that referenced it, and Insert is atomic (the record and all its index
// entries exist, or nothing does).
type MemoryRepository interface {
	Insert(ctx context.Context, m *Memory) error
	Get(ctx context.Context, id string) (*Memory, error)
	Update(ctx context.Context, m *Memory) error
	Delete(ctx context.Context, id string) (bool, error)

	// ByUser lists records whose UserID equals userID exactly.
	ByUser(ctx context.Context, userID string) ([]*Memory, error)
	// ByOwner lists records passing the soft owner filter.
	ByOwner(ctx context.Context, f OwnerFilter) ([]*Memory, error)
	All(ctx context.Context) ([]*Memory, error)

	// DeleteByUser removes every record with the exact UserID and
	// returns how many were removed.
	DeleteByUser(ctx context.Context, userID string) (int, error)
	// DeleteSession removes only session-scoped records of sessionID;
	// records merely referencing the session under another scope stay.
	DeleteSession(ctx context.Context, sessionID string) (int, error)

	Close() error
}
