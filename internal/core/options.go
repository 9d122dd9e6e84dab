package core

import "time"

// SortMode selects the ordering of search results.
type SortMode string

const (
	SortRelevance   SortMode = "relevance"
	SortRecency     SortMode = "recency"
	SortImportance  SortMode = "importance"
	SortAccessCount SortMode = "access_count"
)

// StoreOptions configures a single Store call. Scope and Type are
// required; by convention the owner field matching Scope is populated.
type StoreOptions struct {
	Scope       Scope
	Type        Type
	UserID      string
	SessionID   string
	AgentID     string
	WorkspaceID string
	Tags        []string
	Metadata    map[string]any
	// Importance overrides the per-type default when set.
	Importance *float64
	// ExpiresIn sets a TTL relative to creation time. Zero means no expiry.
	ExpiresIn time.Duration
}

// SearchOptions configures a Search call. Zero values mean "no filter";
// Threshold nil means the default similarity gate of 0.5.
type SearchOptions struct {
	Query          string
	Scopes         []Scope
	Types          []Type
	UserID         string
	SessionID      string
	AgentID        string
	WorkspaceID    string
	Limit          int
	Threshold      *float64
	IncludeExpired bool
	SortBy         SortMode
}

// ContextOptions configures ContextForSession.
type ContextOptions struct {
	UserID      string
	AgentID     string
	WorkspaceID string
	// MaxTokens is the context budget. Zero means the default of 8000.
	MaxTokens int
}

// SummaryOptions narrows SummarizedMemories beyond the user.
type SummaryOptions struct {
	AgentID     string
	WorkspaceID string
}
