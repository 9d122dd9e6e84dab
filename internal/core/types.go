package core

import "time"

const (
	AppName    = "mindstash"
	AppVersion = "0.1.0"
)

// Scope is the ownership axis a memory is attached to.
type Scope string

const (
	ScopeUser      Scope = "user"
	ScopeSession   Scope = "session"
	ScopeAgent     Scope = "agent"
	ScopeWorkspace Scope = "workspace"
	ScopeGlobal    Scope = "global"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeUser, ScopeSession, ScopeAgent, ScopeWorkspace, ScopeGlobal:
		return true
	}
	return false
}

// Type classifies what kind of knowledge a memory holds.
type Type string

const (
	TypeFact         Type = "fact"
	TypePreference   Type = "preference"
	TypeContext      Type = "context"
	TypeSkill        Type = "skill"
	TypeConversation Type = "conversation"
	TypeWorkflow     Type = "workflow"
	TypeDecision     Type = "decision"
	TypeFeedback     Type = "feedback"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFact, TypePreference, TypeContext, TypeSkill,
		TypeConversation, TypeWorkflow, TypeDecision, TypeFeedback:
		return true
	}
	return false
}

// Feedback accumulates binary helpfulness votes for one memory.
// Score is the Wilson lower bound over the votes, in [0,1].
type Feedback struct {
	Helpful    int     `json:"helpful"`
	NotHelpful int     `json:"not_helpful"`
	Score      float64 `json:"score"`
}

// Memory is the sole persistent entity of the engine.
type Memory struct {
	ID                string         `json:"id"`
	Content           string         `json:"content"`
	CompressedContent string         `json:"compressed_content,omitempty"`
	Scope             Scope          `json:"scope"`
	Type              Type           `json:"type"`
	UserID            string         `json:"user_id,omitempty"`
	SessionID         string         `json:"session_id,omitempty"`
	AgentID           string         `json:"agent_id,omitempty"`
	WorkspaceID       string         `json:"workspace_id,omitempty"`
	Embedding         []float32      `json:"-"`
	Importance        float64        `json:"importance"`
	AccessCount       int            `json:"access_count"`
	LastAccessed      time.Time      `json:"last_accessed"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	ExpiresAt         *time.Time     `json:"expires_at,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	Version           int64          `json:"version"`
	Feedback          *Feedback      `json:"feedback,omitempty"`

	// Score is the composite ranking score from the last search that
	// returned this memory. Not persisted.
	Score float64 `json:"score,omitempty"`
}

// Expired reports whether the memory's TTL has passed at now.
func (m *Memory) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && !now.Before(*m.ExpiresAt)
}

// DisplayContent returns the compressed content when present, otherwise
// the original text.
func (m *Memory) DisplayContent() string {
	if m.CompressedContent != "" {
		return m.CompressedContent
	}
	return m.Content
}

// Clone returns a deep copy so stores can hand out records without
// sharing mutable state with callers.
func (m *Memory) Clone() *Memory {
	c := *m
	if m.Embedding != nil {
		c.Embedding = append([]float32(nil), m.Embedding...)
	}
	if m.Tags != nil {
		c.Tags = append([]string(nil), m.Tags...)
	}
	if m.Metadata != nil {
		c.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	if m.ExpiresAt != nil {
		t := *m.ExpiresAt
		c.ExpiresAt = &t
	}
	if m.Feedback != nil {
		f := *m.Feedback
		c.Feedback = &f
	}
	return &c
}

// SessionContext is the ephemeral, budget-packed view of a session's
// memories. Rebuilt on every ContextForSession call; never persisted.
type SessionContext struct {
	SessionID        string    `json:"session_id"`
	Conversation     []*Memory `json:"conversation,omitempty"`
	RelevantMemories []*Memory `json:"relevant_memories"`
	TotalTokens      int       `json:"total_tokens"`
	CompressedTokens int       `json:"compressed_tokens"`
	TokenSavings     float64   `json:"token_savings"`
	BuiltAt          time.Time `json:"built_at"`
}

// Summary is a category-bucketed digest of one user's memories.
type Summary struct {
	UserPreferences []string                  `json:"user_preferences"`
	RecentContext   []string                  `json:"recent_context"`
	KeyFacts        []string                  `json:"key_facts"`
	WorkflowState   map[string]map[string]any `json:"workflow_state"`
	AgentKnowledge  []string                  `json:"agent_knowledge"`
}

// ConsolidationResult reports a merge pass. Merged and Deleted are equal
// by construction: every merge removes exactly one record.
type ConsolidationResult struct {
	Merged  int `json:"merged"`
	Deleted int `json:"deleted"`
}

// CompressionStats summarizes how much the compression engine saved
// across all stored memories.
type CompressionStats struct {
	CompressedMemories int     `json:"compressed_memories"`
	OriginalTokens     int     `json:"original_tokens"`
	CompressedTokens   int     `json:"compressed_tokens"`
	SavingsPercent     float64 `json:"savings_percent"`
}

// Stats is the engine-wide counters snapshot.
type Stats struct {
	TotalMemories int              `json:"total_memories"`
	ByScope       map[Scope]int    `json:"by_scope"`
	ByType        map[Type]int     `json:"by_type"`
	AvgImportance float64          `json:"avg_importance"`
	Compression   CompressionStats `json:"compression"`
}
