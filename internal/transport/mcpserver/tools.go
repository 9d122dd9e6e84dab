package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mindstash/mindstash/internal/core"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("memory_store",
		mcp.WithDescription("Store a memory with a scope and type; returns the created record."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to remember")),
		mcp.WithString("scope", mcp.Required(), mcp.Description("user, session, agent, workspace or global")),
		mcp.WithString("type", mcp.Required(), mcp.Description("fact, preference, context, skill, conversation, workflow, decision or feedback")),
		mcp.WithString("user_id"),
		mcp.WithString("session_id"),
		mcp.WithString("agent_id"),
		mcp.WithString("workspace_id"),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithNumber("importance", mcp.Description("Override in [0,1]; defaults per type")),
		mcp.WithNumber("expires_in_seconds", mcp.Description("TTL; zero means no expiry")),
	), s.handleStore)

	s.mcp.AddTool(mcp.NewTool("memory_search",
		mcp.WithDescription("Search memories by semantic similarity with scope/type/owner filters."),
		mcp.WithString("query", mcp.Required()),
		mcp.WithString("scopes", mcp.Description("Comma-separated scope filter")),
		mcp.WithString("types", mcp.Description("Comma-separated type filter")),
		mcp.WithString("user_id"),
		mcp.WithString("session_id"),
		mcp.WithString("agent_id"),
		mcp.WithString("workspace_id"),
		mcp.WithNumber("limit"),
		mcp.WithNumber("threshold", mcp.Description("Minimum cosine similarity, default 0.5")),
		mcp.WithBoolean("include_expired"),
		mcp.WithString("sort_by", mcp.Description("relevance, recency, importance or access_count")),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool("session_context",
		mcp.WithDescription("Assemble the token-budgeted memory context for a session."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("user_id"),
		mcp.WithString("agent_id"),
		mcp.WithString("workspace_id"),
		mcp.WithNumber("max_tokens", mcp.Description("Context budget, default 8000")),
	), s.handleSessionContext)

	s.mcp.AddTool(mcp.NewTool("memory_summary",
		mcp.WithDescription("Bucketed digest of a user's memories: preferences, facts, context, workflows, skills."),
		mcp.WithString("user_id", mcp.Required()),
		mcp.WithString("agent_id"),
		mcp.WithString("workspace_id"),
	), s.handleSummary)

	s.mcp.AddTool(mcp.NewTool("memory_feedback",
		mcp.WithDescription("Record whether a retrieved memory was helpful."),
		mcp.WithString("id", mcp.Required()),
		mcp.WithBoolean("helpful", mcp.Required()),
	), s.handleFeedback)

	s.mcp.AddTool(mcp.NewTool("memory_consolidate",
		mcp.WithDescription("Merge near-duplicate memories of a user."),
		mcp.WithString("user_id", mcp.Required()),
	), s.handleConsolidate)

	s.mcp.AddTool(mcp.NewTool("memory_delete",
		mcp.WithDescription("Delete one memory by id."),
		mcp.WithString("id", mcp.Required()),
	), s.handleDelete)

	s.mcp.AddTool(mcp.NewTool("memory_clear_user",
		mcp.WithDescription("Delete all memories of a user."),
		mcp.WithString("user_id", mcp.Required()),
	), s.handleClearUser)

	s.mcp.AddTool(mcp.NewTool("memory_clear_session",
		mcp.WithDescription("Delete the session-scoped memories of a session."),
		mcp.WithString("session_id", mcp.Required()),
	), s.handleClearSession)

	s.mcp.AddTool(mcp.NewTool("memory_stats",
		mcp.WithDescription("Engine-wide counters: totals, per-scope, per-type, compression savings."),
	), s.handleStats)
}

func (s *Server) handleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := core.StoreOptions{
		Scope:       core.Scope(req.GetString("scope", "")),
		Type:        core.Type(req.GetString("type", "")),
		UserID:      req.GetString("user_id", ""),
		SessionID:   req.GetString("session_id", ""),
		AgentID:     req.GetString("agent_id", ""),
		WorkspaceID: req.GetString("workspace_id", ""),
		ExpiresIn:   time.Duration(req.GetFloat("expires_in_seconds", 0) * float64(time.Second)),
	}
	if tags := req.GetString("tags", ""); tags != "" {
		opts.Tags = splitList(tags)
	}
	if imp := req.GetFloat("importance", -1); imp >= 0 {
		opts.Importance = &imp
	}

	m, err := s.engine.Store(ctx, content, opts)
	return jsonResult(m, err)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := core.SearchOptions{
		Query:          query,
		UserID:         req.GetString("user_id", ""),
		SessionID:      req.GetString("session_id", ""),
		AgentID:        req.GetString("agent_id", ""),
		WorkspaceID:    req.GetString("workspace_id", ""),
		Limit:          req.GetInt("limit", 0),
		IncludeExpired: req.GetBool("include_expired", false),
		SortBy:         core.SortMode(req.GetString("sort_by", "")),
	}
	for _, s := range splitList(req.GetString("scopes", "")) {
		opts.Scopes = append(opts.Scopes, core.Scope(s))
	}
	for _, t := range splitList(req.GetString("types", "")) {
		opts.Types = append(opts.Types, core.Type(t))
	}
	if th := req.GetFloat("threshold", -1); th >= 0 {
		opts.Threshold = &th
	}

	memories, err := s.engine.Search(ctx, opts)
	if memories == nil && err == nil {
		memories = []*core.Memory{}
	}
	return jsonResult(memories, err)
}

func (s *Server) handleSessionContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sc, err := s.engine.SessionContext(ctx, sessionID, core.ContextOptions{
		UserID:      req.GetString("user_id", ""),
		AgentID:     req.GetString("agent_id", ""),
		WorkspaceID: req.GetString("workspace_id", ""),
		MaxTokens:   req.GetInt("max_tokens", 0),
	})
	return jsonResult(sc, err)
}

func (s *Server) handleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := s.engine.SummarizedMemories(ctx, userID, core.SummaryOptions{
		AgentID:     req.GetString("agent_id", ""),
		WorkspaceID: req.GetString("workspace_id", ""),
	})
	return jsonResult(summary, err)
}

func (s *Server) handleFeedback(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	helpful, err := req.RequireBool("helpful")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.engine.ProvideFeedback(ctx, id, helpful); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleConsolidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.engine.ConsolidateMemories(ctx, userID)
	return jsonResult(res, err)
}

func (s *Server) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	deleted, err := s.engine.DeleteMemory(ctx, id)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"deleted": %t}`, deleted)), nil
}

func (s *Server) handleClearUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	count, err := s.engine.ClearUserMemories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"cleared": %d}`, count)), nil
}

func (s *Server) handleClearSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.engine.ClearSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.engine.Stats(ctx)
	return jsonResult(stats, err)
}

// jsonResult renders v as a JSON tool result. Validation errors come
// back as tool errors so the caller's model can correct itself; other
// errors bubble up as protocol failures.
func jsonResult(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
