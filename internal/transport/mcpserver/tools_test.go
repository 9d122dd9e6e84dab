package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/config"
	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/internal/engine"
	"github.com/mindstash/mindstash/internal/providers/embedding"
	"github.com/mindstash/mindstash/internal/storage/memstore"
)

func newTestServer() *Server {
	e := engine.New(config.DefaultEngineConfig(), memstore.New(), embedding.NewHashEmbedder())
	return NewServer(e)
}

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func storeMemory(t *testing.T, s *Server, args map[string]any) *core.Memory {
	t.Helper()
	res, err := s.handleStore(context.Background(), callReq(args))
	require.NoError(t, err)

	var m core.Memory
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &m))
	return &m
}

func TestHandleStore(t *testing.T) {
	s := newTestServer()

	m := storeMemory(t, s, map[string]any{
		"content": "User prefers dark mode",
		"scope":   "user",
		"type":    "preference",
		"user_id": "u1",
		"tags":    "ui, theme",
	})

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, core.ScopeUser, m.Scope)
	assert.Equal(t, core.TypePreference, m.Type)
	assert.Equal(t, []string{"ui", "theme"}, m.Tags)
	assert.Equal(t, 0.8, m.Importance)
}

func TestHandleStore_MissingContent(t *testing.T) {
	s := newTestServer()

	res, err := s.handleStore(context.Background(), callReq(map[string]any{
		"scope": "user",
		"type":  "fact",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleStore_InvalidScopeIsToolError(t *testing.T) {
	s := newTestServer()

	res, err := s.handleStore(context.Background(), callReq(map[string]any{
		"content": "something",
		"scope":   "galaxy",
		"type":    "fact",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleSearch(t *testing.T) {
	s := newTestServer()
	storeMemory(t, s, map[string]any{
		"content": "User prefers dark mode in the editor",
		"scope":   "user",
		"type":    "preference",
		"user_id": "u1",
	})

	res, err := s.handleSearch(context.Background(), callReq(map[string]any{
		"query":   "User prefers dark mode in the editor",
		"user_id": "u1",
	}))
	require.NoError(t, err)

	var memories []*core.Memory
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &memories))
	require.Len(t, memories, 1)
	assert.Equal(t, core.TypePreference, memories[0].Type)
}

func TestHandleSearch_NoMatchesIsEmptyArray(t *testing.T) {
	s := newTestServer()

	res, err := s.handleSearch(context.Background(), callReq(map[string]any{
		"query":     "quantum cryptography",
		"threshold": 0.99,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", resultText(t, res))
}

func TestHandleSessionContext(t *testing.T) {
	s := newTestServer()
	storeMemory(t, s, map[string]any{
		"content":    "the user signed the contract",
		"scope":      "session",
		"type":       "decision",
		"session_id": "s1",
	})

	res, err := s.handleSessionContext(context.Background(), callReq(map[string]any{
		"session_id": "s1",
	}))
	require.NoError(t, err)

	var sc core.SessionContext
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &sc))
	assert.Equal(t, "s1", sc.SessionID)
	assert.Len(t, sc.RelevantMemories, 1)
}

func TestHandleSummary(t *testing.T) {
	s := newTestServer()
	storeMemory(t, s, map[string]any{
		"content": "prefers concise answers",
		"scope":   "user",
		"type":    "preference",
		"user_id": "u1",
	})

	res, err := s.handleSummary(context.Background(), callReq(map[string]any{
		"user_id": "u1",
	}))
	require.NoError(t, err)

	var summary core.Summary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
	assert.Equal(t, []string{"prefers concise answers"}, summary.UserPreferences)
}

func TestHandleFeedbackAndDelete(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	m := storeMemory(t, s, map[string]any{
		"content": "a fact",
		"scope":   "user",
		"type":    "fact",
		"user_id": "u1",
	})

	res, err := s.handleFeedback(ctx, callReq(map[string]any{
		"id": m.ID, "helpful": true,
	}))
	require.NoError(t, err)
	assert.Equal(t, "ok", resultText(t, res))

	res, err = s.handleDelete(ctx, callReq(map[string]any{"id": m.ID}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted": true}`, resultText(t, res))

	res, err = s.handleDelete(ctx, callReq(map[string]any{"id": m.ID}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted": false}`, resultText(t, res))
}

func TestHandleClearUserAndSession(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	storeMemory(t, s, map[string]any{
		"content": "a fact",
		"scope":   "user",
		"type":    "fact",
		"user_id": "u1",
	})
	storeMemory(t, s, map[string]any{
		"content":    "session scratch",
		"scope":      "session",
		"type":       "context",
		"session_id": "s1",
	})

	res, err := s.handleClearUser(ctx, callReq(map[string]any{"user_id": "u1"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cleared": 1}`, resultText(t, res))

	res, err = s.handleClearSession(ctx, callReq(map[string]any{"session_id": "s1"}))
	require.NoError(t, err)
	assert.Equal(t, "ok", resultText(t, res))

	res, err = s.handleStats(ctx, callReq(nil))
	require.NoError(t, err)
	var stats core.Stats
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &stats))
	assert.Equal(t, 0, stats.TotalMemories)
}

func TestHandleConsolidate(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	storeMemory(t, s, map[string]any{
		"content": "deploys happen on Tuesdays",
		"scope":   "user",
		"type":    "fact",
		"user_id": "u1",
	})
	storeMemory(t, s, map[string]any{
		"content": "deploys happen on Tuesdays",
		"scope":   "user",
		"type":    "fact",
		"user_id": "u1",
	})

	res, err := s.handleConsolidate(ctx, callReq(map[string]any{"user_id": "u1"}))
	require.NoError(t, err)

	var cr core.ConsolidationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &cr))
	assert.Equal(t, core.ConsolidationResult{Merged: 1, Deleted: 1}, cr)
}

func TestHandleStats_RequiresNothing(t *testing.T) {
	s := newTestServer()

	res, err := s.handleStats(context.Background(), callReq(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
}
