package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/core"
)

func TestSessionContext_RequiresSessionID(t *testing.T) {
	e := newTestEngine()

	_, err := e.SessionContext(context.Background(), "", core.ContextOptions{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestSessionContext_PacksByImportance(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	low, high := 0.3, 0.9
	_, err := e.Store(ctx, "minor aside from earlier", core.StoreOptions{
		Scope: core.ScopeSession, Type: core.TypeContext, SessionID: "s1", Importance: &low,
	})
	require.NoError(t, err)
	top, err := e.Store(ctx, "the user signed the contract", core.StoreOptions{
		Scope: core.ScopeSession, Type: core.TypeDecision, SessionID: "s1", Importance: &high,
	})
	require.NoError(t, err)

	sc, err := e.SessionContext(ctx, "s1", core.ContextOptions{})
	require.NoError(t, err)
	require.Len(t, sc.RelevantMemories, 2)
	assert.Equal(t, top.ID, sc.RelevantMemories[0].ID)
	assert.Equal(t, "s1", sc.SessionID)
	assert.False(t, sc.BuiltAt.IsZero())
}

func TestSessionContext_NeverExceedsBudget(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		content := fmt.Sprintf("note %d %s", i, strings.Repeat("filler words here ", 10))
		_, err := e.Store(ctx, content, core.StoreOptions{
			Scope: core.ScopeSession, Type: core.TypeContext, SessionID: "s1",
		})
		require.NoError(t, err)
	}

	sc, err := e.SessionContext(ctx, "s1", core.ContextOptions{MaxTokens: 120})
	require.NoError(t, err)

	assert.LessOrEqual(t, sc.CompressedTokens, 120)
	assert.Less(t, len(sc.RelevantMemories), 20)

	total := 0
	for _, m := range sc.RelevantMemories {
		total += e.counter.Count(m.DisplayContent())
	}
	assert.Equal(t, sc.CompressedTokens, total)
}

func TestSessionContext_SavingsMath(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	// One long memory whose compressed form is shorter, all of it packed.
	_, err := e.Store(ctx, "the quarterly planning meeting with the leadership team covered hiring targets and the migration timeline for the billing system", core.StoreOptions{
		Scope: core.ScopeSession, Type: core.TypeContext, SessionID: "s1",
	})
	require.NoError(t, err)

	sc, err := e.SessionContext(ctx, "s1", core.ContextOptions{})
	require.NoError(t, err)

	assert.Greater(t, sc.TotalTokens, sc.CompressedTokens)
	assert.Greater(t, sc.TokenSavings, 0.0)
	assert.LessOrEqual(t, sc.TokenSavings, 100.0)
}

func TestSessionContext_ConversationBucket(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.Store(ctx, "user asked about pricing tiers", core.StoreOptions{
		Scope: core.ScopeSession, Type: core.TypeConversation, SessionID: "s1",
	})
	require.NoError(t, err)
	_, err = e.Store(ctx, "pricing page lives in the marketing repo", core.StoreOptions{
		Scope: core.ScopeSession, Type: core.TypeFact, SessionID: "s1",
	})
	require.NoError(t, err)

	sc, err := e.SessionContext(ctx, "s1", core.ContextOptions{})
	require.NoError(t, err)
	require.Len(t, sc.RelevantMemories, 2)
	require.Len(t, sc.Conversation, 1)
	assert.Equal(t, core.TypeConversation, sc.Conversation[0].Type)
}

func TestSessionContext_IncludesUserScopedMemories(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	// Stored outside any session, but owned by the user driving s1.
	pref, err := e.Store(ctx, "prefers concise answers", core.StoreOptions{
		Scope: core.ScopeUser, Type: core.TypePreference, UserID: "u1",
	})
	require.NoError(t, err)

	sc, err := e.SessionContext(ctx, "s1", core.ContextOptions{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, sc.RelevantMemories, 1)
	assert.Equal(t, pref.ID, sc.RelevantMemories[0].ID)
}

func TestCachedContext_LastWriterWins(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, ok := e.CachedContext("s1")
	assert.False(t, ok)

	first, err := e.SessionContext(ctx, "s1", core.ContextOptions{})
	require.NoError(t, err)

	_, err = e.Store(ctx, "new material", core.StoreOptions{
		Scope: core.ScopeSession, Type: core.TypeContext, SessionID: "s1",
	})
	require.NoError(t, err)

	second, err := e.SessionContext(ctx, "s1", core.ContextOptions{})
	require.NoError(t, err)

	cached, ok := e.CachedContext("s1")
	require.True(t, ok)
	assert.Same(t, second, cached)
	assert.NotSame(t, first, cached)
	assert.Len(t, cached.RelevantMemories, 1)
}

func TestClearSession_DropsCachedContext(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.Store(ctx, "scratch", core.StoreOptions{
		Scope: core.ScopeSession, Type: core.TypeContext, SessionID: "s1",
	})
	require.NoError(t, err)
	_, err = e.SessionContext(ctx, "s1", core.ContextOptions{})
	require.NoError(t, err)

	require.NoError(t, e.ClearSession(ctx, "s1"))

	_, ok := e.CachedContext("s1")
	assert.False(t, ok)
}
