package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/pkg/log"
)

// SessionContext assembles the budget-constrained context for a
// session: every non-expired memory reachable via the supplied owner
// identifiers, packed greedily in importance order until the token
// budget is hit. The similarity gate is bypassed — ownership is the
// only filter.
//
// The result replaces any previously cached context for the session
// (last-writer-wins; it is a derived cache, not a source of truth).
func (e *Engine) SessionContext(ctx context.Context, sessionID string, opts core.ContextOptions) (*core.SessionContext, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", core.ErrInvalidInput)
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = e.cfg.ContextMaxTokens
	}

	e.mu.RLock()
	candidates, err := e.repo.ByOwner(ctx, core.OwnerFilter{
		UserID:      opts.UserID,
		SessionID:   sessionID,
		AgentID:     opts.AgentID,
		WorkspaceID: opts.WorkspaceID,
	})
	e.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	now := time.Now()
	live := candidates[:0]
	for _, m := range candidates {
		if !m.Expired(now) {
			live = append(live, m)
		}
	}

	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Importance > live[j].Importance
	})

	// originalTokens counts all available content, included or not; the
	// reported savings therefore compare the packed context against the
	// whole candidate pool.
	originalTokens := 0
	for _, m := range live {
		originalTokens += e.counter.Count(m.Content)
	}

	sc := &core.SessionContext{
		SessionID:   sessionID,
		TotalTokens: originalTokens,
		BuiltAt:     now,
	}

	included := 0
	for _, m := range live {
		t := e.counter.Count(m.DisplayContent())
		if included+t > maxTokens {
			break
		}
		included += t
		sc.RelevantMemories = append(sc.RelevantMemories, m)
		if m.Type == core.TypeConversation {
			sc.Conversation = append(sc.Conversation, m)
		}
	}
	sc.CompressedTokens = included

	if originalTokens > 0 {
		sc.TokenSavings = float64(originalTokens-included) / float64(originalTokens) * 100
	}

	e.ctxMu.Lock()
	e.contexts[sessionID] = sc
	e.ctxMu.Unlock()

	log.FromCtx(ctx).Debug().
		Str("session", sessionID).
		Int("memories", len(sc.RelevantMemories)).
		Int("tokens", included).
		Msg("assembled session context")

	return sc, nil
}

// CachedContext returns the last context built for sessionID, if any.
func (e *Engine) CachedContext(sessionID string) (*core.SessionContext, bool) {
	e.ctxMu.RLock()
	defer e.ctxMu.RUnlock()
	sc, ok := e.contexts[sessionID]
	return sc, ok
}
