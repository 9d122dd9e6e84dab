// Package engine implements the scoped memory and context-assembly
// engine: semantically retrievable records ranked by a composite score,
// compressed to fit a token budget, self-correcting via feedback, and
// periodically deduplicated.
package engine

import (
	"context"
	"sync"

	"github.com/mindstash/mindstash/internal/config"
	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/pkg/tokens"
)

type Engine struct {
	cfg        *config.EngineConfig
	repo       core.MemoryRepository
	embedder   core.Embedder
	compressor *Compressor
	counter    tokens.Counter

	// mu serializes record mutations (the search access bump, feedback
	// votes, consolidation, deletes) and orders them against candidate
	// listings, which take the read side so they never observe a
	// half-applied merge. Embedding calls always happen before any lock
	// is taken, so a slow provider never blocks unrelated engine calls.
	mu sync.RWMutex

	ctxMu    sync.RWMutex
	contexts map[string]*core.SessionContext
}

func New(cfg *config.EngineConfig, repo core.MemoryRepository, embedder core.Embedder) *Engine {
	if cfg == nil {
		cfg = config.DefaultEngineConfig()
	}
	return &Engine{
		cfg:        cfg,
		repo:       repo,
		embedder:   embedder,
		compressor: NewCompressor(),
		counter:    tokens.NewHeuristic(),
		contexts:   make(map[string]*core.SessionContext),
	}
}

// DeleteMemory removes one record. Unknown ids are a no-op returning
// false, keeping the call idempotent under races.
func (e *Engine) DeleteMemory(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.Delete(ctx, id)
}

// ClearUserMemories removes every record owned by userID and returns
// the number removed.
func (e *Engine) ClearUserMemories(ctx context.Context, userID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.DeleteByUser(ctx, userID)
}

// ClearSession removes session-scoped records of sessionID and drops
// the cached context. Records referencing the session under another
// scope are untouched.
func (e *Engine) ClearSession(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	_, err := e.repo.DeleteSession(ctx, sessionID)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.ctxMu.Lock()
	delete(e.contexts, sessionID)
	e.ctxMu.Unlock()
	return nil
}
