package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/pkg/log"
	"github.com/mindstash/mindstash/pkg/vec"
)

// Composite score weights. Similarity dominates; importance, recency
// and feedback refine the ordering.
const (
	weightSimilarity = 0.5
	weightImportance = 0.2
	weightRecency    = 0.15
	weightFeedback   = 0.15

	// recencyWindow is the linear decay horizon of the recency boost.
	recencyWindow = 7 * 24 * time.Hour

	// neutralFeedback is the prior used before any votes exist.
	neutralFeedback = 0.5
)

// Search retrieves memories matching the filters, gated by cosine
// similarity against the query and ordered by the requested sort mode.
// Every returned record gets its access count bumped — retrieval
// reinforces future ranking.
//
// If the embedding provider fails, search degrades to importance and
// recency ranking over a zero query vector instead of failing the
// request.
func (e *Engine) Search(ctx context.Context, opts core.SearchOptions) ([]*core.Memory, error) {
	var queryVec []float32
	degraded := false

	if opts.Query != "" {
		v, err := e.embedder.Embed(ctx, opts.Query)
		if err != nil {
			if !core.IsRetryable(err) {
				return nil, err
			}
			log.FromCtx(ctx).Warn().Err(err).Msg("embedding unavailable, degrading to importance/recency ranking")
			degraded = true
		} else {
			queryVec = v
		}
	}

	e.mu.RLock()
	candidates, err := e.repo.ByOwner(ctx, core.OwnerFilter{
		UserID:      opts.UserID,
		SessionID:   opts.SessionID,
		AgentID:     opts.AgentID,
		WorkspaceID: opts.WorkspaceID,
	})
	e.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	threshold := e.cfg.SimilarityThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	now := time.Now()
	var results []*core.Memory
	for _, m := range candidates {
		if !matchScopes(m, opts.Scopes) || !matchTypes(m, opts.Types) {
			continue
		}
		if !opts.IncludeExpired && m.Expired(now) {
			continue
		}

		similarity := 0.0
		if opts.Query != "" && !degraded {
			similarity = vec.Cosine(queryVec, m.Embedding)
			if similarity < threshold {
				continue
			}
		}

		m.Score = compositeScore(m, similarity, now)
		results = append(results, m)
	}

	sortResults(results, opts.SortBy)

	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.SearchLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	if err := e.touch(ctx, results, now); err != nil {
		return nil, err
	}

	return results, nil
}

// touch records the read side-effect on returned memories.
func (e *Engine) touch(ctx context.Context, memories []*core.Memory, now time.Time) error {
	if len(memories) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range memories {
		// The candidates were read outside the write lock and may be
		// stale by now: a feedback vote or a merge can land in between.
		// Re-read each record so the bump never writes back an old
		// snapshot, and skip records a consolidation pass absorbed.
		fresh, err := e.repo.Get(ctx, m.ID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			return fmt.Errorf("reload memory: %w", err)
		}
		fresh.AccessCount++
		fresh.LastAccessed = now
		if err := e.repo.Update(ctx, fresh); err != nil {
			return fmt.Errorf("update access stats: %w", err)
		}
		m.AccessCount = fresh.AccessCount
		m.LastAccessed = now
	}
	return nil
}

// compositeScore blends similarity, importance, recency and feedback
// into a single [0,1] ranking score.
func compositeScore(m *core.Memory, similarity float64, now time.Time) float64 {
	hours := now.Sub(m.LastAccessed).Hours()
	recency := 1 - hours/recencyWindow.Hours()
	if recency < 0 {
		recency = 0
	}

	feedback := neutralFeedback
	if m.Feedback != nil {
		feedback = (m.Feedback.Score + 1) / 2
	}

	score := weightSimilarity*similarity +
		weightImportance*m.Importance +
		weightRecency*recency +
		weightFeedback*feedback

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func matchScopes(m *core.Memory, scopes []core.Scope) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if m.Scope == s {
			return true
		}
	}
	return false
}

func matchTypes(m *core.Memory, types []core.Type) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if m.Type == t {
			return true
		}
	}
	return false
}

func sortResults(results []*core.Memory, mode core.SortMode) {
	switch mode {
	case core.SortRecency:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].LastAccessed.After(results[j].LastAccessed)
		})
	case core.SortImportance:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Importance > results[j].Importance
		})
	case core.SortAccessCount:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].AccessCount > results[j].AccessCount
		})
	default: // relevance
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
}
