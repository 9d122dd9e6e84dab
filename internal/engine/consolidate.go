package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/pkg/log"
	"github.com/mindstash/mindstash/pkg/vec"
)

// consolidationThreshold is the cosine similarity above which two
// memories count as near-duplicates.
const consolidationThreshold = 0.9

// ConsolidateMemories merges near-duplicate memories of one user: a
// pairwise scan compares embeddings and, above the similarity
// threshold, folds the lower-importance record into the higher one
// (first encountered wins ties). Access counts are summed and missing
// metadata keys are filled from the absorbed record, so no reinforcement
// signal is lost.
//
// The whole pass holds the engine's mutation lock: it is
// read-then-destructive over the user's record set and concurrent calls
// must never observe a half-merged state. The scan is O(n²) in the
// user's memory count, which is fine at the hundreds we expect.
func (e *Engine) ConsolidateMemories(ctx context.Context, userID string) (core.ConsolidationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res core.ConsolidationResult

	memories, err := e.repo.ByUser(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("list user memories: %w", err)
	}

	now := time.Now()
	live := memories[:0]
	for _, m := range memories {
		if !m.Expired(now) {
			live = append(live, m)
		}
	}

	merged := make(map[string]bool)

	for i := 0; i < len(live); i++ {
		if merged[live[i].ID] {
			continue
		}
		for j := i + 1; j < len(live); j++ {
			if merged[live[j].ID] {
				continue
			}
			if vec.Cosine(live[i].Embedding, live[j].Embedding) <= consolidationThreshold {
				continue
			}

			primary, secondary := live[i], live[j]
			if secondary.Importance > primary.Importance {
				primary, secondary = secondary, primary
			}

			if err := e.merge(ctx, primary, secondary, now); err != nil {
				return res, err
			}
			merged[secondary.ID] = true
			res.Merged++
			res.Deleted++

			if secondary == live[i] {
				break
			}
		}
	}

	if res.Merged > 0 {
		log.FromCtx(ctx).Info().
			Str("user", userID).
			Int("merged", res.Merged).
			Msg("consolidated near-duplicate memories")
	}

	return res, nil
}

func (e *Engine) merge(ctx context.Context, primary, secondary *core.Memory, now time.Time) error {
	primary.AccessCount += secondary.AccessCount

	if len(secondary.Metadata) > 0 {
		if primary.Metadata == nil {
			primary.Metadata = make(map[string]any, len(secondary.Metadata))
		}
		for k, v := range secondary.Metadata {
			if _, ok := primary.Metadata[k]; !ok {
				primary.Metadata[k] = v
			}
		}
	}

	primary.Version++
	primary.UpdatedAt = now

	if err := e.repo.Update(ctx, primary); err != nil {
		return fmt.Errorf("update merged memory: %w", err)
	}
	if _, err := e.repo.Delete(ctx, secondary.ID); err != nil {
		return fmt.Errorf("delete absorbed memory: %w", err)
	}
	return nil
}
