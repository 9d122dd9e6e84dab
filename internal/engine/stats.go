package engine

import (
	"context"
	"fmt"

	"github.com/mindstash/mindstash/internal/core"
)

// Stats snapshots engine-wide counters: totals per scope and type,
// average importance, and how much the compression engine saves across
// all stored content.
func (e *Engine) Stats(ctx context.Context) (*core.Stats, error) {
	e.mu.RLock()
	memories, err := e.repo.All(ctx)
	e.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}

	stats := &core.Stats{
		TotalMemories: len(memories),
		ByScope:       make(map[core.Scope]int),
		ByType:        make(map[core.Type]int),
	}

	var importanceSum float64
	for _, m := range memories {
		stats.ByScope[m.Scope]++
		stats.ByType[m.Type]++
		importanceSum += m.Importance

		orig := e.counter.Count(m.Content)
		stats.Compression.OriginalTokens += orig
		if m.CompressedContent != "" {
			stats.Compression.CompressedMemories++
			stats.Compression.CompressedTokens += e.counter.Count(m.CompressedContent)
		} else {
			stats.Compression.CompressedTokens += orig
		}
	}

	if len(memories) > 0 {
		stats.AvgImportance = importanceSum / float64(len(memories))
	}
	if stats.Compression.OriginalTokens > 0 {
		saved := stats.Compression.OriginalTokens - stats.Compression.CompressedTokens
		stats.Compression.SavingsPercent = float64(saved) / float64(stats.Compression.OriginalTokens) * 100
	}

	return stats, nil
}
