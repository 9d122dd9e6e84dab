package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mindstash/mindstash/internal/core"
)

const (
	summaryLimit       = 100
	recentContextLimit = 5
)

// SummarizedMemories projects a user's memories into a category-bucketed
// digest: up to 100 records in importance order, each bucket holding the
// compressed-or-original content. Pure read — no access counts move.
func (e *Engine) SummarizedMemories(ctx context.Context, userID string, opts core.SummaryOptions) (*core.Summary, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", core.ErrInvalidInput)
	}

	e.mu.RLock()
	candidates, err := e.repo.ByOwner(ctx, core.OwnerFilter{
		UserID:      userID,
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
	if len(live) > summaryLimit {
		live = live[:summaryLimit]
	}

	summary := &core.Summary{
		WorkflowState: make(map[string]map[string]any),
	}

	for _, m := range live {
		content := m.DisplayContent()
		switch m.Type {
		case core.TypePreference:
			summary.UserPreferences = append(summary.UserPreferences, content)
		case core.TypeContext, core.TypeConversation:
			if len(summary.RecentContext) < recentContextLimit {
				summary.RecentContext = append(summary.RecentContext, content)
			}
		case core.TypeFact:
			summary.KeyFacts = append(summary.KeyFacts, content)
		case core.TypeWorkflow:
			summary.WorkflowState[m.ID] = m.Metadata
		case core.TypeSkill:
			summary.AgentKnowledge = append(summary.AgentKnowledge, content)
		}
	}

	return summary, nil
}
