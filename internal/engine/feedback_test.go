package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/core"
)

func TestProvideFeedback(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	m, err := e.Store(ctx, "restart the worker after config changes", core.StoreOptions{
		Scope: core.ScopeUser, Type: core.TypeWorkflow, UserID: "u1",
	})
	require.NoError(t, err)

	require.NoError(t, e.ProvideFeedback(ctx, m.ID, true))

	stored, err := e.repo.Get(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Feedback)
	assert.Equal(t, 1, stored.Feedback.Helpful)
	assert.Equal(t, 0, stored.Feedback.NotHelpful)
	assert.Equal(t, int64(2), stored.Version)
	assert.True(t, stored.UpdatedAt.After(m.UpdatedAt) || stored.UpdatedAt.Equal(m.UpdatedAt))
}

func TestProvideFeedback_UnknownIDIsNoOp(t *testing.T) {
	e := newTestEngine()

	assert.NoError(t, e.ProvideFeedback(context.Background(), "missing", true))
}

func TestProvideFeedback_ScoreConverges(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	m, err := e.Store(ctx, "always run the linter first", core.StoreOptions{
		Scope: core.ScopeUser, Type: core.TypeSkill, UserID: "u1",
	})
	require.NoError(t, err)

	prev := 0.0
	for i := 0; i < 20; i++ {
		require.NoError(t, e.ProvideFeedback(ctx, m.ID, true))
		stored, err := e.repo.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Greater(t, stored.Feedback.Score, prev)
		prev = stored.Feedback.Score
	}
	// 20 unanimous upvotes still leave confidence room below 1.
	assert.Greater(t, prev, 0.7)
	assert.Less(t, prev, 1.0)

	// A flood of downvotes drags the score toward zero without
	// underflowing.
	for i := 0; i < 40; i++ {
		require.NoError(t, e.ProvideFeedback(ctx, m.ID, false))
	}
	stored, err := e.repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Less(t, stored.Feedback.Score, 0.5)
	assert.GreaterOrEqual(t, stored.Feedback.Score, 0.0)
}

func TestWilsonLowerBound(t *testing.T) {
	tests := []struct {
		name       string
		helpful    int
		notHelpful int
		check      func(t *testing.T, got float64)
	}{
		{
			name: "no votes is neutral",
			check: func(t *testing.T, got float64) {
				assert.Equal(t, 0.5, got)
			},
		},
		{
			name:    "single upvote stays conservative",
			helpful: 1,
			check: func(t *testing.T, got float64) {
				assert.Greater(t, got, 0.0)
				assert.Less(t, got, 0.5)
			},
		},
		{
			name:       "single downvote floors at zero",
			notHelpful: 1,
			check: func(t *testing.T, got float64) {
				assert.GreaterOrEqual(t, got, 0.0)
				assert.Less(t, got, 0.5)
			},
		},
		{
			name:    "unanimous at scale approaches one",
			helpful: 1000,
			check: func(t *testing.T, got float64) {
				assert.Greater(t, got, 0.99)
				assert.Less(t, got, 1.0)
			},
		},
		{
			name:       "even split at scale approaches half",
			helpful:    500,
			notHelpful: 500,
			check: func(t *testing.T, got float64) {
				assert.InDelta(t, 0.5, got, 0.05)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, WilsonLowerBound(tt.helpful, tt.notHelpful))
		})
	}
}

func TestWilsonLowerBound_MoreEvidenceTightens(t *testing.T) {
	// Same 80% ratio, more votes: the lower bound must rise.
	small := WilsonLowerBound(8, 2)
	large := WilsonLowerBound(80, 20)
	assert.Greater(t, large, small)
}
