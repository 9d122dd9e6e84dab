package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mindstash/mindstash/internal/core"
)

// z95 is the normal quantile for a 95% confidence interval.
const z95 = 1.96

// ProvideFeedback records one helpfulness vote and recomputes the
// record's reliability as the Wilson lower bound. Unknown ids are a
// no-op, keeping the call idempotent under races.
func (e *Engine) ProvideFeedback(ctx context.Context, id string, helpful bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load memory: %w", err)
	}

	if m.Feedback == nil {
		m.Feedback = &core.Feedback{Score: 0.5}
	}
	if helpful {
		m.Feedback.Helpful++
	} else {
		m.Feedback.NotHelpful++
	}
	m.Feedback.Score = WilsonLowerBound(m.Feedback.Helpful, m.Feedback.NotHelpful)

	m.Version++
	m.UpdatedAt = time.Now()

	if err := e.repo.Update(ctx, m); err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	return nil
}

// WilsonLowerBound estimates a conservative lower bound on the true
// helpful proportion from limited binary votes at 95% confidence. Small
// sample sizes pull the estimate toward 0.5, so a single vote never
// dominates ranking.
func WilsonLowerBound(helpful, notHelpful int) float64 {
	n := float64(helpful + notHelpful)
	if n == 0 {
		return 0.5
	}

	p := float64(helpful) / n
	z := z95
	z2 := z * z

	score := (p + z2/(2*n) - z*math.Sqrt((p*(1-p)+z2/(4*n))/n)) / (1 + z2/n)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
