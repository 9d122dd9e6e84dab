package embedding

import (
	"context"

	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/pkg/retry"
)

// Retrying wraps an embedder with exponential backoff. Failures that
// survive the retry budget surface as *core.EmbeddingError so callers
// can distinguish provider trouble from engine bugs.
type Retrying struct {
	inner   core.Embedder
	retrier *retry.Retrier
}

func WithRetry(inner core.Embedder, r *retry.Retrier) *Retrying {
	if r == nil {
		r = retry.NewDefaultRetrier()
	}
	return &Retrying{inner: inner, retrier: r}
}

func (e *Retrying) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := e.retrier.Do(ctx, func() error {
		var err error
		out, err = e.inner.Embed(ctx, text)
		return err
	})
	if err != nil {
		return nil, &core.EmbeddingError{Err: err}
	}
	return out, nil
}

func (e *Retrying) Dimensions() int {
	return e.inner.Dimensions()
}
