package core

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks validation failures. Wrapped with detail at the
// call site; callers should not retry.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound marks lookups of unknown record ids. Most engine
// operations treat it as a no-op rather than an error.
var ErrNotFound = errors.New("memory not found")

// EmbeddingError wraps a failure of the embedding provider, the only
// externally caused error in the engine. It is retryable: callers can
// back off, or the engine degrades to importance/recency ranking.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding provider: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err stems from the embedding provider and
// is worth retrying.
func IsRetryable(err error) bool {
	var ee *EmbeddingError
	return errors.As(err, &ee)
}
