package core

import "context"

// Embedder converts text to a fixed-dimension, L2-normalized vector.
// Identical input yields an identical vector; empty text yields the
// all-zero vector. The engine relies only on this contract, so a real
// embedding model can replace the deterministic local provider without
// touching ranking, compression, or consolidation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
