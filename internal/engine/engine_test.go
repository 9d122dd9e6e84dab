package engine

import (
	"context"

	"github.com/mindstash/mindstash/internal/config"
	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/internal/providers/embedding"
	"github.com/mindstash/mindstash/internal/storage/memstore"
)

func newTestEngine() *Engine {
	return New(config.DefaultEngineConfig(), memstore.New(), embedding.NewHashEmbedder())
}

// scriptedEmbedder returns canned vectors for known texts and falls
// back to the hash embedder otherwise.
type scriptedEmbedder struct {
	vectors  map[string][]float32
	fallback core.Embedder
}

func newScriptedEmbedder(vectors map[string][]float32) *scriptedEmbedder {
	return &scriptedEmbedder{vectors: vectors, fallback: embedding.NewHashEmbedder()}
}

func (s *scriptedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return s.fallback.Embed(ctx, text)
}

func (s *scriptedEmbedder) Dimensions() int { return s.fallback.Dimensions() }

// hookRepo lets a test inject work between the candidate listing and
// whatever the engine does with it.
type hookRepo struct {
	core.MemoryRepository
	afterByOwner func()
}

func (h *hookRepo) ByOwner(ctx context.Context, f core.OwnerFilter) ([]*core.Memory, error) {
	out, err := h.MemoryRepository.ByOwner(ctx, f)
	if h.afterByOwner != nil {
		h.afterByOwner()
	}
	return out, err
}

// downEmbedder simulates an unavailable provider.
type downEmbedder struct{}

func (downEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, &core.EmbeddingError{Err: context.DeadlineExceeded}
}

func (downEmbedder) Dimensions() int { return 4 }
