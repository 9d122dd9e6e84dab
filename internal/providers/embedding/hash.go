// Package embedding provides the local deterministic embedder and the
// retrying wrapper applied to any embedding provider.
package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/mindstash/mindstash/pkg/vec"
)

const DefaultDimensions = 384

// HashEmbedder is the local embedding provider. Each token is hashed
// and expanded into a pseudo-random vector with an LCG; the token
// vectors are summed and L2-normalized. Identical input always yields
// an identical vector, texts sharing vocabulary correlate, and empty
// text yields the zero vector.
//
// It satisfies the Embedder contract well enough for local use and
// tests; production injects a real model behind the same interface.
type HashEmbedder struct {
	dimensions int
}

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{dimensions: DefaultDimensions}
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out := make([]float32, e.dimensions)

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return out, nil
	}

	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		seed := h.Sum64()

		for i := 0; i < e.dimensions; i++ {
			seed = seed*6364136223846793005 + 1442695040888963407
			// Top bits of an LCG are the well-mixed ones
			out[i] += float32(int32(seed>>32)) / float32(1<<31)
		}
	}

	return vec.Normalize(out), nil
}

func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
