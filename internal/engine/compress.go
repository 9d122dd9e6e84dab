package engine

import (
	"strings"
	"sync"
	"unicode"
)

const (
	// Sentences at or below this word count survive compression intact.
	shortSentenceWords = 5
	// Words longer than this survive compression of long sentences.
	keepWordLen = 5
	// Compressed output keeps at most this many sentences.
	keepSentences = 3
	// Cache key is the content prefix, long enough to make collisions
	// between distinct memories unlikely.
	cacheKeyLen = 100
)

// Compressor performs lossy text shortening with a content-keyed cache.
// There is no round-trip guarantee; the only contracts are that empty
// input yields empty output and the result is never longer than the
// original.
type Compressor struct {
	mu    sync.RWMutex
	cache map[string]string
}

func NewCompressor() *Compressor {
	return &Compressor{cache: make(map[string]string)}
}

// Compress shortens content by keeping, per long sentence, its first
// word, last word, long words and capitalized words, and joining the
// first three resulting sentences. Repeated inputs hit the cache.
func (c *Compressor) Compress(content string) string {
	if content == "" {
		return ""
	}

	key := cacheKey(content)

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	out := compress(content)

	c.mu.Lock()
	c.cache[key] = out
	c.mu.Unlock()
	return out
}

// CacheSize reports how many distinct inputs have been compressed.
func (c *Compressor) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func cacheKey(content string) string {
	if len(content) > cacheKeyLen {
		return content[:cacheKeyLen]
	}
	return content
}

func compress(content string) string {
	sentences := splitSentences(content)

	var kept []string
	for _, sentence := range sentences {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}

		if len(words) <= shortSentenceWords {
			kept = append(kept, strings.Join(words, " "))
		} else {
			kept = append(kept, shorten(words))
		}

		if len(kept) == keepSentences {
			break
		}
	}

	out := strings.Join(kept, ". ")
	if len(out) > len(content) {
		return content
	}
	return out
}

// shorten keeps the first word, the last word, any word longer than
// keepWordLen and any capitalized word, preserving original order.
func shorten(words []string) string {
	kept := make([]string, 0, len(words))
	for i, w := range words {
		switch {
		case i == 0 || i == len(words)-1:
			kept = append(kept, w)
		case len(w) > keepWordLen:
			kept = append(kept, w)
		case isCapitalized(w):
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func isCapitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return sentences
}
