// Package tokens estimates token counts for context-budget accounting.
package tokens

// Counter counts tokens in a piece of text.
type Counter interface {
	Count(text string) int
}

// Heuristic approximates tokens as ceil(len/4), the ratio typical for
// English prose. It is cheap enough to run on every budget-packing pass.
type Heuristic struct{}

func NewHeuristic() Heuristic {
	return Heuristic{}
}

func (Heuristic) Count(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
