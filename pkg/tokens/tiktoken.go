package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

// Tiktoken counts tokens with the cl100k_base BPE, the encoding used by
// most current chat models. Heavier than Heuristic; meant for reporting,
// not for the hot budget-packing path.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

func NewTiktoken() (*Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	if tkErr != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", tkErr)
	}
	return &Tiktoken{enc: tk}, nil
}

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}
