package tokens

import "testing"

func TestHeuristicCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "single char", text: "a", want: 1},
		{name: "four chars", text: "abcd", want: 1},
		{name: "five chars", text: "abcde", want: 2},
		{name: "eight chars", text: "abcdefgh", want: 2},
	}

	counter := NewHeuristic()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counter.Count(tt.text); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestTiktokenCount(t *testing.T) {
	counter, err := NewTiktoken()
	if err != nil {
		t.Skipf("cl100k_base encoding unavailable: %v", err)
	}

	if got := counter.Count(""); got != 0 {
		t.Errorf("Count(\"\") = %d, want 0", got)
	}
	if got := counter.Count("hello world"); got == 0 {
		t.Error("Count of non-empty text should be positive")
	}
}
