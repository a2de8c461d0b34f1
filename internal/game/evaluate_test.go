package game

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

const (
	cor = StatusCorrect
	pre = StatusPresent
	abs = StatusAbsent
)

func statuses(letters []Letter) []LetterStatus {
	out := make([]LetterStatus, len(letters))
	for i, l := range letters {
		out[i] = l.Status
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		target string
		want   []LetterStatus
	}{
		{
			name:   "all correct",
			guess:  "ARGENT",
			target: "ARGENT",
			want:   []LetterStatus{cor, cor, cor, cor, cor, cor},
		},
		{
			name:   "first letter only, E displaced",
			guess:  "ABCDEF",
			target: "ARGENT",
			want:   []LetterStatus{cor, abs, abs, abs, pre, abs},
		},
		{
			name:   "first letter only",
			guess:  "ABCDFH",
			target: "ARGENT",
			want:   []LetterStatus{cor, abs, abs, abs, abs, abs},
		},
		{
			name:   "reordered letters",
			guess:  "NAVIRE",
			target: "NIVEAU",
			want:   []LetterStatus{cor, pre, cor, pre, abs, pre},
		},
		{
			name:   "exact matches claim before displaced ones",
			guess:  "PEEEER",
			target: "PARENT",
			want:   []LetterStatus{cor, abs, abs, cor, abs, pre},
		},
		{
			name:   "surplus duplicates are absent",
			guess:  "BLLLLL",
			target: "BALLON",
			want:   []LetterStatus{cor, abs, cor, cor, abs, abs},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.guess, tt.target)
			if diff := cmp.Diff(tt.want, statuses(got)); diff != "" {
				t.Errorf("Evaluate(%q, %q) mismatch (-want +got):\n%s", tt.guess, tt.target, diff)
			}
			for i, l := range got {
				assert.Equal(t, tt.guess[i:i+1], l.Char)
			}
		})
	}
}

func TestEvaluateLeftToRightPresent(t *testing.T) {
	// One E in the target: the leftmost displaced E claims it.
	got := Evaluate("SEEXXX", "SALUTE")
	assert.Equal(t, []LetterStatus{cor, pre, abs, abs, abs, abs}, statuses(got))

	// An exact match consumes it before any displaced E is considered.
	got = Evaluate("SEXEXE", "SALUTE")
	assert.Equal(t, []LetterStatus{cor, abs, abs, abs, abs, cor}, statuses(got))
}

// For every letter, correct+present equals min(count in guess, count in target).
func TestEvaluateLetterBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const alphabet = "AEINRST"
	randomWord := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		return b.String()
	}

	for iter := 0; iter < 2000; iter++ {
		n := 6 + rng.Intn(5)
		guess, target := randomWord(n), randomWord(n)
		got := Evaluate(guess, target)

		marked := map[byte]int{}
		for i, l := range got {
			if l.Status == StatusCorrect {
				assert.Equal(t, target[i], guess[i])
			}
			if l.Status != StatusAbsent {
				marked[guess[i]]++
			}
		}
		for i := 0; i < len(alphabet); i++ {
			ch := alphabet[i]
			want := min(strings.Count(guess, string(ch)), strings.Count(target, string(ch)))
			if marked[ch] != want {
				t.Fatalf("Evaluate(%q, %q): letter %c marked %d times, want %d", guess, target, ch, marked[ch], want)
			}
		}
	}
}

func TestIsWinning(t *testing.T) {
	assert.True(t, IsWinning(Evaluate("NIVEAU", "NIVEAU")))
	assert.False(t, IsWinning(Evaluate("NAVIRE", "NIVEAU")))
	assert.False(t, IsWinning(nil))
}
