package game

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Layout is the AZERTY keyboard, row by row.
var Layout = [][]string{
	{"A", "Z", "E", "R", "T", "Y", "U", "I", "O", "P"},
	{"Q", "S", "D", "F", "G", "H", "J", "K", "L", "M"},
	{"W", "X", "C", "V", "B", "N"},
}

// Board is the render-ready grid for a State.
type Board struct {
	Rows       []Attempt `json:"rows"`
	CurrentRow int       `json:"currentRow"`
	CurrentCol int       `json:"currentCol"`
}

// Key is one keyboard key with its aggregated status.
type Key struct {
	Letter string       `json:"letter"`
	Status LetterStatus `json:"status"`
}

// BuildBoard lays out the completed attempts, the in-progress row (typed
// letters over the hints) and empty rows up to MaxAttempts.
func BuildBoard(s State) Board {
	rows := slices.Clone(s.Attempts)
	if !s.IsComplete && len(rows) < MaxAttempts {
		rows = append(rows, currentRow(s))
	}
	for len(rows) < MaxAttempts {
		rows = append(rows, Attempt{Letters: emptyLetters(s.WordLength)})
	}
	return Board{Rows: rows, CurrentRow: s.CurrentRow, CurrentCol: currentCol(s)}
}

func currentRow(s State) Attempt {
	hints := HintsRow(s.TargetWord, s.Attempts)
	letters := make([]Letter, s.WordLength)
	for i := range letters {
		var hint Letter
		if i < len(hints) {
			hint = hints[i]
		}
		switch {
		case i < len(s.CurrentAttempt):
			ch := strings.ToUpper(s.CurrentAttempt[i : i+1])
			if pinnedStatus(hint.Status) {
				letters[i] = Letter{Char: ch, Status: hint.Status}
			} else {
				letters[i] = Letter{Char: ch, Status: StatusEmpty}
			}
		case hint.Char != "":
			letters[i] = hint
		default:
			letters[i] = Letter{Status: StatusEmpty}
		}
	}
	return Attempt{Letters: letters}
}

// currentCol is the first editable column after the typed prefix.
func currentCol(s State) int {
	hints := HintsRow(s.TargetWord, s.Attempts)
	col := len(s.CurrentAttempt)
	for col < s.WordLength && col < len(hints) && pinnedStatus(hints[col].Status) {
		col++
	}
	return col
}

func pinnedStatus(st LetterStatus) bool {
	return st == StatusHint || st == StatusRevealed
}

func emptyLetters(n int) []Letter {
	return lo.Times(n, func(_ int) Letter { return Letter{Status: StatusEmpty} })
}

// BuildKeyboard returns Layout annotated with keyStates.
func BuildKeyboard(keyStates map[string]LetterStatus) [][]Key {
	return lo.Map(Layout, func(row []string, _ int) []Key {
		return lo.Map(row, func(letter string, _ int) Key {
			st, ok := keyStates[strings.ToLower(letter)]
			if !ok {
				st = StatusEmpty
			}
			return Key{Letter: letter, Status: st}
		})
	})
}
