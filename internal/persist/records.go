package persist

import (
	"maps"
	"slices"
	"strings"

	"github.com/robalobadob/tusmo/internal/game"
	"github.com/robalobadob/tusmo/internal/words"
)

// PersistedState is the saved daily game. The target is not stored: it is
// derived again from DayNumber.
type PersistedState struct {
	DayNumber      int                          `json:"dayNumber"`
	Attempts       []game.Attempt               `json:"attempts"`
	KeyStates      map[string]game.LetterStatus `json:"keyStates"`
	IsComplete     bool                         `json:"isComplete"`
	IsWon          bool                         `json:"isWon"`
	CurrentAttempt string                       `json:"currentAttempt"`
}

// FreeModePersistedState is the saved free-mode game, which carries its own
// target.
type FreeModePersistedState struct {
	TargetWord     string                       `json:"targetWord"`
	Attempts       []game.Attempt               `json:"attempts"`
	KeyStates      map[string]game.LetterStatus `json:"keyStates"`
	IsComplete     bool                         `json:"isComplete"`
	IsWon          bool                         `json:"isWon"`
	CurrentAttempt string                       `json:"currentAttempt"`
}

// DailyFromState projects a daily game onto its saved record.
func DailyFromState(s game.State) PersistedState {
	return PersistedState{
		DayNumber:      s.DayNumber,
		Attempts:       cloneAttempts(s.Attempts),
		KeyStates:      maps.Clone(s.KeyStates),
		IsComplete:     s.IsComplete,
		IsWon:          s.IsWon,
		CurrentAttempt: s.CurrentAttempt,
	}
}

// FreeFromState projects a free-mode game onto its saved record.
func FreeFromState(s game.State) FreeModePersistedState {
	return FreeModePersistedState{
		TargetWord:     s.TargetWord,
		Attempts:       cloneAttempts(s.Attempts),
		KeyStates:      maps.Clone(s.KeyStates),
		IsComplete:     s.IsComplete,
		IsWon:          s.IsWon,
		CurrentAttempt: s.CurrentAttempt,
	}
}

// RestoreDaily rebuilds the daily game for target from p. It reports false
// when the record does not fit target (attempt widths differ).
func RestoreDaily(p PersistedState, target string) (game.State, bool) {
	if !words.Playable(target) || !fits(p.Attempts, target) {
		return game.State{}, false
	}
	s := game.NewDaily(target, p.DayNumber)
	restore(&s, p.Attempts, p.KeyStates, p.IsComplete, p.IsWon, p.CurrentAttempt)
	return s, true
}

// RestoreFree rebuilds a free-mode game from p.
func RestoreFree(p FreeModePersistedState) (game.State, bool) {
	target := strings.ToUpper(p.TargetWord)
	if !words.Playable(target) || !fits(p.Attempts, target) {
		return game.State{}, false
	}
	s := game.NewFree(target)
	restore(&s, p.Attempts, p.KeyStates, p.IsComplete, p.IsWon, p.CurrentAttempt)
	return s, true
}

func restore(s *game.State, attempts []game.Attempt, keys map[string]game.LetterStatus, complete, won bool, current string) {
	s.Attempts = cloneAttempts(attempts)
	if keys != nil {
		s.KeyStates = maps.Clone(keys)
	}
	s.CurrentRow = len(s.Attempts)
	s.IsWon = won
	s.IsComplete = complete || won || len(s.Attempts) >= game.MaxAttempts

	current = strings.ToUpper(current)
	if len(current) > s.WordLength {
		return
	}
	// Pinned positions of a row in progress must hold the target's letter;
	// cut the row at the first one that does not. A finished game keeps its
	// final guess.
	pinned := game.HintPositions(s.Attempts)
	for i := 0; i < len(current); i++ {
		if pinned[i] && (i == 0 || !s.IsComplete) && current[i] != s.TargetWord[i] {
			current = current[:i]
			break
		}
	}
	if current != "" {
		s.CurrentAttempt = current
	}
}

func fits(attempts []game.Attempt, target string) bool {
	if len(attempts) > game.MaxAttempts {
		return false
	}
	for _, a := range attempts {
		if len(a.Letters) != len(target) {
			return false
		}
	}
	return true
}

func cloneAttempts(attempts []game.Attempt) []game.Attempt {
	out := make([]game.Attempt, len(attempts))
	for i, a := range attempts {
		out[i] = game.Attempt{Letters: slices.Clone(a.Letters), IsComplete: a.IsComplete}
	}
	return out
}
