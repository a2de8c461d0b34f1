// internal/game/types.go
//
// Core type definitions for the Tusmo game engine.
// Defines:
//   - LetterStatus: per-cell state on the board and on the keyboard.
//   - Letter / Attempt: one cell and one scored row.
//   - State: everything needed to render and resume a game.

package game

// LetterStatus is the state of a single board cell or keyboard key.
//   - "correct": right letter, right position (terminal, completed rows).
//   - "present": letter in the word, elsewhere (terminal).
//   - "absent":  letter not (or no longer) available in the word (terminal).
//   - "revealed": the fixed first letter of the in-progress row.
//   - "hint": a position confirmed correct earlier, auto-filled in the in-progress row.
//   - "empty": unknown.
type LetterStatus string

const (
	StatusEmpty    LetterStatus = "empty"
	StatusCorrect  LetterStatus = "correct"
	StatusPresent  LetterStatus = "present"
	StatusAbsent   LetterStatus = "absent"
	StatusRevealed LetterStatus = "revealed"
	StatusHint     LetterStatus = "hint"
)

// Mode selects which game a State belongs to.
type Mode string

const (
	ModeDaily Mode = "daily"
	ModeFree  Mode = "free"
)

// ParseMode maps a string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeDaily, ModeFree:
		return Mode(s), true
	}
	return "", false
}

const (
	// MaxAttempts is the number of rows per game.
	MaxAttempts = 6
)

// Letter is one cell: an uppercase letter (or "") and its status.
type Letter struct {
	Char   string       `json:"char"`
	Status LetterStatus `json:"status"`
}

// Attempt is one row. Completed attempts are never modified.
type Attempt struct {
	Letters    []Letter `json:"letters"`
	IsComplete bool     `json:"isComplete"`
}

// State is a game instance. It is only changed through Engine.Apply, which
// always returns a new value.
type State struct {
	Mode           Mode                    `json:"mode"`
	TargetWord     string                  `json:"targetWord"`
	WordLength     int                     `json:"wordLength"`
	DayNumber      int                     `json:"dayNumber"`
	CurrentAttempt string                  `json:"currentAttempt"`
	CurrentRow     int                     `json:"currentRow"`
	Attempts       []Attempt               `json:"attempts"`
	KeyStates      map[string]LetterStatus `json:"keyStates"`
	IsComplete     bool                    `json:"isComplete"`
	IsWon          bool                    `json:"isWon"`
	ErrorMessage   string                  `json:"errorMessage,omitempty"`
}

// NewDaily returns the empty game for a daily target.
func NewDaily(target string, dayNumber int) State {
	s := newState(ModeDaily, target)
	s.DayNumber = dayNumber
	return s
}

// NewFree returns the empty game for a free-mode target.
func NewFree(target string) State {
	return newState(ModeFree, target)
}

func newState(mode Mode, target string) State {
	return State{
		Mode:           mode,
		TargetWord:     target,
		WordLength:     len(target),
		CurrentAttempt: firstLetter(target),
		Attempts:       []Attempt{},
		KeyStates:      map[string]LetterStatus{},
	}
}

func firstLetter(target string) string {
	if target == "" {
		return ""
	}
	return target[:1]
}
