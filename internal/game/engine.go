// internal/game/engine.go
//
// Game state machine for a single Tusmo game.
// Responsibilities:
//   - Accept letter, backspace, submit and clear-error events.
//   - Keep the first letter and previously confirmed positions pinned,
//     auto-filling them as the player types.
//   - Validate and score submitted guesses, tracking playing → won/lost.
//   - Start a new free-mode round from any state.
//
// Notes:
//   - Apply is pure: it returns a new State and never writes through the
//     slices or maps of its input.
//   - Guard violations (typing into a finished game, a full row, a non-letter)
//     are silent no-ops. Only submit validation reports, via ErrorMessage.

package game

import (
	"fmt"
	"slices"
	"strings"
)

// Words is the dictionary the engine consults.
type Words interface {
	IsValid(word string) bool
	Random() string
}

// Engine applies events to game states.
type Engine struct {
	words Words
}

// NewEngine returns an Engine backed by words.
func NewEngine(words Words) *Engine {
	return &Engine{words: words}
}

// Event is an input to Apply.
type Event interface{ event() }

type (
	// LetterInput types one letter. Lowercase is accepted.
	LetterInput struct{ Char string }
	// Backspace removes the last typed letter.
	Backspace struct{}
	// Submit scores the current row.
	Submit struct{}
	// ClearError dismisses ErrorMessage.
	ClearError struct{}
	// StartFree replaces the state with a fresh free-mode round.
	StartFree struct{}
)

func (LetterInput) event() {}
func (Backspace) event()   {}
func (Submit) event()      {}
func (ClearError) event()  {}
func (StartFree) event()   {}

// Apply returns the state that results from ev.
func (e *Engine) Apply(s State, ev Event) State {
	switch ev := ev.(type) {
	case LetterInput:
		return e.addLetter(s, ev.Char)
	case Backspace:
		return e.removeLetter(s)
	case Submit:
		return e.submit(s)
	case ClearError:
		s.ErrorMessage = ""
		return s
	case StartFree:
		word := strings.ToUpper(e.words.Random())
		if word == "" {
			return s
		}
		return NewFree(word)
	}
	return s
}

func (e *Engine) addLetter(s State, ch string) State {
	if s.IsComplete || len(s.CurrentAttempt) >= s.WordLength {
		return s
	}
	letter := strings.ToUpper(ch)
	if len(letter) != 1 || idx(letter[0]) < 0 {
		return s
	}

	pinned := HintPositions(s.Attempts)
	next := fillPinned(s.CurrentAttempt, s.TargetWord, s.WordLength, pinned)

	// Every remaining position is pinned: the keystroke has nowhere to go.
	if len(next) >= s.WordLength {
		return s
	}
	next = fillPinned(next+letter, s.TargetWord, s.WordLength, pinned)

	s.CurrentAttempt = next
	s.ErrorMessage = ""
	return s
}

// fillPinned appends target letters while the next position is pinned.
func fillPinned(attempt, target string, wordLength int, pinned map[int]bool) string {
	for n := len(attempt); n < wordLength && n < len(target) && pinned[n]; n = len(attempt) {
		attempt += target[n : n+1]
	}
	return attempt
}

func (e *Engine) removeLetter(s State) State {
	if s.IsComplete || len(s.CurrentAttempt) <= 1 {
		return s
	}

	pinned := HintPositions(s.Attempts)
	next := s.CurrentAttempt
	for len(next) > 1 {
		last := len(next) - 1
		next = next[:last]
		if !pinned[last] {
			break
		}
	}

	s.CurrentAttempt = next
	s.ErrorMessage = ""
	return s
}

func (e *Engine) submit(s State) State {
	if s.IsComplete {
		return s
	}
	guess := strings.ToUpper(s.CurrentAttempt)
	if err := e.Validate(s, guess); err != nil {
		s.ErrorMessage = err.Error()
		return s
	}

	letters := Evaluate(guess, s.TargetWord)
	attempts := append(slices.Clone(s.Attempts), Attempt{Letters: letters, IsComplete: true})
	won := IsWinning(letters)
	over := won || len(attempts) >= MaxAttempts

	s.Attempts = attempts
	s.KeyStates = MergeKeyStates(s.KeyStates, letters)
	s.CurrentRow = len(attempts)
	s.IsWon = won
	s.IsComplete = over
	s.ErrorMessage = ""
	if over {
		s.CurrentAttempt = guess
	} else {
		s.CurrentAttempt = firstLetter(s.TargetWord)
	}
	return s
}

// ErrorKind classifies a rejected guess.
type ErrorKind string

const (
	ErrLength      ErrorKind = "length"
	ErrFirstLetter ErrorKind = "first_letter"
	ErrUnknownWord ErrorKind = "unknown_word"
)

// GuessError is a submit-time validation failure. Message is user facing.
type GuessError struct {
	Kind    ErrorKind
	Message string
}

func (e *GuessError) Error() string { return e.Message }

// Validate checks guess for s in order: length, first letter, dictionary.
func (e *Engine) Validate(s State, guess string) error {
	guess = strings.ToUpper(guess)
	if len(guess) != s.WordLength || guess == "" {
		return &GuessError{Kind: ErrLength, Message: fmt.Sprintf("word must have %d letters", s.WordLength)}
	}
	first := firstLetter(s.TargetWord)
	if guess[:1] != first {
		return &GuessError{Kind: ErrFirstLetter, Message: "word must start with " + first}
	}
	if !e.words.IsValid(guess) {
		return &GuessError{Kind: ErrUnknownWord, Message: "word not recognized"}
	}
	return nil
}
