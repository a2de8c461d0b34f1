package game

import (
	"maps"
	"strings"
)

// priority orders keyboard feedback; only a strictly higher value overwrites.
var priority = map[LetterStatus]int{
	StatusCorrect:  3,
	StatusPresent:  2,
	StatusAbsent:   1,
	StatusEmpty:    0,
	StatusRevealed: 0,
	StatusHint:     0,
}

// MergeKeyStates folds a scored row into the keyboard states and returns the
// result as a new map. A key's status never loses precedence.
func MergeKeyStates(current map[string]LetterStatus, letters []Letter) map[string]LetterStatus {
	updated := maps.Clone(current)
	if updated == nil {
		updated = make(map[string]LetterStatus, len(letters))
	}
	for _, l := range letters {
		if l.Char == "" {
			continue
		}
		key := strings.ToLower(l.Char)
		if priority[l.Status] > priority[updated[key]] {
			updated[key] = l.Status
		}
	}
	return updated
}
