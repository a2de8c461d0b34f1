// internal/words/words.go
//
// Word source for the game engine.
//
// Responsibilities:
//   - Load the curated daily list and the dictionary from files or fall back to
//     the embedded defaults in the assets package.
//   - Answer membership queries (IsValid) and draw random free-mode words.
//
// Word lists:
//   - "daily": curated words, one per day in order.
//   - "dictionary": accepted guesses (always includes the daily words).
//   - "free": dictionary words that are never daily words; free mode draws
//     from it so it cannot spoil an upcoming daily.
//
// Constraints:
//   • Words are 6–10 letters A–Z, no accents.
//   • Lists are normalized to uppercase; duplicates are dropped.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/tusmo/assets"
)

const (
	MinLength = 6
	MaxLength = 10
)

// ErrEmptyDaily is returned when no playable daily word survives loading.
var ErrEmptyDaily = errors.New("words: daily list is empty")

// Source is the word oracle consulted by the engine.
type Source struct {
	daily   []string
	dict    []string
	free    []string
	dictSet map[string]struct{}
}

// New builds a Source from raw lists. Invalid entries are skipped.
func New(dailyList, dictionary []string) (*Source, error) {
	d := normalize(dailyList)
	if len(d) == 0 {
		return nil, ErrEmptyDaily
	}
	all := lo.Uniq(append(normalize(dictionary), d...))
	dailySet := toSet(d)
	return &Source{
		daily: d,
		dict:  all,
		free: lo.Reject(all, func(w string, _ int) bool {
			_, ok := dailySet[w]
			return ok
		}),
		dictSet: toSet(all),
	}, nil
}

// Load reads the daily list and dictionary from the given paths; an empty path
// selects the embedded default for that list.
func Load(dailyPath, dictionaryPath string) (*Source, error) {
	dailyList, err := readList(dailyPath, assets.DailyList)
	if err != nil {
		return nil, fmt.Errorf("load daily words: %w", err)
	}
	dictionary, err := readList(dictionaryPath, assets.DictionaryList)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	return New(dailyList, dictionary)
}

func readList(path string, fallback func() ([]string, error)) ([]string, error) {
	if path == "" {
		return fallback()
	}
	return readWordFile(path)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// normalize uppercases and keeps valid words, preserving order.
func normalize(list []string) []string {
	out := lo.FilterMap(list, func(w string, _ int) (string, bool) {
		w = strings.ToUpper(strings.TrimSpace(w))
		return w, Playable(w)
	})
	return lo.Uniq(out)
}

// Playable reports whether w is 6–10 uppercase ASCII letters.
func Playable(w string) bool {
	if len(w) < MinLength || len(w) > MaxLength {
		return false
	}
	return isUpperAlpha(w)
}

func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// Random returns a uniformly random free-mode word, or "" when every
// dictionary word is also a daily word.
func (s *Source) Random() string {
	if len(s.free) == 0 {
		return ""
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(s.free))))
	if err != nil {
		return s.free[0]
	}
	return s.free[n.Int64()]
}

// IsValid reports whether w is in the dictionary, ignoring case.
func (s *Source) IsValid(w string) bool {
	_, ok := s.dictSet[strings.ToUpper(w)]
	return ok
}

// Stats returns counts of loaded words: (daily, dictionary).
func (s *Source) Stats() (dailyCount int, dictionaryCount int) {
	return len(s.daily), len(s.dict)
}
