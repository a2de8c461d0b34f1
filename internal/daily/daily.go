// internal/daily/daily.go
//
// Calendar arithmetic for the daily puzzle.
//
// The daily word is a function of the number of whole days elapsed since a
// fixed epoch (2024-01-01, UTC). Both the word index and the displayed puzzle
// number use the absolute value of that count, so dates before the epoch
// mirror dates after it: DaysSince(-n) and DaysSince(n) select the same word
// and the same number. This is the long-standing behavior of the game and
// changing it would change which word belongs to which historical date.

package daily

import "time"

// Epoch is the first day of the daily puzzle.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DaysSince returns the floor of whole days between Epoch and t.
// It is negative for instants before Epoch.
func DaysSince(t time.Time) int {
	d := t.Sub(Epoch)
	n := int(d / day)
	if d < 0 && d%day != 0 {
		n--
	}
	return n
}

// Index returns the daily word index for t in a list of length n.
func Index(t time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	return abs(DaysSince(t)) % n
}

// Number returns the 1-based puzzle number for t. It keys persisted daily
// progress: a saved game is only resumable while Number stays the same.
func Number(t time.Time) int {
	return abs(DaysSince(t)) + 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
