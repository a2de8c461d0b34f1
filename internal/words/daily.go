package words

import (
	"time"

	"github.com/robalobadob/tusmo/internal/daily"
)

// Daily returns the curated word for the calendar day containing t.
// Words cycle through the list in order with no repeat until it is exhausted.
func (s *Source) Daily(t time.Time) string {
	return s.daily[daily.Index(t, len(s.daily))]
}

// DailyNumber returns the puzzle number shown for t.
func (s *Source) DailyNumber(t time.Time) int {
	return daily.Number(t)
}
