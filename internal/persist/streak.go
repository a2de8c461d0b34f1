package persist

// Streak counts consecutive days with a daily win.
type Streak struct {
	CurrentStreak int `json:"currentStreak"`
	MaxStreak     int `json:"maxStreak"`
	LastWonDay    int `json:"lastWonDay"`
}

// Record returns the streak after a daily game for day ends.
//   - loss: current streak drops to 0, max is kept.
//   - win on the day after LastWonDay: current streak grows by one.
//   - win on any other day: current streak restarts at 1.
//   - win on LastWonDay itself: unchanged.
func (s Streak) Record(day int, won bool) Streak {
	if !won {
		s.CurrentStreak = 0
		return s
	}
	if s.LastWonDay == day {
		return s
	}
	if s.LastWonDay == day-1 {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 1
	}
	s.LastWonDay = day
	s.MaxStreak = max(s.MaxStreak, s.CurrentStreak)
	return s
}
