package game

// Evaluate scores guess against target (equal length, uppercase A–Z).
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count the remaining (non-matched) target letters.
//
// Pass 2:
//   - Left to right, for each unresolved guess letter: if the remaining count
//     for that letter is positive, mark present and decrement; otherwise absent.
//
// Exact matches claim target occurrences before any displaced letter, so a
// letter never gets more correct+present marks than it has in the target.
func Evaluate(guess, target string) []Letter {
	n := len(guess)
	res := make([]Letter, n)

	// Remaining pool for non-matched positions (A–Z).
	var counts [26]int

	for i := 0; i < n; i++ {
		res[i].Char = guess[i : i+1]
		if i < len(target) && guess[i] == target[i] {
			res[i].Status = StatusCorrect
		} else if i < len(target) {
			if j := idx(target[i]); j >= 0 {
				counts[j]++
			}
		}
	}

	for i := 0; i < n; i++ {
		if res[i].Status == StatusCorrect {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && counts[j] > 0 {
			res[i].Status = StatusPresent
			counts[j]--
		} else {
			res[i].Status = StatusAbsent
		}
	}
	return res
}

// idx maps an uppercase ASCII letter to 0..25, or -1.
func idx(b byte) int {
	if b < 'A' || b > 'Z' {
		return -1
	}
	return int(b - 'A')
}

// IsWinning reports whether every letter is correct.
func IsWinning(letters []Letter) bool {
	if len(letters) == 0 {
		return false
	}
	for _, l := range letters {
		if l.Status != StatusCorrect {
			return false
		}
	}
	return true
}
