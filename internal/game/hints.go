package game

// HintPositions returns the pinned positions for the next row: index 0 and
// every index marked correct in a completed attempt. It is derived from the
// attempts each time so it cannot drift from them.
func HintPositions(attempts []Attempt) map[int]bool {
	pinned := map[int]bool{0: true}
	for _, a := range attempts {
		if !a.IsComplete {
			continue
		}
		for i, l := range a.Letters {
			if l.Status == StatusCorrect {
				pinned[i] = true
			}
		}
	}
	return pinned
}

// HintsRow builds the pre-filled row for a new attempt: the first letter as
// revealed, previously confirmed positions as hint, everything else empty.
func HintsRow(target string, attempts []Attempt) []Letter {
	row := make([]Letter, len(target))
	for i := range row {
		row[i] = Letter{Status: StatusEmpty}
	}
	if len(target) == 0 {
		return row
	}
	for i := range HintPositions(attempts) {
		if i >= len(target) {
			continue
		}
		row[i] = Letter{Char: target[i : i+1], Status: StatusHint}
	}
	row[0] = Letter{Char: target[:1], Status: StatusRevealed}
	return row
}
