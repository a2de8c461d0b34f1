package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is one finished daily game for a player.
type Result struct {
	PlayerID  string `json:"playerId"`
	DayNumber int    `json:"dayNumber"`
	Date      string `json:"date"`
	Guesses   int    `json:"guesses"`
	Won       bool   `json:"won"`
}

// Summary aggregates a player's daily results.
type Summary struct {
	Played       int         `json:"played"`
	Wins         int         `json:"wins"`
	Distribution map[int]int `json:"distribution"` // guesses -> wins
}

// Store is the daily_results ledger.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts r. A second result for the same player and day is ignored.
func (s *Store) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, day_number, date, guesses, won)
		VALUES(?,?,?,?,?)`, r.PlayerID, r.DayNumber, r.Date, r.Guesses, r.Won,
	)
	if err != nil {
		return fmt.Errorf("insert daily result: %w", err)
	}
	return nil
}

// Summary returns played/won counts and the win distribution by guess count.
func (s *Store) Summary(ctx context.Context, playerID string) (Summary, error) {
	out := Summary{Distribution: map[int]int{}}
	rows, err := s.db.QueryContext(ctx,
		`SELECT guesses, won FROM daily_results WHERE player_id=?`, playerID)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var guesses int
		var won bool
		if err := rows.Scan(&guesses, &won); err != nil {
			return out, err
		}
		out.Played++
		if won {
			out.Wins++
			out.Distribution[guesses]++
		}
	}
	return out, rows.Err()
}

// Claim moves every result of from onto to, skipping days to already has.
func (s *Store) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET player_id=? WHERE player_id=?`, to, from)
	if err != nil {
		return fmt.Errorf("claim daily results: %w", err)
	}
	return nil
}
