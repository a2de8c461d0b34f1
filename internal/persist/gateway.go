// internal/persist/gateway.go
//
// Persistence gateway for one player's games.
// Responsibilities:
//   - Save, load and clear the daily game, the free-mode game and the streak
//     as JSON records in a key/value backend.
//   - Discard daily progress that belongs to another day.
//   - Absorb backend failures: a failed or malformed read is "no saved state",
//     a failed write is logged and returned but never touches game state.
//
// Keys (inside the player's namespace):
//   - tusmo_game_state       daily game
//   - tusmo_free_mode_state  free-mode game
//   - tusmo_streak           streak

package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/robalobadob/tusmo/internal/game"
	"github.com/robalobadob/tusmo/internal/store"
)

const (
	DailyKey  = "tusmo_game_state"
	FreeKey   = "tusmo_free_mode_state"
	StreakKey = "tusmo_streak"
)

// Gateway reads and writes one player's records.
type Gateway struct {
	kv  store.KV
	log zerolog.Logger
}

// New returns a Gateway over kv.
func New(kv store.KV, log zerolog.Logger) *Gateway {
	return &Gateway{kv: kv, log: log.With().Str("component", "persist").Logger()}
}

// LoadDaily returns the saved daily game for dayNumber. A missing, unreadable,
// malformed or stale record reports false.
func (g *Gateway) LoadDaily(ctx context.Context, dayNumber int) (PersistedState, bool) {
	var p PersistedState
	if !g.load(ctx, DailyKey, &p) {
		return PersistedState{}, false
	}
	if !validAttempts(p.Attempts) {
		g.log.Warn().Str("key", DailyKey).Msg("discard invalid daily state")
		return PersistedState{}, false
	}
	if p.DayNumber != dayNumber {
		g.log.Debug().Int("saved", p.DayNumber).Int("today", dayNumber).Msg("discard stale daily state")
		return PersistedState{}, false
	}
	return p, true
}

func (g *Gateway) SaveDaily(ctx context.Context, p PersistedState) error {
	return g.save(ctx, DailyKey, p)
}

func (g *Gateway) ClearDaily(ctx context.Context) error {
	return g.remove(ctx, DailyKey)
}

// LoadFree returns the saved free-mode game, finished or not.
func (g *Gateway) LoadFree(ctx context.Context) (FreeModePersistedState, bool) {
	var p FreeModePersistedState
	if !g.load(ctx, FreeKey, &p) {
		return FreeModePersistedState{}, false
	}
	if p.TargetWord == "" || !validAttempts(p.Attempts) {
		g.log.Warn().Str("key", FreeKey).Msg("discard invalid free mode state")
		return FreeModePersistedState{}, false
	}
	return p, true
}

// ResumeFree is LoadFree for a fresh session: a finished free-mode game is
// cleared and reported as absent so the player starts a new round.
func (g *Gateway) ResumeFree(ctx context.Context) (FreeModePersistedState, bool) {
	p, ok := g.LoadFree(ctx)
	if !ok {
		return p, false
	}
	if p.IsComplete {
		_ = g.ClearFree(ctx)
		return FreeModePersistedState{}, false
	}
	return p, true
}

func (g *Gateway) SaveFree(ctx context.Context, p FreeModePersistedState) error {
	return g.save(ctx, FreeKey, p)
}

func (g *Gateway) ClearFree(ctx context.Context) error {
	return g.remove(ctx, FreeKey)
}

// LoadStreak returns the saved streak, or the zero streak.
func (g *Gateway) LoadStreak(ctx context.Context) Streak {
	var s Streak
	if !g.load(ctx, StreakKey, &s) {
		return Streak{}
	}
	if s.CurrentStreak < 0 || s.MaxStreak < s.CurrentStreak {
		g.log.Warn().Str("key", StreakKey).Msg("discard invalid streak")
		return Streak{}
	}
	return s
}

func (g *Gateway) SaveStreak(ctx context.Context, s Streak) error {
	return g.save(ctx, StreakKey, s)
}

// Claim moves every record of from into g when g holds none of them: records
// are copied, then removed from from. It reports whether anything was moved.
func (g *Gateway) Claim(ctx context.Context, from *Gateway) (bool, error) {
	keys := []string{DailyKey, FreeKey, StreakKey}
	for _, k := range keys {
		if _, ok, err := g.kv.Get(ctx, k); err != nil {
			return false, fmt.Errorf("claim: read %s: %w", k, err)
		} else if ok {
			return false, nil
		}
	}
	copied := false
	for _, k := range keys {
		v, ok, err := from.kv.Get(ctx, k)
		if err != nil {
			return copied, fmt.Errorf("claim: read %s: %w", k, err)
		}
		if !ok {
			continue
		}
		if err := g.kv.Set(ctx, k, v); err != nil {
			return copied, fmt.Errorf("claim: write %s: %w", k, err)
		}
		copied = true
	}
	for _, k := range keys {
		if err := from.remove(ctx, k); err != nil {
			return copied, fmt.Errorf("claim: %w", err)
		}
	}
	return copied, nil
}

func (g *Gateway) load(ctx context.Context, key string, v any) bool {
	raw, ok, err := g.kv.Get(ctx, key)
	if err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("load failed")
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("discard malformed record")
		return false
	}
	return true
}

func (g *Gateway) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		g.log.Error().Err(err).Str("key", key).Msg("encode failed")
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := g.kv.Set(ctx, key, string(b)); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("save failed")
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (g *Gateway) remove(ctx context.Context, key string) error {
	if err := g.kv.Remove(ctx, key); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("clear failed")
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

var knownStatus = map[game.LetterStatus]bool{
	game.StatusEmpty: true, game.StatusCorrect: true, game.StatusPresent: true,
	game.StatusAbsent: true, game.StatusRevealed: true, game.StatusHint: true,
}

// validAttempts rejects records a hand-edited or corrupted store could hold.
func validAttempts(attempts []game.Attempt) bool {
	if len(attempts) > game.MaxAttempts {
		return false
	}
	for _, a := range attempts {
		for _, l := range a.Letters {
			if !knownStatus[l.Status] {
				return false
			}
		}
	}
	return true
}
