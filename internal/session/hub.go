// internal/session/hub.go
//
// Hosting event loop for live games.
// Responsibilities:
//   - Hold each player's daily game, free-mode game and streak in memory.
//   - Serialize a player's events: one event is applied to completion before
//     the next is accepted. Different players run in parallel.
//   - Replace the daily game when the calendar day rolls over.
//   - Record the streak and the daily result when a daily game ends.
//   - Hand every save to the background saver; gameplay never waits on
//     storage and a failed save never changes in-memory state.
//   - Drop players idle for longer than IdleTTL once their saves are
//     written; the next access reloads them from storage.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/tusmo/internal/daily"
	"github.com/robalobadob/tusmo/internal/game"
	"github.com/robalobadob/tusmo/internal/persist"
	"github.com/robalobadob/tusmo/internal/store"
)

var (
	ErrUnknownMode = errors.New("session: unknown mode")
	ErrNoWords     = errors.New("session: no word available")
)

// Words is the word source the hub plays with.
type Words interface {
	game.Words
	Daily(t time.Time) string
	DailyNumber(t time.Time) int
}

// Ledger records finished daily games.
type Ledger interface {
	Record(ctx context.Context, r daily.Result) error
	Claim(ctx context.Context, from, to string) error
}

// Options configures a Hub.
type Options struct {
	Words     Words
	KV        store.KV
	Ledger    Ledger // optional
	Log       zerolog.Logger
	Now       func() time.Time // defaults to time.Now
	QueueSize int              // saver buffer, defaults to 256
	IdleTTL   time.Duration    // in-memory lifetime of an idle player, defaults to 30m
}

const (
	defaultIdleTTL = 30 * time.Minute
	sweepEvery     = time.Minute
)

// Hub owns the live games of every player.
type Hub struct {
	words  Words
	engine *game.Engine
	kv     store.KV
	ledger Ledger
	log    zerolog.Logger
	now    func() time.Time
	saver  *saver
	idle   time.Duration

	mu        sync.Mutex
	players   map[string]*player
	lastSweep time.Time
}

type player struct {
	mu     sync.Mutex
	id     string
	gw     *persist.Gateway
	daily  *game.State
	free   *game.State
	streak *persist.Streak

	lastSeen time.Time    // guarded by Hub.mu
	pending  atomic.Int64 // saves queued but not yet written
}

// New starts a Hub and its background saver. Call Close to stop it.
func New(opts Options) *Hub {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	log := opts.Log.With().Str("component", "session").Logger()
	return &Hub{
		words:   opts.Words,
		engine:  game.NewEngine(opts.Words),
		kv:      opts.KV,
		ledger:  opts.Ledger,
		log:     log,
		now:     opts.Now,
		saver:   newSaver(opts.QueueSize, log),
		idle:    opts.IdleTTL,
		players: make(map[string]*player),
	}
}

// Close stops the saver after flushing queued saves.
func (h *Hub) Close(ctx context.Context) error {
	return h.saver.close(ctx)
}

func (h *Hub) player(id string) *player {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if now.Sub(h.lastSweep) > sweepEvery {
		h.sweep(now)
		h.lastSweep = now
	}

	p, ok := h.players[id]
	if !ok {
		p = &player{id: id, gw: persist.New(store.NewNamespace(h.kv, id), h.log)}
		h.players[id] = p
	}
	p.lastSeen = now
	return p
}

// sweep drops players idle for longer than h.idle whose saves have all been
// written. h.mu must be held.
func (h *Hub) sweep(now time.Time) {
	dropped := 0
	for id, p := range h.players {
		if now.Sub(p.lastSeen) > h.idle && p.pending.Load() == 0 {
			delete(h.players, id)
			dropped++
		}
	}
	if dropped > 0 {
		h.log.Debug().Int("dropped", dropped).Int("live", len(h.players)).Msg("idle players swept")
	}
}

// save queues fn on the saver, counting it against p until it has run.
func (h *Hub) save(p *player, name string, fn func(ctx context.Context) error) {
	p.pending.Add(1)
	ok := h.saver.enqueue(name, func(ctx context.Context) error {
		defer p.pending.Add(-1)
		return fn(ctx)
	})
	if !ok {
		p.pending.Add(-1)
	}
}

// Forget drops a player's in-memory games; the next access reloads them.
func (h *Hub) Forget(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.players, id)
}

// Snapshot returns the player's current game for mode, loading or creating
// it when needed.
func (h *Hub) Snapshot(ctx context.Context, id string, mode game.Mode) (game.State, error) {
	p := h.player(id)
	p.mu.Lock()
	defer p.mu.Unlock()
	return h.current(ctx, p, mode)
}

// Dispatch applies ev to the player's game for mode and returns the result.
// StartFree always targets the free-mode game.
func (h *Hub) Dispatch(ctx context.Context, id string, mode game.Mode, ev game.Event) (game.State, error) {
	if _, ok := ev.(game.StartFree); ok {
		mode = game.ModeFree
	}
	p := h.player(id)
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, err := h.current(ctx, p, mode)
	if err != nil {
		return game.State{}, err
	}
	next := h.engine.Apply(prev, ev)
	if next.TargetWord == "" {
		return prev, ErrNoWords
	}

	switch mode {
	case game.ModeDaily:
		p.daily = &next
		rec := persist.DailyFromState(next)
		h.save(p, "daily", func(ctx context.Context) error { return p.gw.SaveDaily(ctx, rec) })
		if !prev.IsComplete && next.IsComplete {
			h.finishDaily(ctx, p, next)
		}
	case game.ModeFree:
		p.free = &next
		rec := persist.FreeFromState(next)
		h.save(p, "free", func(ctx context.Context) error { return p.gw.SaveFree(ctx, rec) })
	}
	return next, nil
}

// NewFreeRound starts a fresh free-mode game for the player.
func (h *Hub) NewFreeRound(ctx context.Context, id string) (game.State, error) {
	return h.Dispatch(ctx, id, game.ModeFree, game.StartFree{})
}

// Streak returns the player's streak.
func (h *Hub) Streak(ctx context.Context, id string) persist.Streak {
	p := h.player(id)
	p.mu.Lock()
	defer p.mu.Unlock()
	return h.streak(ctx, p)
}

// Claim moves the saved progress of from onto to when to has none, after
// every save already queued has been written. The guest's records are removed
// once copied. It reports whether progress was moved.
func (h *Hub) Claim(ctx context.Context, from, to string) (bool, error) {
	if from == "" || to == "" || from == to {
		return false, nil
	}
	var copied bool
	err := h.saver.do(ctx, "claim", func(ctx context.Context) error {
		src := persist.New(store.NewNamespace(h.kv, from), h.log)
		dst := persist.New(store.NewNamespace(h.kv, to), h.log)
		var err error
		if copied, err = dst.Claim(ctx, src); err != nil {
			return err
		}
		if h.ledger != nil {
			return h.ledger.Claim(ctx, from, to)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", from, err)
	}
	if copied {
		h.Forget(from)
		h.Forget(to)
	}
	return copied, nil
}

// current returns the live game for mode. p.mu must be held.
func (h *Hub) current(ctx context.Context, p *player, mode game.Mode) (game.State, error) {
	switch mode {
	case game.ModeDaily:
		return h.currentDaily(ctx, p), nil
	case game.ModeFree:
		return h.currentFree(ctx, p)
	}
	return game.State{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

func (h *Hub) currentDaily(ctx context.Context, p *player) game.State {
	now := h.now()
	day := h.words.DailyNumber(now)
	if p.daily != nil && p.daily.DayNumber == day {
		return *p.daily
	}

	target := h.words.Daily(now)
	s := game.NewDaily(target, day)
	if saved, ok := p.gw.LoadDaily(ctx, day); ok {
		if restored, ok := persist.RestoreDaily(saved, target); ok {
			s = restored
		} else {
			h.log.Warn().Str("player", p.id).Int("day", day).Msg("saved daily state does not fit today's word")
		}
	}
	if p.daily != nil {
		h.log.Debug().Str("player", p.id).Int("from", p.daily.DayNumber).Int("to", day).Msg("daily rollover")
	}
	p.daily = &s
	return s
}

func (h *Hub) currentFree(ctx context.Context, p *player) (game.State, error) {
	if p.free != nil {
		return *p.free, nil
	}
	if saved, ok := p.gw.ResumeFree(ctx); ok {
		if s, ok := persist.RestoreFree(saved); ok {
			p.free = &s
			return s, nil
		}
	}
	s := h.engine.Apply(game.State{}, game.StartFree{})
	if s.TargetWord == "" {
		return game.State{}, ErrNoWords
	}
	p.free = &s
	return s, nil
}

func (h *Hub) streak(ctx context.Context, p *player) persist.Streak {
	if p.streak == nil {
		s := p.gw.LoadStreak(ctx)
		p.streak = &s
	}
	return *p.streak
}

// finishDaily credits the streak and the ledger for a daily game that just
// ended. p.mu must be held.
func (h *Hub) finishDaily(ctx context.Context, p *player, s game.State) {
	st := h.streak(ctx, p).Record(s.DayNumber, s.IsWon)
	p.streak = &st
	h.save(p, "streak", func(ctx context.Context) error { return p.gw.SaveStreak(ctx, st) })

	h.log.Info().
		Str("player", p.id).
		Int("day", s.DayNumber).
		Int("attempts", len(s.Attempts)).
		Bool("won", s.IsWon).
		Int("streak", st.CurrentStreak).
		Msg("daily finished")

	if h.ledger == nil {
		return
	}
	res := daily.Result{
		PlayerID:  p.id,
		DayNumber: s.DayNumber,
		Date:      daily.DateKey(h.now()),
		Guesses:   len(s.Attempts),
		Won:       s.IsWon,
	}
	h.save(p, "ledger", func(ctx context.Context) error { return h.ledger.Record(ctx, res) })
}
