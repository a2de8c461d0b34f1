// internal/httpserver/routes_game.go
//
// HTTP routes for playing. Guests and accounts alike.
//   - GET  /game/{mode}              → current game snapshot
//   - POST /game/{mode}/letter       → type one letter ({"letter":"a"})
//   - POST /game/{mode}/backspace    → remove the last typed letter
//   - POST /game/{mode}/submit       → score the current row
//   - POST /game/{mode}/clear-error  → dismiss the error message
//   - POST /game/free/new            → start a new free-mode round
//   - GET  /streak                   → daily win streak
//   - GET  /stats/me                 → finished daily games summary
//
// {mode} is "daily" or "free". Every game response is a full snapshot;
// rejected keystrokes simply return the unchanged game.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/tusmo/internal/game"
	"github.com/robalobadob/tusmo/internal/persist"
	"github.com/robalobadob/tusmo/internal/session"
)

// gameView is the snapshot returned by every /game route.
type gameView struct {
	State          game.State     `json:"state"`
	Board          game.Board     `json:"board"`
	Keyboard       [][]game.Key   `json:"keyboard"`
	Streak         persist.Streak `json:"streak"`
	ErrorDismissMs int64          `json:"errorDismissMs"`
}

type letterReq struct {
	Letter string `json:"letter"`
}

// mountGameRoutes registers the game, streak and stats routes.
func (s *Server) mountGameRoutes() {
	r := s.r.With(s.withPlayer)
	r.Get("/game/{mode}", s.handleSnapshot)
	r.Get("/streak", s.handleStreak)
	r.Get("/stats/me", s.handleStats)

	post := r.With(s.limiter.middleware)
	post.Post("/game/{mode}/letter", s.handleLetter)
	post.Post("/game/{mode}/backspace", s.handleEvent(game.Backspace{}))
	post.Post("/game/{mode}/submit", s.handleEvent(game.Submit{}))
	post.Post("/game/{mode}/clear-error", s.handleEvent(game.ClearError{}))
	post.Post("/game/{mode}/new", s.handleNewRound)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(w, r)
	if !ok {
		return
	}
	st, err := s.hub.Snapshot(r.Context(), playerID(r), mode)
	s.respond(w, r, st, err)
}

func (s *Server) handleLetter(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(w, r)
	if !ok {
		return
	}
	var body letterReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	st, err := s.hub.Dispatch(r.Context(), playerID(r), mode, game.LetterInput{Char: body.Letter})
	s.respond(w, r, st, err)
}

func (s *Server) handleEvent(ev game.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, ok := modeParam(w, r)
		if !ok {
			return
		}
		st, err := s.hub.Dispatch(r.Context(), playerID(r), mode, ev)
		s.respond(w, r, st, err)
	}
}

// handleNewRound starts a free-mode round. Daily games cannot be restarted.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(w, r)
	if !ok {
		return
	}
	if mode != game.ModeFree {
		writeError(w, http.StatusConflict, "daily_cannot_restart")
		return
	}
	st, err := s.hub.NewFreeRound(r.Context(), playerID(r))
	s.respond(w, r, st, err)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Streak(r.Context(), playerID(r)))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "stats_unavailable")
		return
	}
	sum, err := s.results.Summary(r.Context(), playerID(r))
	if err != nil {
		s.log.Error().Err(err).Msg("daily summary")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// respond writes the snapshot for st, or maps err to a JSON error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, st game.State, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownMode):
		writeError(w, http.StatusNotFound, "unknown_mode")
		return
	case errors.Is(err, session.ErrNoWords):
		writeError(w, http.StatusServiceUnavailable, "no_words")
		return
	case err != nil:
		s.log.Error().Err(err).Str("player", playerID(r)).Msg("game event")
		writeError(w, http.StatusInternalServerError, "game_error")
		return
	}

	view := gameView{
		Board:          game.BuildBoard(st),
		Keyboard:       game.BuildKeyboard(st.KeyStates),
		Streak:         s.hub.Streak(r.Context(), playerID(r)),
		ErrorDismissMs: s.cfg.ErrorDismiss.Milliseconds(),
	}
	if !st.IsComplete {
		st.TargetWord = ""
	}
	view.State = st
	writeJSON(w, http.StatusOK, view)
}

func modeParam(w http.ResponseWriter, r *http.Request) (game.Mode, bool) {
	mode, ok := game.ParseMode(chi.URLParam(r, "mode"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_mode")
	}
	return mode, ok
}
