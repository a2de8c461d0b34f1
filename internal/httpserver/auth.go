// internal/httpserver/auth.go
//
// Accounts, sessions and player identity.
// Responsibilities:
//   - /auth/signup, /auth/login, /auth/logout, /auth/me.
//   - HS256 JWT in an HttpOnly cookie (or Authorization: Bearer).
//   - Anonymous player cookie for guests.
//   - Resolving the player ID every game route acts on:
//     "user:<id>" for a signed-in account, "anon:<uuid>" for a guest.
//   - Claiming the guest's progress into the account on signup/login.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/tusmo/internal/accounts"
)

// anonCookieTTL keeps a guest's identity for about six months.
const anonCookieTTL = 180 * 24 * time.Hour

type ctxUserKey struct{}
type ctxPlayerKey struct{}

// authUser is placed into request context by the auth middlewares.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func userPlayer(id string) string { return "user:" + id }
func anonPlayer(id string) string { return "anon:" + id }

// playerID returns the player resolved by withPlayer.
func playerID(r *http.Request) string {
	id, _ := r.Context().Value(ctxPlayerKey{}).(string)
	return id
}

func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// mountAuthRoutes registers /auth/*.
func (s *Server) mountAuthRoutes() {
	s.r.With(s.limiter.middleware).Post("/auth/signup", s.handleSignup)
	s.r.With(s.limiter.middleware).Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	})
}

// handleSignup creates a user, sets the auth cookie and claims guest progress.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Password)
	var verr *accounts.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	case errors.Is(err, accounts.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken")
		return
	case err != nil:
		s.log.Error().Err(err).Msg("create user")
		writeError(w, http.StatusInternalServerError, "signup_failed")
		return
	}
	if !s.startSession(w, u) {
		return
	}
	claimed := s.claimGuest(r, u.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt, "claimed": claimed,
	})
}

// handleLogin authenticates, sets the auth cookie and claims guest progress.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("authenticate")
		writeError(w, http.StatusInternalServerError, "login_failed")
		return
	}
	if !s.startSession(w, u) {
		return
	}
	claimed := s.claimGuest(r, u.ID)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "claimed": claimed})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) startSession(w http.ResponseWriter, u *accounts.User) bool {
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		s.log.Error().Err(err).Msg("sign jwt")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.setAuthCookie(w, tok, exp)
	return true
}

// claimGuest moves the guest's saved games onto the account when the account
// has none yet.
func (s *Server) claimGuest(r *http.Request, userID string) bool {
	anon := s.anonID(r)
	if anon == "" {
		return false
	}
	claimed, err := s.hub.Claim(r.Context(), anonPlayer(anon), userPlayer(userID))
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("claim guest progress")
		return false
	}
	if claimed {
		s.log.Info().Str("user", userID).Msg("claimed guest progress")
	}
	return claimed
}

// --------------------------- player identity -------------------------------

// withPlayer resolves the acting player: the signed-in user when a valid
// token is present, otherwise the guest (creating the anon cookie). It never
// rejects the request.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if u := s.userFromRequest(r); u != nil {
			ctx = context.WithValue(ctx, ctxUserKey{}, u)
			ctx = context.WithValue(ctx, ctxPlayerKey{}, userPlayer(u.ID))
		} else {
			ctx = context.WithValue(ctx, ctxPlayerKey{}, anonPlayer(s.ensureAnonID(w, r)))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth enforces a valid JWT for a user that still exists.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearerOrCookie(r, s.cfg.CookieName) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		u := s.userFromRequest(r)
		if u == nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) userFromRequest(r *http.Request) *authUser {
	tok := bearerOrCookie(r, s.cfg.CookieName)
	if tok == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil
	}
	u, err := s.users.FindByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return &authUser{ID: u.ID, Username: u.Username}
}

// anonID returns the guest ID from the anon cookie, or "".
func (s *Server) anonID(r *http.Request) string {
	c, err := r.Cookie(s.cfg.AnonCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// ensureAnonID returns the existing guest ID or sets a new anon cookie.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if id := s.anonID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	s.setCookie(w, s.cfg.AnonCookieName, id, time.Now().Add(anonCookieTTL))
	return id
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username expiring after JWTExpiresDays.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	s.setCookie(w, s.cfg.CookieName, token, exp)
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	c := s.cookie(s.cfg.CookieName, "")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time) {
	c := s.cookie(name, value)
	c.Expires = exp
	http.SetCookie(w, c)
}

// cookie builds an HttpOnly cookie; production cookies are Secure and
// SameSite=None so a separately hosted client can send them.
func (s *Server) cookie(name, value string) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cfg.Production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// bearerOrCookie extracts a token from the Authorization header or the auth cookie.
func bearerOrCookie(r *http.Request, cookieName string) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
