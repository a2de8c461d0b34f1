package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/tusmo/assets"
	"github.com/robalobadob/tusmo/internal/accounts"
	"github.com/robalobadob/tusmo/internal/config"
	"github.com/robalobadob/tusmo/internal/daily"
	"github.com/robalobadob/tusmo/internal/database"
	"github.com/robalobadob/tusmo/internal/game"
	"github.com/robalobadob/tusmo/internal/persist"
	"github.com/robalobadob/tusmo/internal/session"
	"github.com/robalobadob/tusmo/internal/store"
	"github.com/robalobadob/tusmo/internal/words"
)

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		LogLevel:       "disabled",
		JWTSecret:      "test-secret",
		JWTExpiresDays: 1,
		CookieName:     "tusmo_token",
		AnonCookieName: "tusmo_anon",
		ClientOrigin:   "http://localhost:5173",
		RequestTimeout: 5 * time.Second,
		ErrorDismiss:   2 * time.Second,
		SaveQueueSize:  64,
	}
}

type testEnv struct {
	srv *httptest.Server
}

// newTestEnv serves a fresh stack where every daily game is ARGENT.
func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, assets.Migrations()))

	src, err := words.New([]string{"ARGENT"}, []string{"ANIMAL", "AVOCAT", "NIVEAU"})
	require.NoError(t, err)

	results := daily.NewStore(db)
	hub := session.New(session.Options{
		Words:  src,
		KV:     store.NewSQLite(db),
		Ledger: results,
		Log:    zerolog.Nop(),
	})
	t.Cleanup(func() { _ = hub.Close(context.Background()) })

	s := New(cfg, Deps{
		Hub:     hub,
		Words:   src,
		Users:   accounts.NewStore(db).WithCost(bcrypt.MinCost),
		Results: results,
		Log:     zerolog.Nop(),
	})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return &testEnv{srv: ts}
}

func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func call(t *testing.T, c *http.Client, method, target string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, target, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

// typeWord enters the letters of word after its first (pre-filled) letter.
func (e *testEnv) typeWord(t *testing.T, c *http.Client, mode, word string) gameView {
	t.Helper()
	var v gameView
	for _, ch := range word[1:] {
		code := call(t, c, http.MethodPost, e.srv.URL+"/game/"+mode+"/letter", letterReq{Letter: string(ch)}, &v)
		require.Equal(t, http.StatusOK, code)
	}
	return v
}

func (e *testEnv) guess(t *testing.T, c *http.Client, mode, word string) gameView {
	t.Helper()
	e.typeWord(t, c, mode, word)
	var v gameView
	require.Equal(t, http.StatusOK, call(t, c, http.MethodPost, e.srv.URL+"/game/"+mode+"/submit", nil, &v))
	return v
}

func TestHealthAndDiagnostics(t *testing.T) {
	e := newTestEnv(t, testConfig())
	c := e.client(t)

	var health map[string]bool
	assert.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/health", nil, &health))
	assert.True(t, health["ok"])

	var counts map[string]int
	assert.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/debug/words", nil, &counts))
	assert.Equal(t, 1, counts["daily"])
	assert.Equal(t, 4, counts["dictionary"])

	var nf map[string]string
	assert.Equal(t, http.StatusNotFound, call(t, c, http.MethodGet, e.srv.URL+"/nope", nil, &nf))
	assert.Equal(t, "not_found", nf["error"])
}

func TestSnapshotIssuesAnonCookieAndHidesTarget(t *testing.T) {
	e := newTestEnv(t, testConfig())
	c := e.client(t)

	var v gameView
	require.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/game/daily", nil, &v))
	assert.Equal(t, game.ModeDaily, v.State.Mode)
	assert.Empty(t, v.State.TargetWord)
	assert.Equal(t, 6, v.State.WordLength)
	assert.Equal(t, "A", v.State.CurrentAttempt)
	assert.Len(t, v.Board.Rows, game.MaxAttempts)
	assert.Equal(t, "A", v.Board.Rows[0].Letters[0].Char)
	assert.Len(t, v.Keyboard, len(game.Layout))
	assert.EqualValues(t, 2000, v.ErrorDismissMs)

	u := mustURL(t, e.srv.URL)
	var anon string
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == "tusmo_anon" {
			anon = ck.Value
		}
	}
	assert.NotEmpty(t, anon)

	// The same guest gets the same game back.
	e.typeWord(t, c, "daily", "AR")
	require.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/game/daily", nil, &v))
	assert.Equal(t, "AR", v.State.CurrentAttempt)
}

func TestDailyGameToCompletion(t *testing.T) {
	e := newTestEnv(t, testConfig())
	c := e.client(t)

	v := e.guess(t, c, "daily", "ANIMAL")
	assert.Len(t, v.State.Attempts, 1)
	assert.False(t, v.State.IsComplete)
	assert.Empty(t, v.State.TargetWord)

	v = e.guess(t, c, "daily", "ARGENT")
	assert.True(t, v.State.IsWon)
	assert.True(t, v.State.IsComplete)
	assert.Equal(t, "ARGENT", v.State.TargetWord)
	assert.Equal(t, persist.Streak{CurrentStreak: 1, MaxStreak: 1, LastWonDay: v.State.DayNumber}, v.Streak)

	// Finished: further input is ignored.
	var after gameView
	require.Equal(t, http.StatusOK, call(t, c, http.MethodPost, e.srv.URL+"/game/daily/letter", letterReq{Letter: "B"}, &after))
	assert.Equal(t, v.State, after.State)

	var streak persist.Streak
	require.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/streak", nil, &streak))
	assert.Equal(t, 1, streak.CurrentStreak)

	require.Eventually(t, func() bool {
		var sum daily.Summary
		call(t, c, http.MethodGet, e.srv.URL+"/stats/me", nil, &sum)
		return sum.Played == 1 && sum.Wins == 1 && sum.Distribution[2] == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRejectedGuessKeepsRow(t *testing.T) {
	e := newTestEnv(t, testConfig())
	c := e.client(t)

	v := e.guess(t, c, "daily", "AZZZZZ")
	assert.Empty(t, v.State.Attempts)
	assert.Equal(t, "word not recognized", v.State.ErrorMessage)
	assert.Equal(t, "AZZZZZ", v.State.CurrentAttempt)

	var cleared gameView
	require.Equal(t, http.StatusOK, call(t, c, http.MethodPost, e.srv.URL+"/game/daily/clear-error", nil, &cleared))
	assert.Empty(t, cleared.State.ErrorMessage)

	var back gameView
	require.Equal(t, http.StatusOK, call(t, c, http.MethodPost, e.srv.URL+"/game/daily/backspace", nil, &back))
	assert.Equal(t, "AZZZZ", back.State.CurrentAttempt)
}

func TestFreeMode(t *testing.T) {
	e := newTestEnv(t, testConfig())
	c := e.client(t)

	var v gameView
	require.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/game/free", nil, &v))
	assert.Equal(t, game.ModeFree, v.State.Mode)
	assert.Empty(t, v.State.TargetWord)

	require.Equal(t, http.StatusOK, call(t, c, http.MethodPost, e.srv.URL+"/game/free/new", nil, &v))
	assert.Equal(t, game.ModeFree, v.State.Mode)
	assert.Empty(t, v.State.Attempts)

	var errBody map[string]string
	assert.Equal(t, http.StatusConflict, call(t, c, http.MethodPost, e.srv.URL+"/game/daily/new", nil, &errBody))
	assert.Equal(t, "daily_cannot_restart", errBody["error"])
}

func TestUnknownModeAndBadJSON(t *testing.T) {
	e := newTestEnv(t, testConfig())
	c := e.client(t)

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, call(t, c, http.MethodGet, e.srv.URL+"/game/weekly", nil, &body))
	assert.Equal(t, "unknown_mode", body["error"])

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/game/daily/letter", bytes.NewBufferString("{"))
	require.NoError(t, err)
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAccountLifecycle(t *testing.T) {
	e := newTestEnv(t, testConfig())
	c := e.client(t)
	creds := credentials{Username: "camille", Password: "motdepasse"}

	var body map[string]any
	assert.Equal(t, http.StatusUnauthorized, call(t, c, http.MethodGet, e.srv.URL+"/auth/me", nil, &body))

	require.Equal(t, http.StatusCreated, call(t, c, http.MethodPost, e.srv.URL+"/auth/signup", creds, &body))
	assert.Equal(t, "camille", body["username"])

	var me authUser
	require.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/auth/me", nil, &me))
	assert.Equal(t, "camille", me.Username)

	other := e.client(t)
	assert.Equal(t, http.StatusConflict, call(t, other, http.MethodPost, e.srv.URL+"/auth/signup", creds, &body))
	assert.Equal(t, http.StatusBadRequest, call(t, other, http.MethodPost, e.srv.URL+"/auth/signup",
		credentials{Username: "x", Password: "motdepasse"}, &body))
	assert.Equal(t, http.StatusUnauthorized, call(t, other, http.MethodPost, e.srv.URL+"/auth/login",
		credentials{Username: "camille", Password: "wrong-password"}, &body))
	assert.Equal(t, http.StatusOK, call(t, other, http.MethodPost, e.srv.URL+"/auth/login", creds, &body))
	assert.Equal(t, http.StatusOK, call(t, other, http.MethodGet, e.srv.URL+"/auth/me", nil, &me))

	require.Equal(t, http.StatusOK, call(t, c, http.MethodPost, e.srv.URL+"/auth/logout", nil, &body))
	assert.Equal(t, http.StatusUnauthorized, call(t, c, http.MethodGet, e.srv.URL+"/auth/me", nil, &body))
}

func TestSignupClaimsGuestProgress(t *testing.T) {
	e := newTestEnv(t, testConfig())
	c := e.client(t)

	e.guess(t, c, "daily", "ANIMAL")

	var body map[string]any
	require.Equal(t, http.StatusCreated, call(t, c, http.MethodPost, e.srv.URL+"/auth/signup",
		credentials{Username: "camille", Password: "motdepasse"}, &body))
	assert.Equal(t, true, body["claimed"])

	// Same game, now played as the account.
	var v gameView
	require.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/game/daily", nil, &v))
	require.Len(t, v.State.Attempts, 1)

	// A fresh device logging in sees the account's game.
	other := e.client(t)
	require.Equal(t, http.StatusOK, call(t, other, http.MethodPost, e.srv.URL+"/auth/login",
		credentials{Username: "camille", Password: "motdepasse"}, &body))
	assert.Equal(t, false, body["claimed"])
	require.Equal(t, http.StatusOK, call(t, other, http.MethodGet, e.srv.URL+"/game/daily", nil, &v))
	assert.Len(t, v.State.Attempts, 1)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 2
	e := newTestEnv(t, cfg)
	c := e.client(t)

	target := e.srv.URL + "/game/daily/backspace"
	assert.Equal(t, http.StatusOK, call(t, c, http.MethodPost, target, nil, nil))
	assert.Equal(t, http.StatusOK, call(t, c, http.MethodPost, target, nil, nil))

	var body map[string]string
	assert.Equal(t, http.StatusTooManyRequests, call(t, c, http.MethodPost, target, nil, &body))
	assert.Equal(t, "rate_limited", body["error"])

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, call(t, c, http.MethodGet, e.srv.URL+"/game/daily", nil, nil))
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t, testConfig())
	req, err := http.NewRequest(http.MethodOptions, e.srv.URL+"/game/daily/submit", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
}
