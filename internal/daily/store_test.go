package daily

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/tusmo/assets"
	"github.com/robalobadob/tusmo/internal/database"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, assets.Migrations()))
	return NewStore(db)
}

func TestRecordAndSummary(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Record(ctx, Result{PlayerID: "p1", DayNumber: 10, Date: "2024-01-10", Guesses: 3, Won: true}))
	require.NoError(t, s.Record(ctx, Result{PlayerID: "p1", DayNumber: 11, Date: "2024-01-11", Guesses: 6, Won: false}))
	require.NoError(t, s.Record(ctx, Result{PlayerID: "p1", DayNumber: 12, Date: "2024-01-12", Guesses: 3, Won: true}))

	// A second result for the same day is ignored.
	require.NoError(t, s.Record(ctx, Result{PlayerID: "p1", DayNumber: 10, Date: "2024-01-10", Guesses: 1, Won: true}))

	sum, err := s.Summary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, Summary{Played: 3, Wins: 2, Distribution: map[int]int{3: 2}}, sum)

	empty, err := s.Summary(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, Summary{Distribution: map[int]int{}}, empty)
}

func TestClaim(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Record(ctx, Result{PlayerID: "anon", DayNumber: 1, Date: "2024-01-01", Guesses: 2, Won: true}))
	require.NoError(t, s.Record(ctx, Result{PlayerID: "anon", DayNumber: 2, Date: "2024-01-02", Guesses: 4, Won: true}))
	require.NoError(t, s.Record(ctx, Result{PlayerID: "user", DayNumber: 2, Date: "2024-01-02", Guesses: 5, Won: true}))

	require.NoError(t, s.Claim(ctx, "anon", "user"))

	sum, err := s.Summary(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Played)
	assert.Equal(t, map[int]int{2: 1, 5: 1}, sum.Distribution)

	// No-op claims.
	assert.NoError(t, s.Claim(ctx, "", "user"))
	assert.NoError(t, s.Claim(ctx, "user", "user"))
}
