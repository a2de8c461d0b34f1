package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaverRunsJobsInOrder(t *testing.T) {
	s := newSaver(8, zerolog.Nop())

	var mu sync.Mutex
	var order []int
	for i := 0; i < 5; i++ {
		require.True(t, s.enqueue("job", func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
			return nil
		}))
	}
	require.NoError(t, s.close(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSaverDropsWhenFull(t *testing.T) {
	s := newSaver(1, zerolog.Nop())
	release := make(chan struct{})
	started := make(chan struct{})

	require.True(t, s.enqueue("block", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.True(t, s.enqueue("queued", func(context.Context) error { return nil }))
	assert.False(t, s.enqueue("dropped", func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, s.close(context.Background()))
}

func TestSaverDoWaitsForResult(t *testing.T) {
	s := newSaver(4, zerolog.Nop())
	boom := errors.New("boom")

	ran := false
	require.True(t, s.enqueue("first", func(context.Context) error { ran = true; return nil }))
	err := s.do(context.Background(), "second", func(context.Context) error {
		assert.True(t, ran)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, s.close(context.Background()))
}

func TestSaverAfterClose(t *testing.T) {
	s := newSaver(1, zerolog.Nop())
	require.NoError(t, s.close(context.Background()))
	require.NoError(t, s.close(context.Background()))

	assert.False(t, s.enqueue("late", func(context.Context) error { return nil }))
	assert.ErrorIs(t, s.do(context.Background(), "late", func(context.Context) error { return nil }), ErrClosed)
}

func TestSaverCloseHonoursContext(t *testing.T) {
	s := newSaver(1, zerolog.Nop())
	release := make(chan struct{})
	require.True(t, s.enqueue("slow", func(context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.close(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, s.close(context.Background()))
}
