package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrClosed is returned for work handed to a closed saver.
var ErrClosed = errors.New("session: saver closed")

// saveTimeout bounds one background write.
const saveTimeout = 5 * time.Second

type job struct {
	name string
	run  func(ctx context.Context) error
	done chan error // nil for fire-and-forget
}

// saver runs persistence work on one goroutine, in submission order.
type saver struct {
	mu     sync.RWMutex // guards closed against sends on jobs
	closed bool
	jobs   chan job
	done   chan struct{}
	log    zerolog.Logger
}

func newSaver(size int, log zerolog.Logger) *saver {
	if size < 1 {
		size = 1
	}
	s := &saver{
		jobs: make(chan job, size),
		done: make(chan struct{}),
		log:  log,
	}
	go s.loop()
	return s
}

func (s *saver) loop() {
	defer close(s.done)
	for j := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := j.run(ctx)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Str("job", j.name).Msg("background save failed")
		}
		if j.done != nil {
			j.done <- err
		}
	}
}

// enqueue hands fn to the saver without blocking. A full queue drops it.
func (s *saver) enqueue(name string, fn func(ctx context.Context) error) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn().Str("job", name).Msg("save after close dropped")
		return false
	}
	select {
	case s.jobs <- job{name: name, run: fn}:
		return true
	default:
		s.log.Warn().Str("job", name).Int("queue", cap(s.jobs)).Msg("save queue full, dropped")
		return false
	}
}

// do runs fn after every job already queued and waits for its result.
func (s *saver) do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	select {
	case s.jobs <- job{name: name, run: fn, done: done}:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting work and waits for queued jobs to finish.
func (s *saver) close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.jobs)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
