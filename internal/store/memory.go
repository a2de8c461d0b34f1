// internal/store/memory.go
//
// Key/value backends for persisted game records.
//
// Characteristics:
//   - KV is the whole contract: get, set, remove string values by key.
//   - The memory backend keeps values in a map guarded by an RWMutex
//     (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; the SQLite backend in
//     sqlite.go is used when durability is required.
//   - A missing key is not an error: Get reports it through its bool.

package store

import (
	"context"
	"sync"
)

// KV is the persistence backend consumed by the persistence gateway.
// Implementations may be backed by memory (this file), SQLite, etc.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Memory is an in-memory map-based KV.
type Memory struct {
	mu     sync.RWMutex      // guards values
	values map[string]string // keyed by full key
}

// NewMemory constructs an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
