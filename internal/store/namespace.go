package store

import "context"

// Namespace is a view of a KV where every key is prefixed, so that one
// backend can hold the records of many players.
type Namespace struct {
	kv     KV
	prefix string
}

// NewNamespace scopes kv to name. Keys become "name:key".
func NewNamespace(kv KV, name string) Namespace {
	return Namespace{kv: kv, prefix: name + ":"}
}

func (n Namespace) Get(ctx context.Context, key string) (string, bool, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n Namespace) Set(ctx context.Context, key, value string) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n Namespace) Remove(ctx context.Context, key string) error {
	return n.kv.Remove(ctx, n.prefix+key)
}
