package kv

import "context"

// Store is the durable key-value blob store behind the budget engine.
// Implementations persist small serialized blobs under fixed keys.
type Store interface {
	// Get returns the value stored under key. ok is false when the key
	// is absent; err reports storage failures only.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set durably writes value under key. The write has completed when
	// Set returns nil.
	Set(ctx context.Context, key, value string) error
}
