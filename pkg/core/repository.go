package core

import "context"

// Store is the persistent key/value store holding serialized collections.
// Each key names one slot; values are opaque bytes produced by a codec.
type Store interface {
	// Get returns the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the bytes stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Initialize ensures the underlying storage is ready (e.g., create directories, git init, schema migration).
	Initialize(ctx context.Context) error
}

// Watchable is implemented by stores that can report slot changes made by
// other processes. Events carry the slot key in Collection.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Syncable defines an interface for stores that support synchronization with a remote.
type Syncable interface {
	// Sync synchronizes the local state with a remote source (e.g. git pull/push).
	Sync(ctx context.Context) error
}

// Closer is implemented by stores holding resources (database handles).
type Closer interface {
	Close() error
}
