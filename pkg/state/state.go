// Package state binds an in-memory value to one slot of a key/value store.
//
// A State is the Go rendition of a "persisted state hook": it is initialized
// from the store on creation (falling back to a default when the slot is
// absent or unreadable) and every change is written through to the store
// before it becomes visible to readers.
package state

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Store is the slot storage a State writes through to.
// Any read error is treated as "absent" by State.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

type options struct {
	codec  Codec
	logger *slog.Logger
}

// Option configures a State.
type Option func(*options)

// WithCodec sets the encoding used for the slot. Defaults to JSONCodec.
func WithCodec(c Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets the logger used to report fallbacks. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// State holds the current value of one store slot.
type State[T any] struct {
	store  Store
	key    string
	codec  Codec
	logger *slog.Logger

	mu      sync.Mutex
	value   T
	raw     []byte // last bytes read from or written to the slot
	version uint64
}

// Use creates a State for key, loading its initial value from store.
// If the slot is missing or cannot be decoded, def is used instead; this
// never fails.
func Use[T any](ctx context.Context, store Store, key string, def T, opts ...Option) *State[T] {
	o := &options{codec: JSONCodec{}}
	for _, opt := range opts {
		opt(o)
	}

	s := &State[T]{
		store:  store,
		key:    key,
		codec:  o.codec,
		logger: o.logger,
		value:  def,
	}

	if value, raw, ok := s.load(ctx); ok {
		s.value = value
		s.raw = raw
	}
	return s
}

// load reads and decodes the slot. ok is false when the caller should keep
// its current value.
func (s *State[T]) load(ctx context.Context) (value T, raw []byte, ok bool) {
	raw, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.debug("slot unavailable, using default", "key", s.key, "error", err)
		return value, nil, false
	}

	if err := s.codec.Unmarshal(raw, &value); err != nil {
		if s.logger != nil {
			s.logger.Warn("slot content unreadable, using default", "key", s.key, "error", err)
		}
		return value, nil, false
	}
	if isNil(value) {
		s.debug("slot holds null, using default", "key", s.key)
		return value, nil, false
	}
	return value, raw, true
}

// isNil reports whether v is a nil slice, map or pointer, as produced by
// decoding "null".
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Key returns the store slot this state is bound to.
func (s *State[T]) Key() string {
	return s.key
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Snapshot returns the current value together with its version.
func (s *State[T]) Snapshot() (T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.version
}

// Version increments on every accepted change (Set, Update, Mutate, Reload).
func (s *State[T]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Set replaces the value and writes it through to the store.
func (s *State[T]) Set(ctx context.Context, v T) error {
	return s.Update(ctx, func(T) T { return v })
}

// Update computes the next value from the previous one and writes it through.
// The read-modify-write is atomic with respect to other changes of this State.
func (s *State[T]) Update(ctx context.Context, fn func(prev T) T) error {
	_, err := s.Mutate(ctx, func(prev T) (T, bool) {
		return fn(prev), true
	})
	return err
}

// Mutate is Update with an escape hatch: when fn reports changed == false
// nothing is written and the version is left untouched.
//
// On a store failure the in-memory value is not replaced, so readers never
// observe a value the store does not hold.
func (s *State[T]) Mutate(ctx context.Context, fn func(prev T) (next T, changed bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(s.value)
	if !changed {
		return false, nil
	}

	data, err := s.codec.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", s.key, err)
	}

	if err := s.store.Set(ctx, s.key, data); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", s.key, err)
	}

	s.value = next
	s.raw = data
	s.version++
	return true, nil
}

// Reload re-reads the slot, e.g. after the store reported an external change.
// It reports whether the value changed. Unreadable content keeps the current
// value.
func (s *State[T]) Reload(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, raw, ok := s.load(ctx)
	if !ok || bytes.Equal(raw, s.raw) {
		return false
	}

	s.value = value
	s.raw = raw
	s.version++
	return true
}

func (s *State[T]) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
