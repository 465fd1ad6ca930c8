// Package memory provides an in-process slot store.
// It is used for tests and for the --adapter=memory CLI mode.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/wiki/pkg/core"
)

// Store keeps slots in a map. Data is copied on the way in and out.
type Store struct {
	mu       sync.RWMutex
	slots    map[string][]byte
	readOnly bool
	writes   int
}

// Option configures a Store.
type Option func(*Store)

// WithReadOnly rejects every Set with core.ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(s *Store) {
		s.readOnly = readOnly
	}
}

// WithSlot preloads a slot.
func WithSlot(key string, data []byte) Option {
	return func(s *Store) {
		s.slots[key] = slices.Clone(data)
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{slots: make(map[string][]byte)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize implements core.Store. There is nothing to prepare.
func (s *Store) Initialize(ctx context.Context) error {
	return nil
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return slices.Clone(data), nil
}

// Set implements core.Store.
func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	if s.readOnly {
		return core.ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = slices.Clone(data)
	s.writes++
	return nil
}

// Writes returns the number of accepted Set calls.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Slots    []string `json:"slots"`
	Writes   int      `json:"writes"`
	ReadOnly bool     `json:"read_only"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.slots))
	for k := range s.slots {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return StoreState{Slots: keys, Writes: s.writes, ReadOnly: s.readOnly}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory-store"
}

var (
	_ core.Store                   = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
