// Package lifecycle bridges wiki change events into the lifecycle runtime.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/wiki/pkg/core"
)

// Option configures a Source.
type Option func(*changeSource)

// OnlyCollections drops events outside the named collections
// (core.CollectionNotes, core.CollectionTags). No names keeps everything.
func OnlyCollections(names ...string) Option {
	return func(s *changeSource) {
		if len(names) > 0 {
			s.collections = names
		}
	}
}

type changeSource struct {
	events      <-chan core.Event
	out         chan lifecycle.Event
	collections []string
}

// NewSource creates a lifecycle.Source that emits wiki change events,
// typically the channel returned by core.Service.Watch. The output closes
// when the input closes or the Start context is done.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &changeSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, s.forward)
	return nil
}

func (s *changeSource) keep(e core.Event) bool {
	return s.collections == nil || slices.Contains(s.collections, e.Collection)
}

func (s *changeSource) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		var e core.Event
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-s.events:
			if !ok {
				return nil
			}
			e = next
		}

		if !s.keep(e) {
			continue
		}

		// core.Event satisfies lifecycle.Event through String.
		select {
		case s.out <- e:
		case <-ctx.Done():
			return nil
		}
	}
}
