package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Notes           int    `json:"notes"`
	Tags            int    `json:"tags"`
	NotesVersion    uint64 `json:"notes_version"`
	TagsVersion     uint64 `json:"tags_version"`
	Subscribers     int    `json:"subscribers"`
	EventBufferSize int    `json:"event_buffer_size"`
	StoreType       string `json:"store_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	notes, nv := s.notes.Snapshot()
	tags, tv := s.tags.Snapshot()

	s.mu.RLock()
	subscribers := len(s.subs)
	s.mu.RUnlock()

	storeType := "unknown"
	if s.store != nil {
		storeType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	return ServiceState{
		Notes:           len(notes),
		Tags:            len(tags),
		NotesVersion:    nv,
		TagsVersion:     tv,
		Subscribers:     subscribers,
		EventBufferSize: s.eventBufferSize,
		StoreType:       storeType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
