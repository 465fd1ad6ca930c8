package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/wiki/pkg/state"
)

const defaultEventBuffer = 100

// Service owns the tag registry and the note collection.
// All mutations write through to the store before returning.
type Service struct {
	store  Store
	notes  *state.State[[]Note]
	tags   *state.State[[]Tag]
	logger *slog.Logger
	codec  state.Codec
	newID  func() string

	eventBufferSize int

	mu         sync.RWMutex
	derived    []NoteWithTags
	derivedKey [2]uint64
	hasDerived bool
	subs       map[int]chan Event
	nextSub    int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the service. Nil disables logging.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCodec sets the encoding of both collections. Defaults to JSON.
func WithCodec(c state.Codec) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithIDGenerator replaces the random (UUIDv4) id generator.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithEventBuffer sets the per-subscriber event buffer size.
func WithEventBuffer(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// NewService loads both collections from store and returns their owner.
// Missing or unreadable slots start as empty collections.
func NewService(ctx context.Context, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:           store,
		codec:           state.JSONCodec{},
		newID:           uuid.NewString,
		eventBufferSize: defaultEventBuffer,
		subs:            make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}

	stateOpts := []state.Option{state.WithCodec(s.codec), state.WithLogger(s.logger)}
	s.notes = state.Use(ctx, store, KeyNotes, []Note{}, stateOpts...)
	s.tags = state.Use(ctx, store, KeyTags, []Tag{}, stateOpts...)

	return s
}

// Close releases the store when it holds resources (e.g. a database handle).
func (s *Service) Close() error {
	if c, ok := s.store.(Closer); ok {
		return c.Close()
	}
	return nil
}

// Sync pulls remote changes into the store and reloads both collections.
func (s *Service) Sync(ctx context.Context) error {
	syncable, ok := s.store.(Syncable)
	if !ok {
		return fmt.Errorf("store does not support synchronization")
	}
	if err := syncable.Sync(ctx); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	if s.notes.Reload(ctx) {
		s.publish(Event{Type: EventModify, Collection: CollectionNotes})
	}
	if s.tags.Reload(ctx) {
		s.publish(Event{Type: EventModify, Collection: CollectionTags})
	}
	return nil
}

// --- Queries ---

// Notes returns the raw note collection in insertion order.
func (s *Service) Notes() []Note {
	return slices.Clone(s.notes.Get())
}

// Tags returns the tag registry in insertion order.
func (s *Service) Tags() []Tag {
	return slices.Clone(s.tags.Get())
}

// NotesWithTags returns every note with its tags resolved.
// The join is recomputed only when either collection changed since the last call.
// The returned values share tag slices with the cache and must not be modified.
func (s *Service) NotesWithTags() []NoteWithTags {
	notes, nv := s.notes.Snapshot()
	tags, tv := s.tags.Snapshot()
	key := [2]uint64{nv, tv}

	s.mu.RLock()
	if s.hasDerived && s.derivedKey == key {
		cached := slices.Clone(s.derived)
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	joined := JoinTags(notes, tags)

	s.mu.Lock()
	s.derived = joined
	s.derivedKey = key
	s.hasDerived = true
	s.mu.Unlock()

	return slices.Clone(joined)
}

// FindNotes returns the notes matching f in collection order.
func (s *Service) FindNotes(f NoteFilter) []NoteWithTags {
	return FilterNotes(s.NotesWithTags(), f)
}

// Note looks up a note by id. The second result is false when it does not exist.
func (s *Service) Note(id string) (NoteWithTags, bool) {
	for _, n := range s.NotesWithTags() {
		if n.ID == id {
			return n, true
		}
	}
	return NoteWithTags{}, false
}

// Tag looks up a tag by id.
func (s *Service) Tag(id string) (Tag, bool) {
	for _, t := range s.tags.Get() {
		if t.ID == id {
			return t, true
		}
	}
	return Tag{}, false
}

// TagByLabel finds the first tag whose label equals label, ignoring case
// and surrounding whitespace.
func (s *Service) TagByLabel(label string) (Tag, bool) {
	label = strings.TrimSpace(label)
	for _, t := range s.tags.Get() {
		if strings.EqualFold(strings.TrimSpace(t.Label), label) {
			return t, true
		}
	}
	return Tag{}, false
}

// --- Note mutations ---

// CreateNote appends a note with a fresh id and the ids of req.Tags.
func (s *Service) CreateNote(ctx context.Context, req CreateNoteRequest) (Note, error) {
	if err := req.Validate(); err != nil {
		return Note{}, err
	}

	note := Note{
		ID:       s.newID(),
		Title:    req.Title,
		Markdown: req.Markdown,
		TagIDs:   TagIDs(req.Tags),
	}

	ctx = withChangeReason(ctx, "create note "+note.ID)
	if err := s.notes.Update(ctx, func(prev []Note) []Note {
		return append(slices.Clip(prev), note)
	}); err != nil {
		return Note{}, fmt.Errorf("failed to create note: %w", err)
	}

	s.debug("note created", "id", note.ID, "tags", len(note.TagIDs))
	s.publish(Event{Type: EventCreate, Collection: CollectionNotes, ID: note.ID})
	return note, nil
}

// UpdateNote replaces title, markdown and tag ids of the note with req.ID.
// A missing note is a silent no-op.
func (s *Service) UpdateNote(ctx context.Context, req UpdateNoteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx = withChangeReason(ctx, "update note "+req.ID)
	changed, err := s.notes.Mutate(ctx, func(prev []Note) ([]Note, bool) {
		i := slices.IndexFunc(prev, func(n Note) bool { return n.ID == req.ID })
		if i < 0 {
			return prev, false
		}
		next := slices.Clone(prev)
		next[i] = Note{
			ID:       req.ID,
			Title:    req.Title,
			Markdown: req.Markdown,
			TagIDs:   TagIDs(req.Tags),
		}
		return next, true
	})
	if err != nil {
		return fmt.Errorf("failed to update note %s: %w", req.ID, err)
	}

	if changed {
		s.debug("note updated", "id", req.ID)
		s.publish(Event{Type: EventModify, Collection: CollectionNotes, ID: req.ID})
	}
	return nil
}

// DeleteNote removes the note with id. A missing note is a silent no-op.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	ctx = withChangeReason(ctx, "delete note "+id)
	changed, err := s.notes.Mutate(ctx, func(prev []Note) ([]Note, bool) {
		next := slices.DeleteFunc(slices.Clone(prev), func(n Note) bool { return n.ID == id })
		return next, len(next) != len(prev)
	})
	if err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}

	if changed {
		s.debug("note deleted", "id", id)
		s.publish(Event{Type: EventDelete, Collection: CollectionNotes, ID: id})
	}
	return nil
}

// --- Tag mutations ---

// AddTag appends a tag to the registry. Labels are not deduplicated, ids
// are: an id already in the registry is rejected with ErrInvalidRequest.
func (s *Service) AddTag(ctx context.Context, req AddTagRequest) (Tag, error) {
	if err := req.Validate(); err != nil {
		return Tag{}, err
	}

	tag := Tag{ID: req.ID, Label: req.Label}
	if tag.ID == "" {
		tag.ID = s.newID()
	}

	var taken bool
	ctx = withChangeReason(ctx, "add tag "+tag.Label)
	if _, err := s.tags.Mutate(ctx, func(prev []Tag) ([]Tag, bool) {
		if slices.ContainsFunc(prev, func(t Tag) bool { return t.ID == tag.ID }) {
			taken = true
			return prev, false
		}
		return append(slices.Clip(prev), tag), true
	}); err != nil {
		return Tag{}, fmt.Errorf("failed to add tag: %w", err)
	}
	if taken {
		return Tag{}, fmt.Errorf("%w: tag id %s already exists", ErrInvalidRequest, tag.ID)
	}

	s.debug("tag added", "id", tag.ID, "label", tag.Label)
	s.publish(Event{Type: EventCreate, Collection: CollectionTags, ID: tag.ID})
	return tag, nil
}

// UpdateTag renames the tag with req.ID. Notes referencing it are untouched.
// A missing tag is a silent no-op.
func (s *Service) UpdateTag(ctx context.Context, req UpdateTagRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx = withChangeReason(ctx, "rename tag "+req.ID)
	changed, err := s.tags.Mutate(ctx, func(prev []Tag) ([]Tag, bool) {
		i := slices.IndexFunc(prev, func(t Tag) bool { return t.ID == req.ID })
		if i < 0 {
			return prev, false
		}
		next := slices.Clone(prev)
		next[i].Label = req.Label
		return next, true
	})
	if err != nil {
		return fmt.Errorf("failed to update tag %s: %w", req.ID, err)
	}

	if changed {
		s.debug("tag renamed", "id", req.ID, "label", req.Label)
		s.publish(Event{Type: EventModify, Collection: CollectionTags, ID: req.ID})
	}
	return nil
}

// DeleteTag removes the tag with id from the registry. Notes keep the id in
// their TagIDs; the join drops it. A missing tag is a silent no-op.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	ctx = withChangeReason(ctx, "delete tag "+id)
	changed, err := s.tags.Mutate(ctx, func(prev []Tag) ([]Tag, bool) {
		next := slices.DeleteFunc(slices.Clone(prev), func(t Tag) bool { return t.ID == id })
		return next, len(next) != len(prev)
	})
	if err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", id, err)
	}

	if changed {
		s.debug("tag deleted", "id", id)
		s.publish(Event{Type: EventDelete, Collection: CollectionTags, ID: id})
	}
	return nil
}

// --- Events ---

// Watch subscribes to change events until ctx is done.
// Slow consumers lose events rather than blocking mutations.
// When the store is Watchable, external edits of a slot reload the matching
// collection and are reported as a MODIFY event with an empty ID.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, s.eventBufferSize)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	if w, ok := s.store.(Watchable); ok {
		upstream, err := w.Watch(ctx, "*")
		if err != nil {
			s.unsubscribe(id)
			return nil, fmt.Errorf("failed to watch store: %w", err)
		}
		go s.relay(ctx, upstream)
	}

	go func() {
		<-ctx.Done()
		s.unsubscribe(id)
	}()

	return ch, nil
}

// relay reloads collections when the store reports an external change.
func (s *Service) relay(ctx context.Context, upstream <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-upstream:
			if !ok {
				return
			}
			var changed bool
			var collection string
			switch e.Collection {
			case KeyNotes:
				changed, collection = s.notes.Reload(ctx), CollectionNotes
			case KeyTags:
				changed, collection = s.tags.Reload(ctx), CollectionTags
			default:
				continue
			}
			if changed {
				s.debug("collection reloaded", "collection", collection)
				s.publish(Event{Type: EventModify, Collection: collection})
			}
		}
	}
}

func (s *Service) publish(e Event) {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().Unix()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.debug("event dropped, subscriber buffer full", "event", e.String())
		}
	}
}

func (s *Service) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Service) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// withChangeReason sets a default change reason unless the caller provided one.
func withChangeReason(ctx context.Context, reason string) context.Context {
	if val, ok := ctx.Value(ChangeReasonKey).(string); ok && val != "" {
		return ctx
	}
	return context.WithValue(ctx, ChangeReasonKey, reason)
}
