package core

import "fmt"

// Storage slots holding the two collections.
const (
	KeyNotes = "WIKIS"
	KeyTags  = "TAGS"
)

// Collection names used in events.
const (
	CollectionNotes = "notes"
	CollectionTags  = "tags"
)

// Tag is a labeled category attachable to many notes.
type Tag struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Note is the persisted form of a wiki entry.
// TagIDs may reference tags that no longer exist; duplicates are allowed.
type Note struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Markdown string   `json:"markdown" yaml:"markdown"`
	TagIDs   []string `json:"tagIds" yaml:"tagIds"`
}

// NoteWithTags is a Note with its tag ids resolved against the tag registry.
// It is a read-only projection and is never persisted.
type NoteWithTags struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
	Tags     []Tag  `json:"tags"`
}

// HasTag reports whether the resolved tags contain id.
func (n NoteWithTags) HasTag(id string) bool {
	for _, t := range n.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// EventType represents the type of change.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to one of the collections.
// ID is empty when the whole collection changed (e.g. an external edit).
type Event struct {
	Type       EventType
	Collection string
	ID         string
	Timestamp  int64 // Unix timestamp
}

func (e Event) String() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s", e.Type, e.Collection)
	}
	return fmt.Sprintf("%s %s/%s", e.Type, e.Collection, e.ID)
}

type contextKey string

// ChangeReasonKey is the context key for passing the commit message/change reason
// to stores that version their writes.
const ChangeReasonKey contextKey = "change_reason"
