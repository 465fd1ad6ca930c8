package core

import (
	"slices"
	"strings"
)

// NoteFilter selects notes by title substring (case-insensitive) and
// required tags. The zero value matches every note.
type NoteFilter struct {
	Title  string
	TagIDs []string
}

// IsEmpty reports whether the filter matches everything.
func (f NoteFilter) IsEmpty() bool {
	return f.Title == "" && len(f.TagIDs) == 0
}

// Match reports whether n satisfies the filter.
func (f NoteFilter) Match(n NoteWithTags) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(f.Title)) {
		return false
	}
	for _, id := range f.TagIDs {
		if !n.HasTag(id) {
			return false
		}
	}
	return true
}

// JoinTags resolves each note's tag ids against the registry.
// Resolved tags follow registry order, not the note's selection order, and
// ids missing from the registry are dropped.
func JoinTags(notes []Note, tags []Tag) []NoteWithTags {
	result := make([]NoteWithTags, 0, len(notes))
	for _, n := range notes {
		resolved := make([]Tag, 0, len(n.TagIDs))
		for _, t := range tags {
			if slices.Contains(n.TagIDs, t.ID) {
				resolved = append(resolved, t)
			}
		}
		result = append(result, NoteWithTags{
			ID:       n.ID,
			Title:    n.Title,
			Markdown: n.Markdown,
			Tags:     resolved,
		})
	}
	return result
}

// FilterNotes returns the notes matching f, preserving order.
func FilterNotes(notes []NoteWithTags, f NoteFilter) []NoteWithTags {
	result := make([]NoteWithTags, 0, len(notes))
	for _, n := range notes {
		if f.Match(n) {
			result = append(result, n)
		}
	}
	return result
}

// TagIDs projects tags down to their ids.
func TagIDs(tags []Tag) []string {
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}
