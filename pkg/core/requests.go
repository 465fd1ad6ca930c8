package core

import (
	"fmt"
	"strings"
)

// CreateNoteRequest carries the fields of a new note.
// Tags are resolved records; only their ids are persisted.
type CreateNoteRequest struct {
	Title    string
	Markdown string
	Tags     []Tag
}

// Validate checks the request at the boundary.
func (r CreateNoteRequest) Validate() error {
	return validateNoteFields(r.Title, r.Markdown)
}

// UpdateNoteRequest replaces title, markdown and tags of the note with ID.
type UpdateNoteRequest struct {
	ID       string
	Title    string
	Markdown string
	Tags     []Tag
}

// Validate checks the request at the boundary.
func (r UpdateNoteRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: note id is required", ErrInvalidRequest)
	}
	return validateNoteFields(r.Title, r.Markdown)
}

func validateNoteFields(title, markdown string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(markdown) == "" {
		return fmt.Errorf("%w: markdown body is required", ErrInvalidRequest)
	}
	return nil
}

// AddTagRequest registers a new tag. An empty ID is replaced by a generated one.
type AddTagRequest struct {
	ID    string
	Label string
}

// Validate checks the request at the boundary.
func (r AddTagRequest) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return fmt.Errorf("%w: tag label is required", ErrInvalidRequest)
	}
	return nil
}

// UpdateTagRequest renames the tag with ID.
type UpdateTagRequest struct {
	ID    string
	Label string
}

// Validate checks the request at the boundary.
func (r UpdateTagRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: tag id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Label) == "" {
		return fmt.Errorf("%w: tag label is required", ErrInvalidRequest)
	}
	return nil
}
