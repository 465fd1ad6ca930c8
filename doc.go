// Package wiki is the composition root for the wiki application.
//
// It connects the core domain (tags, notes and the derived note/tag join)
// with the storage adapters using the same hexagonal layout as the rest of
// the module.
//
// A wiki holds two collections. The tag registry is an ordered list of
// labeled tags; the note collection is an ordered list of markdown notes, each
// referencing tags by id. Every mutation is written through to the store
// before it returns, so reopening a vault always yields the last written
// state. Deleting a tag never rewrites notes: references to it are simply
// dropped when notes are joined with their tags.
//
// Stores:
//
//   - fs (default): one file per collection in a vault directory, atomic
//     writes, optional Git history and remote sync, change watching.
//   - sqlite: a single key/value table.
//   - memory: ephemeral, for tests.
//
// Usage:
//
//	svc, err := wiki.New("./notes",
//		wiki.WithAutoInit(true),
//		wiki.WithLogger(logger),
//	)
//
//	tag, err := svc.AddTag(ctx, core.AddTagRequest{Label: "go"})
//	note, err := svc.CreateNote(ctx, core.CreateNoteRequest{
//		Title:    "Intro",
//		Markdown: "# Hi",
//		Tags:     []core.Tag{tag},
//	})
package wiki
