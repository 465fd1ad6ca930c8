package wiki_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/wiki"
	"github.com/aretw0/wiki/pkg/core"
)

// Example_basic creates a vault, tags a note and reads it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "wiki-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := wiki.New(tmpDir, wiki.WithAutoInit(true), wiki.WithVersioning(false))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	tag, err := svc.AddTag(ctx, core.AddTagRequest{Label: "go"})
	if err != nil {
		log.Fatal(err)
	}

	note, err := svc.CreateNote(ctx, core.CreateNoteRequest{
		Title:    "Intro",
		Markdown: "# Hi",
		Tags:     []core.Tag{tag},
	})
	if err != nil {
		log.Fatal(err)
	}

	got, _ := svc.Note(note.ID)
	fmt.Printf("%s [%s]\n", got.Title, got.Tags[0].Label)
	// Output:
	// Intro [go]
}

// Example_deleteTag shows that deleting a tag leaves notes referencing it intact.
func Example_deleteTag() {
	svc, err := wiki.New("", wiki.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	tag, _ := svc.AddTag(ctx, core.AddTagRequest{ID: "t1", Label: "go"})
	note, _ := svc.CreateNote(ctx, core.CreateNoteRequest{Title: "Intro", Markdown: "# Hi", Tags: []core.Tag{tag}})

	if err := svc.DeleteTag(ctx, tag.ID); err != nil {
		log.Fatal(err)
	}

	got, _ := svc.Note(note.ID)
	fmt.Println(len(svc.Tags()), len(got.Tags), svc.Notes()[0].TagIDs)
	// Output:
	// 0 0 [t1]
}

// ExampleService_FindNotes filters notes by title and tags.
func ExampleService_FindNotes() {
	svc, err := wiki.New("", wiki.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	goTag, _ := svc.AddTag(ctx, core.AddTagRequest{Label: "go"})
	dbTag, _ := svc.AddTag(ctx, core.AddTagRequest{Label: "db"})
	_, _ = svc.CreateNote(ctx, core.CreateNoteRequest{Title: "Go basics", Markdown: "x", Tags: []core.Tag{goTag}})
	_, _ = svc.CreateNote(ctx, core.CreateNoteRequest{Title: "Go and SQL", Markdown: "x", Tags: []core.Tag{goTag, dbTag}})
	_, _ = svc.CreateNote(ctx, core.CreateNoteRequest{Title: "Postgres", Markdown: "x", Tags: []core.Tag{dbTag}})

	for _, n := range svc.FindNotes(wiki.NoteFilter{Title: "go", TagIDs: []string{dbTag.ID}}) {
		fmt.Println(n.Title)
	}
	// Output:
	// Go and SQL
}
