package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/wiki"
	"github.com/aretw0/wiki/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to create")
	tags := flag.Int("tags", 20, "Number of tags in the registry")
	adapter := flag.String("adapter", "fs", "Storage adapter: fs, sqlite or memory")
	keep := flag.Bool("keep", false, "Keep the benchmark vault after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "wiki_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Gitless: measure encoding and store writes, not git overhead.
	svc, err := wiki.New(benchDir,
		wiki.WithLogger(logger),
		wiki.WithAutoInit(true),
		wiki.WithVersioning(false),
		wiki.WithAdapter(*adapter),
	)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	registry := make([]core.Tag, 0, max(*tags, 1))
	for i := 0; i < max(*tags, 1); i++ {
		t, err := svc.AddTag(ctx, core.AddTagRequest{Label: fmt.Sprintf("tag-%d", i)})
		if err != nil {
			panic(err)
		}
		registry = append(registry, t)
	}

	// Every create rewrites the whole collection, so cost grows with size.
	fmt.Printf("Creating %d notes (%s adapter) in %s...\n", *count, *adapter, benchDir)
	start := time.Now()
	for i := 0; i < *count; i++ {
		_, err := svc.CreateNote(ctx, core.CreateNoteRequest{
			Title:    fmt.Sprintf("Note %d", i),
			Markdown: fmt.Sprintf("# Benchmark Note %d\nThis is a test note.", i),
			Tags:     []core.Tag{registry[i%len(registry)], registry[(i*7)%len(registry)]},
		})
		if err != nil {
			panic(err)
		}
	}
	fmt.Printf("Create took: %v (%v/note)\n", time.Since(start), time.Since(start)/time.Duration(max(*count, 1)))

	start = time.Now()
	joined := svc.NotesWithTags()
	fmt.Printf("Join (cold) took: %v (items: %d)\n", time.Since(start), len(joined))

	start = time.Now()
	svc.NotesWithTags()
	fmt.Printf("Join (memoized) took: %v\n", time.Since(start))

	start = time.Now()
	matches := svc.FindNotes(core.NoteFilter{Title: "9", TagIDs: []string{registry[0].ID}})
	fmt.Printf("Filter took: %v (matches: %d)\n", time.Since(start), len(matches))

	if err := svc.Close(); err != nil {
		panic(err)
	}

	if *adapter == "memory" {
		return
	}

	start = time.Now()
	reopened, err := wiki.New(benchDir, wiki.WithLogger(logger), wiki.WithAdapter(*adapter))
	if err != nil {
		panic(err)
	}
	defer reopened.Close()
	fmt.Printf("Reopen took: %v (notes: %d)\n", time.Since(start), len(reopened.Notes()))
}
