package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/aretw0/wiki/internal/markdown"
	"github.com/aretw0/wiki/pkg/core"
)

const excerptLength = 72

var (
	idColor    = color.New(color.Faint)
	titleColor = color.New(color.Bold)
	tagColor   = color.New(color.FgCyan)
	eventColor = color.New(color.FgYellow)
)

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatTags(tags []core.Tag) string {
	badges := make([]string, 0, len(tags))
	for _, t := range tags {
		badges = append(badges, tagColor.Sprintf("[%s]", t.Label))
	}
	return strings.Join(badges, " ")
}

// printNoteLine writes "<id>  <title>  [tag] [tag]" and, when long is set,
// an indented plain-text excerpt of the body.
func printNoteLine(w io.Writer, n core.NoteWithTags, long bool) {
	line := idColor.Sprint(n.ID) + "  " + titleColor.Sprint(n.Title)
	if tags := formatTags(n.Tags); tags != "" {
		line += "  " + tags
	}
	fmt.Fprintln(w, line)

	if long {
		if excerpt := markdown.Excerpt(n.Markdown, excerptLength); excerpt != "" {
			fmt.Fprintln(w, "    "+excerpt)
		}
	}
}

func printNote(w io.Writer, n core.NoteWithTags) {
	fmt.Fprintln(w, titleColor.Sprint(n.Title))
	fmt.Fprintln(w, idColor.Sprint(n.ID))
	if tags := formatTags(n.Tags); tags != "" {
		fmt.Fprintln(w, tags)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimRight(n.Markdown, "\n"))
}
