package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/wiki/internal/markdown"
	"github.com/aretw0/wiki/pkg/core"
)

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Create, list, show, edit and delete notes",
	}

	cmd.AddCommand(
		newNoteCreateCmd(a),
		newNoteListCmd(a),
		newNoteShowCmd(a),
		newNoteEditCmd(a),
		newNoteDeleteCmd(a),
	)
	return cmd
}

// readBody returns body, or stdin when body is "-".
func readBody(cmd *cobra.Command, body string) (string, error) {
	if body != "-" {
		return body, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read body from stdin: %w", err)
	}
	return string(data), nil
}

// resolveTagLabels maps labels to registry tags, registering unknown labels.
func resolveTagLabels(cmd *cobra.Command, a *app, svc *core.Service, labels []string) ([]core.Tag, error) {
	tags := make([]core.Tag, 0, len(labels))
	for _, label := range labels {
		if t, ok := svc.TagByLabel(label); ok {
			tags = append(tags, t)
			continue
		}
		ctx := a.changeContext(cmd.Context(), "tags", "add "+label)
		t, err := svc.AddTag(ctx, core.AddTagRequest{Label: strings.TrimSpace(label)})
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func newNoteCreateCmd(a *app) *cobra.Command {
	var (
		title  string
		body   string
		labels []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Long: `Create a note. Tags are given by label; unknown labels are added to the
tag registry. Use --body - to read the markdown from stdin. Without
--title the first heading of the body is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, body)
			if err != nil {
				return err
			}
			if title == "" {
				title = markdown.Heading(body)
			}

			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			req := core.CreateNoteRequest{Title: title, Markdown: body}
			if err := req.Validate(); err != nil {
				return err
			}

			req.Tags, err = resolveTagLabels(cmd, a, svc, labels)
			if err != nil {
				return err
			}

			note, err := svc.CreateNote(a.changeContext(cmd.Context(), "notes", "create "+title), req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVar(&body, "body", "", "Markdown body (- reads stdin)")
	cmd.Flags().StringArrayVarP(&labels, "tag", "t", nil, "Tag label (repeatable)")
	return cmd
}

func newNoteListCmd(a *app) *cobra.Command {
	var (
		title  string
		labels []string
		asJSON bool
		long   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, optionally filtered by title and tags",
		Long: `List notes in creation order. --title matches a case-insensitive
substring; every --tag must be present on a note for it to be listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			filter := core.NoteFilter{Title: title}
			notes := []core.NoteWithTags{}
			unknown := false
			for _, label := range labels {
				t, ok := svc.TagByLabel(label)
				if !ok {
					unknown = true
					break
				}
				filter.TagIDs = append(filter.TagIDs, t.ID)
			}
			if !unknown {
				notes = svc.FindNotes(filter)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, notes)
			}
			for _, n := range notes {
				printNoteLine(out, n, long)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Filter by title substring")
	cmd.Flags().StringArrayVarP(&labels, "tag", "t", nil, "Require tag label (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Include a body excerpt")
	return cmd
}

func newNoteShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			note, ok := svc.Note(args[0])
			if !ok {
				return fmt.Errorf("note %s: %w", args[0], errNotFound)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), note)
			}
			printNote(cmd.OutOrStdout(), note)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newNoteEditCmd(a *app) *cobra.Command {
	var (
		title     string
		body      string
		labels    []string
		clearTags bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note",
		Long: `Replace the title, body or tags of a note. Fields whose flag is not given
keep their current value; --tag replaces the whole tag set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			current, ok := svc.Note(args[0])
			if !ok {
				return fmt.Errorf("note %s: %w", args[0], errNotFound)
			}

			req := core.UpdateNoteRequest{
				ID:       current.ID,
				Title:    current.Title,
				Markdown: current.Markdown,
				Tags:     current.Tags,
			}
			if cmd.Flags().Changed("title") {
				req.Title = title
			}
			if cmd.Flags().Changed("body") {
				if req.Markdown, err = readBody(cmd, body); err != nil {
					return err
				}
			}
			if err := req.Validate(); err != nil {
				return err
			}

			switch {
			case clearTags:
				req.Tags = nil
			case cmd.Flags().Changed("tag"):
				if req.Tags, err = resolveTagLabels(cmd, a, svc, labels); err != nil {
					return err
				}
			}

			ctx := a.changeContext(cmd.Context(), "notes", "edit "+req.Title)
			if err := svc.UpdateNote(ctx, req); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Note updated:", req.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&body, "body", "", "New markdown body (- reads stdin)")
	cmd.Flags().StringArrayVarP(&labels, "tag", "t", nil, "Tag label (repeatable, replaces all tags)")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "Remove all tags")
	return cmd
}

func newNoteDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			id := args[0]
			if _, ok := svc.Note(id); !ok {
				return fmt.Errorf("note %s: %w", id, errNotFound)
			}

			if err := svc.DeleteNote(a.changeContext(cmd.Context(), "notes", "delete "+id), id); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Note deleted:", id)
			return nil
		},
	}
}
