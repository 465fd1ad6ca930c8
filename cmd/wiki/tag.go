package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wiki/pkg/core"
)

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tag registry",
	}

	cmd.AddCommand(
		newTagAddCmd(a),
		newTagListCmd(a),
		newTagRenameCmd(a),
		newTagDeleteCmd(a),
	)
	return cmd
}

// resolveTag accepts a tag id or label.
func resolveTag(svc *core.Service, ref string) (core.Tag, error) {
	if t, ok := svc.Tag(ref); ok {
		return t, nil
	}
	if t, ok := svc.TagByLabel(ref); ok {
		return t, nil
	}
	return core.Tag{}, fmt.Errorf("tag %s: %w", ref, errNotFound)
}

func newTagAddCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Add a tag to the registry",
		Long: `Add a tag. Labels are not deduplicated; adding an existing label creates a second tag.
An explicit --id must not be registered already.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx := a.changeContext(cmd.Context(), "tags", "add "+args[0])
			tag, err := svc.AddTag(ctx, core.AddTagRequest{ID: id, Label: args[0]})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tag.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Explicit tag id (default: random UUID)")
	return cmd
}

// tagUsage is a registry entry with the number of notes referencing it.
type tagUsage struct {
	core.Tag
	Notes int `json:"notes"`
}

func newTagListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags in registry order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			notes := svc.NotesWithTags()
			usage := []tagUsage{}
			for _, t := range svc.Tags() {
				u := tagUsage{Tag: t}
				for _, n := range notes {
					if n.HasTag(t.ID) {
						u.Notes++
					}
				}
				usage = append(usage, u)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, usage)
			}
			for _, u := range usage {
				fmt.Fprintf(out, "%s  %s  (%d)\n", idColor.Sprint(u.ID), tagColor.Sprint(u.Label), u.Notes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newTagRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id|label> <new-label>",
		Short: "Change the label of a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			tag, err := resolveTag(svc, args[0])
			if err != nil {
				return err
			}

			ctx := a.changeContext(cmd.Context(), "tags", fmt.Sprintf("rename %s to %s", tag.Label, args[1]))
			if err := svc.UpdateTag(ctx, core.UpdateTagRequest{ID: tag.ID, Label: args[1]}); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Tag renamed:", tag.ID)
			return nil
		},
	}
}

func newTagDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|label>",
		Short: "Remove a tag from the registry",
		Long:  `Remove a tag. Notes keep referring to it by id but no longer show it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			tag, err := resolveTag(svc, args[0])
			if err != nil {
				return err
			}

			if err := svc.DeleteTag(a.changeContext(cmd.Context(), "tags", "delete "+tag.Label), tag.ID); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Tag deleted:", tag.ID)
			return nil
		},
	}
}
