package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	wikilifecycle "github.com/aretw0/wiki/pkg/adapters/lifecycle"
)

func newWatchCmd(a *app) *cobra.Command {
	var collections []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print changes to the vault as they happen",
		Long: `Watch reports every change to notes and tags, including edits made by
other processes to the vault files. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := svc.Watch(ctx)
			if err != nil {
				return err
			}

			src := wikilifecycle.NewSource(events, wikilifecycle.OnlyCollections(collections...))
			if err := src.Start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Watching", a.root)
			for e := range src.Events() {
				fmt.Fprintln(out, eventColor.Sprint(e.String()))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&collections, "collection", nil, "Only report changes to these collections (notes, tags)")
	return cmd
}
