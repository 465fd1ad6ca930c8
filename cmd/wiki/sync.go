package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the vault with its Git remote",
		Long: `Pull remote changes (rebasing local history) and push local changes.
Only the fs adapter with versioning enabled supports synchronization.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Syncing...")
			if err := svc.Sync(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Tip: ensure a remote is configured ('git remote add origin <url>') and you are online.")
				return err
			}

			fmt.Fprintln(out, "Sync completed successfully.")
			return nil
		},
	}
}
