package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wiki"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a wiki vault",
		Long: `Initialize a new vault in the vault directory (or the working directory).
With the default fs adapter this creates the system directory and, unless
--no-versioning is given, a Git repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(wiki.WithAutoInit(true))
			if err != nil {
				return err
			}
			defer svc.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized wiki vault in", a.root)
			return nil
		},
	}
}
