package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wiki"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of wiki",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wiki version %s\n", wiki.Version)
		},
	}
}
