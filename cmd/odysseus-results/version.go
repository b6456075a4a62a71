package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/odysseus-results/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "odysseus-results %s\n", version.String())
		},
	}
}
