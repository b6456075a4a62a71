package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/odysseus-results/internal/catalog"
)

func newCatalogCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List cities, simulation types and scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.catalog().Tree()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tree)
			}
			printTree(cmd.OutOrStdout(), tree, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}

func printTree(w io.Writer, nodes []*catalog.Node, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), n.Name)
		printTree(w, n.Children, depth+1)
	}
}
