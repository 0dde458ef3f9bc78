package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dsih-artpark/epipipeline-v2/internal/db"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

func createRegionsCmd(a *app) *cobra.Command {
	regionsCmd := &cobra.Command{
		Use:   "regions",
		Short: "Inspect and load the region hierarchy",
	}

	regionsCmd.AddCommand(createRegionsCheckCmd(a))
	regionsCmd.AddCommand(createRegionsChildrenCmd(a))
	regionsCmd.AddCommand(createRegionsImportCmd(a))

	return regionsCmd
}

func createRegionsCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [regions.csv]",
		Short: "Validate a region table and count regions per level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.settings.Regions.Path = args[0]
			}
			idx, err := a.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			counts := make(map[regions.Level]int)
			var walk func(id regions.ID)
			walk = func(id regions.ID) {
				for _, n := range idx.Children(id) {
					counts[n.ID.Level]++
					walk(n.ID)
				}
			}
			for _, root := range idx.Roots() {
				counts[root.ID.Level]++
				walk(root.ID)
			}

			levels := make([]string, 0, len(counts))
			for l := range counts {
				levels = append(levels, string(l))
			}
			sort.Strings(levels)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, l := range levels {
				fmt.Fprintf(tw, "%s\t%d\n", l, counts[regions.Level(l)])
			}
			fmt.Fprintf(tw, "total\t%d\n", idx.Len())
			return tw.Flush()
		},
	}
}

func createRegionsChildrenCmd(a *app) *cobra.Command {
	var levels []string

	cmd := &cobra.Command{
		Use:   "children <region-id>",
		Short: "List the children of a region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := regions.ParseID(args[0])
			if err != nil {
				return err
			}
			filter := make([]regions.Level, 0, len(levels))
			for _, l := range levels {
				level := regions.Level(l)
				if !level.IsValid() {
					return fmt.Errorf("unknown level %q", l)
				}
				filter = append(filter, level)
			}

			idx, err := a.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok := idx.Node(parent); !ok {
				return fmt.Errorf("unknown region %s", parent)
			}
			for _, n := range idx.Children(parent, filter...) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&levels, "level", "l", nil, "only these levels")
	return cmd
}

func createRegionsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <regions.csv>",
		Short: "Replace the Postgres region table with a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()
			nodes, err := regions.ReadCSV(f)
			if err != nil {
				return err
			}

			conn, err := db.Open(ctx, a.settings.Database.URL, a.settings.Database.MaxConnections)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.EnsureRegionsTable(ctx); err != nil {
				return err
			}
			n, err := conn.ReplaceRegions(ctx, nodes)
			if err != nil {
				return err
			}
			a.logger.Info("regions imported", "path", args[0], "count", n)
			return nil
		},
	}
}
