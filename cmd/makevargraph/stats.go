package main

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/makevargraph/internal/graph"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the variable graph and its connected groups",
		Long: `Print variable and edge counts, then every group of two or more
connected variables, named after its most connected member.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.logger.Sync()
			ctx := cmd.Context()

			store, err := a.queryStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			clusters, err := graph.ComputeClusters(ctx, store)
			if err != nil {
				return fmt.Errorf("compute clusters: %w", err)
			}

			out := a.streams.out
			fmt.Fprintf(out, "Variables: %d (%d assigned)\n", stats.VariableCount, stats.AssignedCount)
			fmt.Fprintf(out, "Edges:     %d\n", stats.EdgeCount)
			if len(clusters) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			for _, c := range clusters {
				fmt.Fprintf(out, "  %-20s [%s]\n", c.Name, strings.Join(c.Members, " "))
			}
			return nil
		},
	}
}
