package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/makevargraph/internal/graph"
	"github.com/spf13/cobra"
)

const defaultMaxDepth = 5

// newMemStore builds the in-memory store queried when no --store is given.
var newMemStore = func() graph.Store { return graph.NewMemStore() }

func newDepsCmd(a *app) *cobra.Command {
	var (
		upstream bool
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "deps VARIABLE",
		Short: "Print the reference chains starting at a variable",
		Long: `Print every variable reachable from VARIABLE, one chain per line.

Downstream chains follow the variables VARIABLE references; with --upstream
they follow the variables whose values reference VARIABLE. The graph comes
from --store when given, otherwise from the make database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			name := args[0]
			v, err := store.GetVariable(ctx, name)
			if err != nil {
				return err
			}
			if v == nil {
				return fmt.Errorf("variable %q is not in the graph", name)
			}

			direction := graph.DirectionDownstream
			if upstream {
				direction = graph.DirectionUpstream
			}
			chains, err := store.GetDependencies(ctx, name, direction, maxDepth)
			if err != nil {
				return fmt.Errorf("get dependencies: %w", err)
			}

			out := a.streams.out
			if len(chains) == 0 {
				fmt.Fprintf(out, "%s has no %s dependencies\n", name, direction)
				return nil
			}
			for _, chain := range chains {
				fmt.Fprintln(out, strings.Join(chain.Nodes, " -> "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&upstream, "upstream", false, "follow the variables that reference VARIABLE")
	cmd.Flags().IntVar(&maxDepth, "max-depth", defaultMaxDepth, "maximum traversal depth")
	return cmd
}

// queryStore returns the persisted store named by --store, or an in-memory
// store built from the make database. Isolated variables are kept so that
// any assigned variable can be looked up.
func (a *app) queryStore(ctx context.Context) (graph.Store, error) {
	if a.storeDir != "" {
		store, err := openStore(a.storeDir)
		if err != nil {
			return nil, err
		}
		if err := store.InitSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}

	asm, err := a.assemble(ctx, true)
	if err != nil {
		return nil, err
	}
	store := newMemStore()
	if err := graph.Populate(ctx, store, asm); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
