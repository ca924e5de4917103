package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dusk-indust/makevargraph/internal/config"
	"github.com/dusk-indust/makevargraph/internal/export"
	"github.com/dusk-indust/makevargraph/internal/graph"
	"github.com/dusk-indust/makevargraph/internal/internalvars"
	"github.com/dusk-indust/makevargraph/internal/logging"
	"github.com/dusk-indust/makevargraph/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// streams carries the process I/O so tests can substitute buffers. Logs
// always go to stderr.
type streams struct {
	in  io.Reader
	out io.Writer
}

// app is the state shared by every command in the tree.
type app struct {
	streams *streams

	// Flags bound on the root command.
	configDir       string
	database        string
	storeDir        string
	internalVars    string
	includeInternal bool
	verbose         bool

	graphName       string
	includeIsolated bool
	list            bool
	noView          bool
	format          string
	output          string
	ratio           string
	clusters        bool

	cfg    *config.ProjectConfig
	logger *zap.Logger
}

func newRootCmd(s *streams) *cobra.Command {
	a := &app{streams: s}

	root := &cobra.Command{
		Use:   "makevargraph",
		Short: "Graph the variable references of a GNU Make database",
		Long: `makevargraph reads the database GNU Make prints with -p (usually
"make -pn") and draws which variables reference which.

Each line of the form "NAME = VALUE" or "NAME := VALUE" contributes the
variable NAME and every $(REF) or ${REF} in VALUE. Make's internal
variables and isolated variables are left out unless asked for.

By default the graph is written as <graph-name>.gv, laid out by Graphviz
as <graph-name>.<format> and opened in the platform viewer.`,
		Example: `  make -pn | makevargraph --list
  makevargraph --database db.txt --format svg --no-view
  makevargraph --database db.txt --output mermaid --clusters`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runGraph,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config", ".", "directory holding makevargraph.yml and .env")
	pf.StringVarP(&a.database, "database", "d", "", "make database file (default: stdin)")
	pf.StringVar(&a.storeDir, "store", "", "Kuzu database directory to persist the graph in")
	pf.StringVar(&a.internalVars, "internal-vars", "", "file listing internal variable names (default: ask make)")
	pf.BoolVar(&a.includeInternal, "include-internal", false, "keep make's internal variables")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	f := root.Flags()
	f.StringVarP(&a.graphName, "graph-name", "n", "", `base name of the rendered files (default "graph")`)
	f.BoolVar(&a.includeIsolated, "include-isolated", false, "keep variables with no references in either direction")
	f.BoolVarP(&a.list, "list", "l", false, "print the sorted relation listing instead of rendering")
	f.BoolVar(&a.noView, "no-view", false, "do not open the rendered graph")
	f.StringVarP(&a.format, "format", "f", "", `Graphviz output format: pdf, svg, png or none (default "pdf")`)
	f.StringVarP(&a.output, "output", "o", "", "print the graph to stdout as dot, mermaid or json instead of rendering")
	f.StringVar(&a.ratio, "ratio", "", "Graphviz ratio graph attribute")
	f.BoolVar(&a.clusters, "clusters", false, "group connected variables into subgraphs (mermaid)")
	root.MarkFlagsMutuallyExclusive("list", "output")

	root.AddCommand(
		newDepsCmd(a),
		newStatsCmd(a),
		newServeMCPCmd(a),
		newInitCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads configuration, lays explicitly set flags over it and builds
// the logger. Flags win over the environment, which wins over the file.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("include-internal") {
		cfg.IncludeInternal = a.includeInternal
	}
	if flags.Changed("internal-vars") {
		cfg.InternalVars = a.internalVars
	}
	if flags.Lookup("graph-name") != nil {
		if flags.Changed("graph-name") {
			cfg.GraphName = a.graphName
		}
		if flags.Changed("include-isolated") {
			cfg.IncludeIsolated = a.includeIsolated
		}
		if flags.Changed("no-view") {
			view := !a.noView
			cfg.View = &view
		}
		if flags.Changed("format") {
			cfg.Format = a.format
		}
		if flags.Changed("ratio") {
			cfg.Ratio = a.ratio
		}
		if flags.Changed("clusters") {
			cfg.Clusters = a.clusters
		}
	}
	a.cfg = cfg

	logger, err := logging.New(a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// openDatabase opens the make database named by --database, or stdin.
func (a *app) openDatabase() (io.ReadCloser, error) {
	if a.database == "" || a.database == "-" {
		return io.NopCloser(a.streams.in), nil
	}
	f, err := os.Open(a.database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return f, nil
}

// assemble reads the database and runs it through the pipeline.
func (a *app) assemble(ctx context.Context, includeIsolated bool) (*graph.Assembly, error) {
	in, err := a.openDatabase()
	if err != nil {
		return nil, err
	}
	defer in.Close()

	return pipeline.Run(ctx, in, pipeline.Options{
		IncludeInternal: a.cfg.IncludeInternal,
		IncludeIsolated: includeIsolated,
		Internal:        internalvars.Select(a.cfg.InternalVars, a.cfg.Make, a.logger),
		Logger:          a.logger,
	})
}

// runGraph is the root command: build the graph, then list, print or render it.
func (a *app) runGraph(cmd *cobra.Command, _ []string) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer a.logger.Sync()
	ctx := cmd.Context()

	asm, err := a.assemble(ctx, a.cfg.IncludeIsolated)
	if err != nil {
		return err
	}

	if a.storeDir != "" {
		if err := a.persist(ctx, asm); err != nil {
			return err
		}
	}

	switch {
	case a.list:
		return pipeline.Write(ctx, a.streams.out, asm, pipeline.FormatList, pipeline.WriteOptions{})
	case a.output != "":
		return pipeline.Write(ctx, a.streams.out, asm, a.output, pipeline.WriteOptions{
			Clusters: a.cfg.Clusters,
			Ratio:    a.cfg.Ratio,
			Now:      time.Now().UTC(),
		})
	}

	renderer := export.NewDOTRenderer(a.cfg.Format, a.logger)
	renderer.Ratio = a.cfg.Ratio
	renderer.DotBinary = a.cfg.Dot
	if err := graph.Populate(ctx, renderer, asm); err != nil {
		return err
	}
	_, err = renderer.Render(ctx, a.cfg.GraphName, a.cfg.ShouldView())
	return err
}

// persist replaces the contents of the Kuzu store with asm.
func (a *app) persist(ctx context.Context, asm *graph.Assembly) error {
	store, err := openStore(a.storeDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	if err := store.Reset(ctx); err != nil {
		return err
	}
	if err := graph.Populate(ctx, store, asm); err != nil {
		return fmt.Errorf("persist graph: %w", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("persisted graph",
		zap.String("store", a.storeDir),
		zap.Int("variables", stats.VariableCount),
		zap.Int("edges", stats.EdgeCount),
	)
	return nil
}
