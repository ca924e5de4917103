// Package pipeline runs the extraction and assembly stages over a make
// database and writes the result in one of the text output formats.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dusk-indust/makevargraph/internal/export"
	"github.com/dusk-indust/makevargraph/internal/graph"
	"github.com/dusk-indust/makevargraph/internal/internalvars"
	"go.uber.org/zap"
)

// Options configures a pipeline run.
type Options struct {
	IncludeInternal bool
	IncludeIsolated bool
	// Internal supplies the internal variable names. It is only consulted
	// when IncludeInternal is false, and must be set in that case.
	Internal internalvars.Source
	Logger   *zap.Logger
}

// Run extracts relations from database and assembles the filtered graph.
func Run(ctx context.Context, database io.Reader, opts Options) (*graph.Assembly, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rel, err := graph.Extract(database)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted relations", zap.Int("assignees", len(rel)))

	assembleOpts := graph.AssembleOptions{
		IncludeInternal: opts.IncludeInternal,
		IncludeIsolated: opts.IncludeIsolated,
	}
	if !opts.IncludeInternal {
		if opts.Internal == nil {
			return nil, fmt.Errorf("%w: no internal variable source configured", internalvars.ErrEnumeration)
		}
		names, err := opts.Internal.Names(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("excluding internal variables", zap.Int("count", len(names)))
		assembleOpts.Internal = names
	}

	asm := graph.Assemble(rel, assembleOpts)
	stats := asm.Stats()
	logger.Debug("assembled graph",
		zap.Int("variables", stats.VariableCount),
		zap.Int("edges", stats.EdgeCount),
		zap.Int("excluded", len(asm.Excluded)),
	)
	return asm, nil
}

// Text output formats accepted by Write.
const (
	FormatList    = "list"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
	FormatJSON    = "json"
)

// Formats lists the accepted text output formats.
var Formats = []string{FormatList, FormatDOT, FormatMermaid, FormatJSON}

// WriteOptions tunes text output.
type WriteOptions struct {
	// Clusters groups connected variables in Mermaid output.
	Clusters bool
	// Ratio is the DOT ratio graph attribute.
	Ratio string
	// Now stamps JSON output; zero omits the timestamp.
	Now time.Time
}

// Write renders asm to w in the named format.
func Write(ctx context.Context, w io.Writer, asm *graph.Assembly, format string, opts WriteOptions) error {
	switch strings.ToLower(format) {
	case FormatList, "":
		return export.WriteListing(w, asm.Relations)

	case FormatDOT:
		r := export.NewDOTRenderer(export.FormatNone, nil)
		r.Ratio = opts.Ratio
		if err := graph.Populate(ctx, r, asm); err != nil {
			return err
		}
		return r.WriteDOT(w)

	case FormatMermaid:
		store := graph.NewMemStore()
		defer store.Close()
		if err := graph.Populate(ctx, store, asm); err != nil {
			return err
		}
		out, err := export.GenerateMermaid(ctx, store, opts.Clusters)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err

	case FormatJSON:
		data, err := export.MarshalGraph(asm, opts.Now)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}
