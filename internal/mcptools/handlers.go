package mcptools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dusk-indust/makevargraph/internal/graph"
	"github.com/dusk-indust/makevargraph/internal/internalvars"
	"github.com/dusk-indust/makevargraph/internal/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const defaultMaxDepth = 5

// GraphService holds the collaborators used by the MCP tool handlers.
type GraphService struct {
	internal internalvars.Source
	logger   *zap.Logger
}

// NewGraphService creates a GraphService. internal answers for requests
// that exclude internal variables without naming them.
func NewGraphService(internal internalvars.Source, logger *zap.Logger) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphService{internal: internal, logger: logger}
}

// assemble runs the pipeline over the database file named in a request.
func (s *GraphService) assemble(ctx context.Context, database string, includeInternal, includeIsolated bool, internalVars []string) (*graph.Assembly, error) {
	if database == "" {
		return nil, fmt.Errorf("database is required")
	}
	f, err := os.Open(database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer f.Close()

	source := s.internal
	if len(internalVars) > 0 {
		source = internalvars.StaticSource(internalVars)
	}

	return pipeline.Run(ctx, f, pipeline.Options{
		IncludeInternal: includeInternal,
		IncludeIsolated: includeIsolated,
		Internal:        source,
		Logger:          s.logger,
	})
}

// VariableGraph builds the filtered variable graph and renders it as text.
func (s *GraphService) VariableGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VariableGraphInput,
) (*mcp.CallToolResult, VariableGraphOutput, error) {
	asm, err := s.assemble(ctx, input.Database, input.IncludeInternal, input.IncludeIsolated, input.InternalVars)
	if err != nil {
		return nil, VariableGraphOutput{}, err
	}

	var out strings.Builder
	if err := pipeline.Write(ctx, &out, asm, input.Format, pipeline.WriteOptions{Clusters: input.Clusters}); err != nil {
		return nil, VariableGraphOutput{}, fmt.Errorf("write %s: %w", input.Format, err)
	}

	s.logger.Debug("variable_graph served",
		zap.String("database", input.Database),
		zap.String("format", input.Format),
	)
	return nil, VariableGraphOutput{Output: out.String(), Stats: asm.Stats()}, nil
}

// VariableDependencies traverses the variable graph from a given variable.
func (s *GraphService) VariableDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VariableDependenciesInput,
) (*mcp.CallToolResult, VariableDependenciesOutput, error) {
	if input.Variable == "" {
		return nil, VariableDependenciesOutput{}, fmt.Errorf("variable is required")
	}

	// Isolated variables have no chains, so they are never needed here.
	asm, err := s.assemble(ctx, input.Database, input.IncludeInternal, false, input.InternalVars)
	if err != nil {
		return nil, VariableDependenciesOutput{}, err
	}

	store := graph.NewMemStore()
	defer store.Close()
	if err := graph.Populate(ctx, store, asm); err != nil {
		return nil, VariableDependenciesOutput{}, fmt.Errorf("populate store: %w", err)
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	chains, err := store.GetDependencies(ctx, input.Variable, graph.ParseDirection(input.Direction), maxDepth)
	if err != nil {
		return nil, VariableDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}

	return nil, VariableDependenciesOutput{Chains: chains}, nil
}
