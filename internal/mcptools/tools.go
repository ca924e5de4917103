package mcptools

import "github.com/dusk-indust/makevargraph/internal/graph"

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// VariableGraphInput is the input for the variable_graph MCP tool.
type VariableGraphInput struct {
	Database        string   `json:"database" jsonschema:"path to a make database dump, as printed by make -pn"`
	IncludeInternal bool     `json:"includeInternal,omitempty" jsonschema:"keep make's internal variables in the graph"`
	IncludeIsolated bool     `json:"includeIsolated,omitempty" jsonschema:"keep variables that reference nothing and are referenced by nothing"`
	InternalVars    []string `json:"internalVars,omitempty" jsonschema:"internal variable names to exclude instead of asking make"`
	Format          string   `json:"format,omitempty" jsonschema:"output format: list, dot, mermaid or json. Default: list"`
	Clusters        bool     `json:"clusters,omitempty" jsonschema:"group connected variables into subgraphs (mermaid only)"`
}

// VariableGraphOutput is the result of the variable_graph MCP tool.
type VariableGraphOutput struct {
	Output string           `json:"output"`
	Stats  graph.GraphStats `json:"stats"`
}

// VariableDependenciesInput is the input for the variable_dependencies MCP tool.
type VariableDependenciesInput struct {
	Database        string   `json:"database" jsonschema:"path to a make database dump, as printed by make -pn"`
	Variable        string   `json:"variable" jsonschema:"variable name to start from"`
	Direction       string   `json:"direction,omitempty" jsonschema:"downstream (what it references) or upstream (what references it). Default: downstream"`
	MaxDepth        int      `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
	IncludeInternal bool     `json:"includeInternal,omitempty" jsonschema:"keep make's internal variables in the graph"`
	InternalVars    []string `json:"internalVars,omitempty" jsonschema:"internal variable names to exclude instead of asking make"`
}

// VariableDependenciesOutput is the result of the variable_dependencies MCP tool.
type VariableDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}
