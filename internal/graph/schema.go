package graph

// --- Enums ---

// EdgeKind classifies relationships between variables.
type EdgeKind string

const (
	// EdgeKindReferences links an assignee to a variable its value mentions.
	EdgeKindReferences EdgeKind = "REFERENCES"
)

// --- Models ---

// VariableNode represents a make variable in the graph.
type VariableNode struct {
	Name string `json:"name"`
	// Assigned is false for variables that are only ever referenced.
	Assigned bool `json:"assigned"`
}

// Edge represents a relationship between two variables.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// GraphStats summarizes a variable graph.
type GraphStats struct {
	VariableCount int `json:"variableCount"`
	AssignedCount int `json:"assignedCount"`
	EdgeCount     int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of variables forming a reference path.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// ClusterNode is a weakly connected group of variables.
type ClusterNode struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}
