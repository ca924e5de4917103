package graph

import (
	"context"
	"io"
)

// Sink receives an assembled variable graph one node and one edge at a time.
// Renderers and stores both implement it.
type Sink interface {
	AddVariable(ctx context.Context, node VariableNode) error
	AddEdge(ctx context.Context, edge Edge) error
}

// Store is a queryable variable graph backend.
// Implementations: KuzuStore (persistent), MemStore (in-process).
type Store interface {
	Sink
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error
	// Reset removes every variable and edge, keeping the schema.
	Reset(ctx context.Context) error

	// Read operations.
	GetVariable(ctx context.Context, name string) (*VariableNode, error)
	GetVariables(ctx context.Context) ([]VariableNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Graph traversal.
	GetDependencies(ctx context.Context, name string, direction Direction, maxDepth int) ([]DependencyChain, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // which variables reference this one?
	DirectionDownstream Direction = "downstream" // which variables does this one reference?
)

// ParseDirection maps user input to a Direction, defaulting to downstream.
func ParseDirection(s string) Direction {
	if Direction(s) == DirectionUpstream {
		return DirectionUpstream
	}
	return DirectionDownstream
}
