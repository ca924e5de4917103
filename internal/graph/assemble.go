package graph

import "context"

// AssembleOptions controls which variables survive into the graph.
type AssembleOptions struct {
	IncludeInternal bool
	IncludeIsolated bool
	// Internal lists built-in and implicit variables of make. It is only
	// consulted when IncludeInternal is false.
	Internal Set
}

// Assembly is the filtered relation mapping together with the node and edge
// sets derived from it.
type Assembly struct {
	Relations Relations
	Nodes     []VariableNode // sorted by name
	Edges     []Edge         // sorted by source, then target
	Excluded  Set
}

// Assemble filters rel according to opts and derives the node and edge sets.
//
// The isolated set is computed once, from rel as given. Excluded variables
// are removed as assignees and also stripped from every surviving reference
// set, so no excluded name reappears as a node. rel itself is not modified.
func Assemble(rel Relations, opts AssembleOptions) *Assembly {
	excluded := make(Set)
	if !opts.IncludeInternal {
		excluded.Union(opts.Internal)
	}
	if !opts.IncludeIsolated {
		excluded.Union(Isolated(rel))
	}

	kept := make(Relations, len(rel))
	for assignee, refs := range rel {
		if excluded.Has(assignee) {
			continue
		}
		survivors := make(Set, len(refs))
		for ref := range refs {
			if !excluded.Has(ref) {
				survivors.Add(ref)
			}
		}
		kept[assignee] = survivors
	}

	asm := &Assembly{
		Relations: kept,
		Edges:     kept.Edges(),
		Excluded:  excluded,
	}
	for _, name := range kept.Nodes().Sorted() {
		_, assigned := kept[name]
		asm.Nodes = append(asm.Nodes, VariableNode{Name: name, Assigned: assigned})
	}
	return asm
}

// Stats summarizes the assembled graph.
func (a *Assembly) Stats() GraphStats {
	return GraphStats{
		VariableCount: len(a.Nodes),
		AssignedCount: len(a.Relations),
		EdgeCount:     len(a.Edges),
	}
}

// Populate hands the assembled graph to sink: every node first, then every
// edge.
func Populate(ctx context.Context, sink Sink, asm *Assembly) error {
	for _, node := range asm.Nodes {
		if err := sink.AddVariable(ctx, node); err != nil {
			return err
		}
	}
	for _, edge := range asm.Edges {
		if err := sink.AddEdge(ctx, edge); err != nil {
			return err
		}
	}
	return nil
}
