package graph

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu        sync.RWMutex
	variables map[string]VariableNode
	edges     []Edge
	edgeSet   map[Edge]bool
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		variables: make(map[string]VariableNode),
		edgeSet:   make(map[Edge]bool),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Reset drops every variable and edge.
func (m *MemStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variables = make(map[string]VariableNode)
	m.edges = nil
	m.edgeSet = make(map[Edge]bool)
	return nil
}

// AddVariable stores a variable node keyed by its name. A variable seen as
// assigned stays assigned.
func (m *MemStore) AddVariable(_ context.Context, node VariableNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.variables[node.Name]; ok && prev.Assigned {
		node.Assigned = true
	}
	m.variables[node.Name] = node
	return nil
}

// AddEdge records an edge once; duplicates are ignored.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edgeSet[edge] {
		return nil
	}
	m.edgeSet[edge] = true
	m.edges = append(m.edges, edge)
	return nil
}

// GetVariable returns the variable with the given name, or nil if not found.
func (m *MemStore) GetVariable(_ context.Context, name string) (*VariableNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.variables[name]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// GetDependencies performs a BFS on edges from name in the given direction,
// up to maxDepth hops. It returns one DependencyChain per reachable variable.
func (m *MemStore) GetDependencies(_ context.Context, name string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state: each entry tracks the path from name to the current node.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{name: true}
	queue := []bfsEntry{{id: name, path: []string{name}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// neighbors returns names reachable from id in one hop along the given
// direction, sorted so traversal order is stable.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	var result []string
	for _, e := range m.edges {
		switch direction {
		case DirectionDownstream:
			// downstream: variables that id references
			if e.SourceID == id {
				result = append(result, e.TargetID)
			}
		case DirectionUpstream:
			// upstream: variables whose value references id
			if e.TargetID == id {
				result = append(result, e.SourceID)
			}
		}
	}
	sort.Strings(result)
	return result
}

// GetAllEdges returns a copy of all edges in insertion order.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// GetVariables returns all stored variables sorted by name.
func (m *MemStore) GetVariables(_ context.Context) ([]VariableNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]VariableNode, 0, len(m.variables))
	for _, v := range m.variables {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Stats returns counts of variables and edges in the graph.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	assigned := 0
	for _, v := range m.variables {
		if v.Assigned {
			assigned++
		}
	}
	return &GraphStats{
		VariableCount: len(m.variables),
		AssignedCount: assigned,
		EdgeCount:     len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
