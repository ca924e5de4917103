package graph

import (
	"context"
	"fmt"
	"sort"
)

// ComputeClusters finds the weakly connected components of the variable
// graph held by store.
//
// Algorithm:
//  1. Build an undirected adjacency list from REFERENCES edges.
//  2. Find connected components via BFS, visiting names in sorted order.
//  3. Keep components with >= 2 variables and name each after its hub, the
//     member with the most distinct neighbors.
//
// Self-references do not join a variable to anything, so a variable whose
// only edge points at itself is not clustered.
func ComputeClusters(ctx context.Context, store Store) ([]ClusterNode, error) {
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("get edges: %w", err)
	}

	adj := buildAdjacency(edges)

	names := make([]string, 0, len(adj))
	for name := range adj {
		names = append(names, name)
	}
	sort.Strings(names)

	visited := make(map[string]bool, len(adj))
	var clusters []ClusterNode
	for _, name := range names {
		if visited[name] {
			continue
		}
		component := bfsComponent(name, adj, visited)
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		clusters = append(clusters, ClusterNode{
			Name:    hub(component, adj),
			Members: component,
		})
	}

	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Name < clusters[j].Name })
	return clusters, nil
}

// buildAdjacency constructs a bidirectional adjacency list from REFERENCES
// edges in a single pass.
func buildAdjacency(edges []Edge) map[string]map[string]bool {
	adj := make(map[string]map[string]bool)
	link := func(a, b string) {
		if adj[a] == nil {
			adj[a] = make(map[string]bool)
		}
		if a != b {
			adj[a][b] = true
		}
	}
	for _, e := range edges {
		if e.Kind != EdgeKindReferences {
			continue
		}
		link(e.SourceID, e.TargetID)
		link(e.TargetID, e.SourceID)
	}
	return adj
}

// bfsComponent performs BFS from start on the adjacency list and returns
// all reachable nodes. It marks visited nodes as it goes.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for neighbor := range adj[node] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return component
}

// hub returns the member with the highest degree; ties go to the
// lexicographically smallest name. members must be sorted.
func hub(members []string, adj map[string]map[string]bool) string {
	best := members[0]
	for _, m := range members[1:] {
		if len(adj[m]) > len(adj[best]) {
			best = m
		}
	}
	return best
}
