package export

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/makevargraph/internal/graph"
)

// GenerateMermaid produces a Mermaid "graph LR" diagram from a graph store.
// With clusters set, connected variables are grouped into subgraphs named
// after their hub variable. REFERENCES edges become arrows.
func GenerateMermaid(ctx context.Context, store graph.Store, clusters bool) (string, error) {
	variables, err := store.GetVariables(ctx)
	if err != nil {
		return "", fmt.Errorf("get variables: %w", err)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceID != edges[j].SourceID {
			return edges[i].SourceID < edges[j].SourceID
		}
		return edges[i].TargetID < edges[j].TargetID
	})

	var groups []graph.ClusterNode
	if clusters {
		groups, err = graph.ComputeClusters(ctx, store)
		if err != nil {
			return "", fmt.Errorf("compute clusters: %w", err)
		}
	}

	// Mermaid IDs must be alphanumeric; number variables in name order.
	nodeIDs := make(map[string]string, len(variables))
	assigned := make(map[string]bool, len(variables))
	for i, v := range variables {
		nodeIDs[v.Name] = fmt.Sprintf("N%d", i)
		assigned[v.Name] = v.Assigned
	}

	clustered := make(map[string]bool)
	for _, c := range groups {
		for _, member := range c.Members {
			clustered[member] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, c := range groups {
		sb.WriteString(fmt.Sprintf("  subgraph C%d[\"%s\"]\n", i, mermaidLabel(c.Name)))
		for _, member := range c.Members {
			sb.WriteString("    " + mermaidNode(nodeIDs[member], member, assigned[member]) + "\n")
		}
		sb.WriteString("  end\n")
	}

	for _, v := range variables {
		if clustered[v.Name] {
			continue
		}
		sb.WriteString("  " + mermaidNode(nodeIDs[v.Name], v.Name, v.Assigned) + "\n")
	}

	for _, e := range edges {
		if e.Kind != graph.EdgeKindReferences {
			continue
		}
		src, ok := nodeIDs[e.SourceID]
		if !ok {
			continue
		}
		tgt, ok := nodeIDs[e.TargetID]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", src, tgt))
	}

	return sb.String(), nil
}

// mermaidNode renders assigned variables as boxes and referenced-only ones
// as rounded nodes.
func mermaidNode(id, name string, assigned bool) string {
	if assigned {
		return fmt.Sprintf("%s[\"%s\"]", id, mermaidLabel(name))
	}
	return fmt.Sprintf("%s(\"%s\")", id, mermaidLabel(name))
}

// mermaidLabel escapes double quotes, the one character that ends a quoted label.
func mermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
