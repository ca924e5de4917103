package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dusk-indust/makevargraph/internal/graph"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	ExportedAt string               `json:"exportedAt,omitempty"`
	Stats      graph.GraphStats     `json:"stats"`
	Nodes      []graph.VariableNode `json:"nodes"`
	Edges      []EdgeExport         `json:"edges"`
	Excluded   []string             `json:"excluded,omitempty"`
}

// EdgeExport is a single reference between two variables.
type EdgeExport struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NewGraphExport builds a GraphExport from an assembled graph. A zero now
// leaves ExportedAt empty, which keeps the output reproducible.
func NewGraphExport(asm *graph.Assembly, now time.Time) *GraphExport {
	export := &GraphExport{
		Stats:    asm.Stats(),
		Nodes:    make([]graph.VariableNode, 0, len(asm.Nodes)),
		Edges:    make([]EdgeExport, 0, len(asm.Edges)),
		Excluded: asm.Excluded.Sorted(),
	}
	if !now.IsZero() {
		export.ExportedAt = now.UTC().Format(time.RFC3339)
	}
	export.Nodes = append(export.Nodes, asm.Nodes...)
	for _, e := range asm.Edges {
		export.Edges = append(export.Edges, EdgeExport{Source: e.SourceID, Target: e.TargetID})
	}
	return export
}

// MarshalGraph returns the indented JSON form of asm.
func MarshalGraph(asm *graph.Assembly, now time.Time) ([]byte, error) {
	out, err := json.MarshalIndent(NewGraphExport(asm, now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(out, '\n'), nil
}
