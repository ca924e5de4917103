package graph

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeNames(nodes []VariableNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestIsolated(t *testing.T) {
	rel := Relations{
		"A": NewSet(),
		"B": NewSet("A"),
		"C": NewSet(),
	}
	assert.Equal(t, NewSet("C"), Isolated(rel))
}

func TestIsolated_SelfReferenceIsNotIsolated(t *testing.T) {
	assert.Empty(t, Isolated(Relations{"A": NewSet("A")}))
}

func TestNodes(t *testing.T) {
	rel := Relations{
		"A": NewSet(),
		"B": NewSet("A"),
		"C": NewSet(),
	}
	assert.Equal(t, []string{"A", "B", "C"}, rel.Nodes().Sorted())
}

func TestEdges(t *testing.T) {
	rel := Relations{
		"B": NewSet("C", "A"),
		"A": NewSet("A"),
	}
	want := []Edge{
		{SourceID: "A", TargetID: "A", Kind: EdgeKindReferences},
		{SourceID: "B", TargetID: "A", Kind: EdgeKindReferences},
		{SourceID: "B", TargetID: "C", Kind: EdgeKindReferences},
	}
	assert.Equal(t, want, rel.Edges())
}

func TestAssemble(t *testing.T) {
	rel := Relations{
		"CC":      NewSet(),
		"COMPILE": NewSet("CC", "CFLAGS", "MAKE"),
		"MAKE":    NewSet("MAKE_COMMAND"),
		"CFLAGS":  NewSet("OPT"),
		"LONELY":  NewSet(),
	}
	internal := NewSet("MAKE", "MAKE_COMMAND")

	tests := []struct {
		name      string
		opts      AssembleOptions
		want      Relations
		wantNodes []string
	}{
		{
			name: "defaults drop internal and isolated",
			opts: AssembleOptions{Internal: internal},
			want: Relations{
				"CC":      NewSet(),
				"COMPILE": NewSet("CC", "CFLAGS"),
				"CFLAGS":  NewSet("OPT"),
			},
			wantNodes: []string{"CC", "CFLAGS", "COMPILE", "OPT"},
		},
		{
			name: "include internal",
			opts: AssembleOptions{Internal: internal, IncludeInternal: true},
			want: Relations{
				"CC":      NewSet(),
				"COMPILE": NewSet("CC", "CFLAGS", "MAKE"),
				"MAKE":    NewSet("MAKE_COMMAND"),
				"CFLAGS":  NewSet("OPT"),
			},
			wantNodes: []string{"CC", "CFLAGS", "COMPILE", "MAKE", "MAKE_COMMAND", "OPT"},
		},
		{
			name: "include isolated",
			opts: AssembleOptions{Internal: internal, IncludeIsolated: true},
			want: Relations{
				"CC":      NewSet(),
				"COMPILE": NewSet("CC", "CFLAGS"),
				"CFLAGS":  NewSet("OPT"),
				"LONELY":  NewSet(),
			},
			wantNodes: []string{"CC", "CFLAGS", "COMPILE", "LONELY", "OPT"},
		},
		{
			name:      "include everything",
			opts:      AssembleOptions{Internal: internal, IncludeInternal: true, IncludeIsolated: true},
			want:      rel,
			wantNodes: []string{"CC", "CFLAGS", "COMPILE", "LONELY", "MAKE", "MAKE_COMMAND", "OPT"},
		},
		{
			name: "nil internal set",
			opts: AssembleOptions{},
			want: Relations{
				"CC":      NewSet(),
				"COMPILE": NewSet("CC", "CFLAGS", "MAKE"),
				"MAKE":    NewSet("MAKE_COMMAND"),
				"CFLAGS":  NewSet("OPT"),
			},
			wantNodes: []string{"CC", "CFLAGS", "COMPILE", "MAKE", "MAKE_COMMAND", "OPT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := Assemble(rel, tt.opts)
			if diff := cmp.Diff(tt.want, asm.Relations); diff != "" {
				t.Errorf("Assemble() relations mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantNodes, nodeNames(asm.Nodes))
		})
	}
}

func TestAssemble_StripsExcludedReferences(t *testing.T) {
	rel := Relations{"A": NewSet("SHELL", "B"), "B": NewSet("A")}
	asm := Assemble(rel, AssembleOptions{Internal: NewSet("SHELL")})

	for _, e := range asm.Edges {
		assert.NotEqual(t, "SHELL", e.TargetID)
	}
	assert.NotContains(t, nodeNames(asm.Nodes), "SHELL")
	assert.True(t, asm.Excluded.Has("SHELL"))
}

func TestAssemble_DoesNotMutateInput(t *testing.T) {
	rel := Relations{"A": NewSet("SHELL"), "B": NewSet()}
	before := Relations{"A": NewSet("SHELL"), "B": NewSet()}

	asm := Assemble(rel, AssembleOptions{Internal: NewSet("SHELL")})
	assert.Empty(t, asm.Relations["A"], "SHELL is stripped from the assembled copy")

	if diff := cmp.Diff(before, rel); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	rel := Relations{"A": NewSet("B", "C"), "C": NewSet("C"), "D": NewSet()}
	opts := AssembleOptions{Internal: NewSet("B")}

	first := Assemble(rel, opts)
	second := Assemble(rel, opts)

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Edges, second.Edges)
}

func TestAssemble_SelfReferenceEdge(t *testing.T) {
	asm := Assemble(Relations{"A": NewSet("A")}, AssembleOptions{})
	require.Len(t, asm.Edges, 1)
	assert.Equal(t, Edge{SourceID: "A", TargetID: "A", Kind: EdgeKindReferences}, asm.Edges[0])
}

func TestAssemble_AssignedFlag(t *testing.T) {
	asm := Assemble(Relations{"B": NewSet("A")}, AssembleOptions{})
	assert.Equal(t, []VariableNode{
		{Name: "A", Assigned: false},
		{Name: "B", Assigned: true},
	}, asm.Nodes)
	assert.Equal(t, GraphStats{VariableCount: 2, AssignedCount: 1, EdgeCount: 1}, asm.Stats())
}

// recordingSink captures Populate calls in order.
type recordingSink struct {
	calls []string
}

func (r *recordingSink) AddVariable(_ context.Context, node VariableNode) error {
	r.calls = append(r.calls, "node:"+node.Name)
	return nil
}

func (r *recordingSink) AddEdge(_ context.Context, edge Edge) error {
	r.calls = append(r.calls, "edge:"+edge.SourceID+"->"+edge.TargetID)
	return nil
}

func TestPopulate_NodesBeforeEdges(t *testing.T) {
	asm := Assemble(Relations{"B": NewSet("A"), "A": NewSet("A")}, AssembleOptions{})
	sink := &recordingSink{}

	require.NoError(t, Populate(context.Background(), sink, asm))
	assert.Equal(t, []string{
		"node:A",
		"node:B",
		"edge:A->A",
		"edge:B->A",
	}, sink.calls)
}
