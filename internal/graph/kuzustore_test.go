//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
// It registers a cleanup function to close the store when the test finishes.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx), "InitSchema should not fail")
	return s
}

// populate loads rel into s with nothing filtered out.
func populate(t *testing.T, s Store, rel Relations) {
	t.Helper()
	asm := Assemble(rel, AssembleOptions{IncludeInternal: true, IncludeIsolated: true})
	require.NoError(t, Populate(context.Background(), s, asm))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestKuzuStore_InitSchema(t *testing.T) {
	s, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	// First call creates the tables.
	require.NoError(t, s.InitSchema(ctx))

	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, s.InitSchema(ctx))
}

func TestKuzuStore_VariableRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	populate(t, s, Relations{"B": NewSet("A")})

	b, err := s.GetVariable(ctx, "B")
	require.NoError(t, err)
	require.NotNil(t, b, "GetVariable should return a non-nil result")
	assert.Equal(t, VariableNode{Name: "B", Assigned: true}, *b)

	a, err := s.GetVariable(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.False(t, a.Assigned)

	all, err := s.GetVariables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []VariableNode{{Name: "A"}, {Name: "B", Assigned: true}}, all)
}

func TestKuzuStore_GetVariable_NotFound(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetVariable(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKuzuStore_AssignedIsSticky(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddVariable(ctx, VariableNode{Name: "A", Assigned: true}))
	require.NoError(t, s.AddVariable(ctx, VariableNode{Name: "A"}))

	a, err := s.GetVariable(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.True(t, a.Assigned)
}

func TestKuzuStore_Edges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	populate(t, s, Relations{"B": NewSet("A", "B"), "C": NewSet("B")})

	edges, err := s.GetAllEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{SourceID: "B", TargetID: "A", Kind: EdgeKindReferences},
		{SourceID: "B", TargetID: "B", Kind: EdgeKindReferences},
		{SourceID: "C", TargetID: "B", Kind: EdgeKindReferences},
	}, edges)
}

func TestKuzuStore_UnsupportedEdgeKind(t *testing.T) {
	s := newTestStore(t)
	err := s.AddEdge(context.Background(), Edge{SourceID: "A", TargetID: "B", Kind: "CALLS"})
	require.Error(t, err)
}

func TestKuzuStore_GetDependencies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	populate(t, s, Relations{
		"LINK":    NewSet("CC", "LDFLAGS"),
		"LDFLAGS": NewSet("LIBDIR"),
	})

	down, err := s.GetDependencies(ctx, "LINK", DirectionDownstream, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"CC", "LDFLAGS", "LIBDIR"}, chainTips(down))

	up, err := s.GetDependencies(ctx, "LIBDIR", DirectionUpstream, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"LDFLAGS"}, chainTips(up))

	_, err = s.GetDependencies(ctx, "LINK", Direction("sideways"), 1)
	require.Error(t, err)
}

func TestKuzuStore_Stats(t *testing.T) {
	s := newTestStore(t)
	populate(t, s, Relations{"B": NewSet("A", "C"), "C": NewSet()})

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{VariableCount: 3, AssignedCount: 2, EdgeCount: 2}, stats)
}

func TestKuzuStore_Reset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	populate(t, s, Relations{"B": NewSet("A", "C")})

	require.NoError(t, s.Reset(ctx))
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{}, stats)

	populate(t, s, Relations{"D": NewSet("E")})
	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{VariableCount: 2, AssignedCount: 1, EdgeCount: 1}, stats)
}

func TestKuzuStore_Persistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph")
	ctx := context.Background()

	s, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	populate(t, s, Relations{"B": NewSet("A")})
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	edges, err := reopened.GetAllEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Edge{{SourceID: "B", TargetID: "A", Kind: EdgeKindReferences}}, edges)
}
