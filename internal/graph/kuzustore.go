//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the directory itself for new databases.
// A persisted variable graph can be queried again in a later run.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Variable(
		name STRING,
		assigned BOOLEAN,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS REFERS_TO(FROM Variable TO Variable)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// Reset deletes every Variable node together with its REFERS_TO edges.
func (s *KuzuStore) Reset(_ context.Context) error {
	res, err := s.conn.Query(`MATCH (v:Variable) DETACH DELETE v`)
	if err != nil {
		return fmt.Errorf("kuzu: reset: %w", err)
	}
	res.Close()
	return nil
}

// ---------- Write operations ----------

// AddVariable upserts a Variable node. A variable seen as assigned stays
// assigned.
func (s *KuzuStore) AddVariable(_ context.Context, node VariableNode) error {
	return s.exec(
		`MERGE (v:Variable {name: $name})
		 ON CREATE SET v.assigned = $assigned
		 ON MATCH SET v.assigned = v.assigned OR $assigned`,
		map[string]any{
			"name":     node.Name,
			"assigned": node.Assigned,
		},
	)
}

// AddEdge links two existing Variable nodes. Edges between unknown variables
// match nothing and are dropped.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	if edge.Kind != EdgeKindReferences {
		return fmt.Errorf("kuzu: unsupported edge kind: %s", edge.Kind)
	}
	return s.exec(
		`MATCH (a:Variable {name: $src}), (b:Variable {name: $dst})
		 MERGE (a)-[:REFERS_TO]->(b)`,
		map[string]any{
			"src": edge.SourceID,
			"dst": edge.TargetID,
		},
	)
}

// ---------- Read operations ----------

// GetVariable retrieves a single Variable node by name, or returns nil if not found.
func (s *KuzuStore) GetVariable(_ context.Context, name string) (*VariableNode, error) {
	rows, err := s.query(
		"MATCH (v:Variable {name: $name}) RETURN v.name, v.assigned",
		map[string]any{"name": name},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &VariableNode{
		Name:     toString(rows[0][0]),
		Assigned: toBool(rows[0][1]),
	}, nil
}

// GetVariables returns all Variable nodes ordered by name.
func (s *KuzuStore) GetVariables(_ context.Context) ([]VariableNode, error) {
	rows, err := s.query("MATCH (v:Variable) RETURN v.name, v.assigned ORDER BY v.name", nil)
	if err != nil {
		return nil, err
	}
	out := make([]VariableNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, VariableNode{Name: toString(r[0]), Assigned: toBool(r[1])})
	}
	return out, nil
}

// GetAllEdges returns every REFERENCES edge ordered by source, then target.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	rows, err := s.query(
		`MATCH (a:Variable)-[:REFERS_TO]->(b:Variable)
		 RETURN a.name, b.name ORDER BY a.name, b.name`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, Edge{
			SourceID: toString(r[0]),
			TargetID: toString(r[1]),
			Kind:     EdgeKindReferences,
		})
	}
	return edges, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over REFERS_TO edges starting from the
// given variable. It returns one DependencyChain per reachable variable.
func (s *KuzuStore) GetDependencies(_ context.Context, name string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state.
	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{name: true}
	queue := []bfsEntry{{path: []string{name}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.neighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// neighbors returns immediate neighbors along REFERS_TO edges.
func (s *KuzuStore) neighbors(name string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionDownstream:
		cypher = "MATCH (a:Variable {name: $name})-[:REFERS_TO]->(b:Variable) RETURN b.name"
	case DirectionUpstream:
		cypher = "MATCH (a:Variable)-[:REFERS_TO]->(b:Variable {name: $name}) RETURN a.name"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	sort.Strings(out)
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of variables and references.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	variables, err := s.count("MATCH (v:Variable) RETURN count(v)")
	if err != nil {
		return nil, err
	}
	assigned, err := s.count("MATCH (v:Variable) WHERE v.assigned RETURN count(v)")
	if err != nil {
		return nil, err
	}
	edges, err := s.count("MATCH ()-[r:REFERS_TO]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		VariableCount: variables,
		AssignedCount: assigned,
		EdgeCount:     edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value counting query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
