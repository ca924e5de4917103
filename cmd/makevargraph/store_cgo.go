//go:build cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/makevargraph/internal/graph"
)

// openStore opens (or creates) the Kuzu database at dir.
func openStore(dir string) (graph.Store, error) {
	store, err := graph.NewKuzuFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	return store, nil
}
