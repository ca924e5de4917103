//go:build !cgo

package main

import (
	"errors"

	"github.com/dusk-indust/makevargraph/internal/graph"
)

func openStore(_ string) (graph.Store, error) {
	return nil, errors.New("--store requires a cgo build (KuzuDB)")
}
