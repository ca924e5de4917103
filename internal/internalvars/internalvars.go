// Package internalvars supplies the names of make's built-in and implicit
// variables, which are left out of variable graphs unless requested.
package internalvars

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dusk-indust/makevargraph/internal/graph"
	"go.uber.org/zap"
)

// ErrEnumeration reports that the built-in variables could not be listed.
// Treating this as "no internal variables" would flood the graph with
// make's own variables, so callers must abort.
var ErrEnumeration = errors.New("internalvars: cannot enumerate internal variables")

// Source produces a set of internal variable names.
// Implementations: FileSource, StaticSource, MakeSource.
type Source interface {
	Names(ctx context.Context) (graph.Set, error)
}

// StaticSource is a fixed list of names.
type StaticSource []string

// Names returns the list as a set.
func (s StaticSource) Names(_ context.Context) (graph.Set, error) {
	return graph.NewSet(s...), nil
}

// FileSource reads names from a file, one per line. Blank lines and lines
// starting with '#' are ignored.
type FileSource struct {
	Path string
}

// Names reads and parses the file.
func (f FileSource) Names(_ context.Context) (graph.Set, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("internalvars: open %s: %w", f.Path, err)
	}
	defer file.Close()

	names := make(graph.Set)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("internalvars: read %s: %w", f.Path, err)
	}
	return names, nil
}

// listTarget is a goal no real makefile is expected to define.
const listTarget = "__makevargraph_internal_variables"

// listMakefile prints .VARIABLES while the makefile is parsed and gives
// make a no-op goal to build. With -f /dev/null the only variables defined
// are make's own plus the environment.
const listMakefile = "$(info $(.VARIABLES))\n" + listTarget + ": ;@:\n"

// MakeSource asks make itself for its variable list.
type MakeSource struct {
	// Binary is the make executable; "make" when empty.
	Binary string
	Logger *zap.Logger
}

// Names runs make once and tokenizes its output on whitespace. A missing
// binary, a non-zero exit or empty output is reported as ErrEnumeration.
func (m MakeSource) Names(ctx context.Context) (graph.Set, error) {
	binary := m.Binary
	if binary == "" {
		binary = "make"
	}
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	args := []string{"-s", "-f", os.DevNull, "--eval", listMakefile, listTarget}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("enumerating internal variables", zap.String("make", binary))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrEnumeration, binary, err, strings.TrimSpace(stderr.String()))
	}

	names := graph.NewSet(strings.Fields(stdout.String())...)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s printed no variables", ErrEnumeration, binary)
	}
	logger.Debug("internal variables enumerated", zap.Int("count", len(names)))
	return names, nil
}

// Select returns a FileSource when path is set and a MakeSource otherwise.
func Select(path, makeBinary string, logger *zap.Logger) Source {
	if path != "" {
		return FileSource{Path: path}
	}
	return MakeSource{Binary: makeBinary, Logger: logger}
}
