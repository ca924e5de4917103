package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	dgraph "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/dusk-indust/makevargraph/internal/graph"
	"go.uber.org/zap"
)

// ErrRender reports a failure to produce or display the rendered graph.
var ErrRender = errors.New("render: cannot render graph")

// GraphComment heads every DOT file.
const GraphComment = "GNU Make Variable Directional Graph"

// FormatNone skips the Graphviz layout step and leaves only the DOT source.
const FormatNone = "none"

// Compile-time check that *DOTRenderer accepts an assembled graph.
var _ graph.Sink = (*DOTRenderer)(nil)

// DOTRenderer collects variables and references into a directed graph and
// renders it with Graphviz.
type DOTRenderer struct {
	// Format is the Graphviz output format passed to dot -T, e.g. "pdf".
	// Empty or FormatNone writes the DOT source only.
	Format string
	// Ratio sets the graph's ratio attribute when non-empty.
	Ratio string
	// DotBinary is the Graphviz layout program; "dot" when empty.
	DotBinary string
	// Viewer opens a rendered artifact; the platform opener when nil.
	Viewer []string
	Logger *zap.Logger

	g dgraph.Graph[string, string]
}

// NewDOTRenderer returns an empty renderer producing format.
func NewDOTRenderer(format string, logger *zap.Logger) *DOTRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DOTRenderer{
		Format: format,
		Logger: logger,
		g:      dgraph.New(dgraph.StringHash, dgraph.Directed()),
	}
}

// AddVariable adds a vertex. Referenced-only variables are drawn dashed.
func (r *DOTRenderer) AddVariable(_ context.Context, node graph.VariableNode) error {
	var opts []func(*dgraph.VertexProperties)
	if !node.Assigned {
		opts = append(opts, dgraph.VertexAttribute("style", "dashed"))
	}
	err := r.g.AddVertex(node.Name, opts...)
	if err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
		return fmt.Errorf("%w: add node %s: %v", ErrRender, node.Name, err)
	}
	return nil
}

// AddEdge adds a directed edge between two known variables. Repeated edges
// are ignored.
func (r *DOTRenderer) AddEdge(_ context.Context, edge graph.Edge) error {
	err := r.g.AddEdge(edge.SourceID, edge.TargetID)
	if err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
		return fmt.Errorf("%w: add edge %s -> %s: %v", ErrRender, edge.SourceID, edge.TargetID, err)
	}
	return nil
}

// WriteDOT serializes the graph as Graphviz DOT source.
func (r *DOTRenderer) WriteDOT(w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// %s\n", GraphComment)
	var err error
	if r.Ratio != "" {
		err = draw.DOT(r.g, &buf, draw.GraphAttribute("ratio", r.Ratio))
	} else {
		err = draw.DOT(r.g, &buf)
	}
	if err != nil {
		return fmt.Errorf("%w: write dot: %v", ErrRender, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: write dot: %v", ErrRender, err)
	}
	return nil
}

// Render writes name.gv, lays it out as name.<Format> with Graphviz and,
// when view is set, opens the result. It returns the path of the final
// artifact.
func (r *DOTRenderer) Render(ctx context.Context, name string, view bool) (string, error) {
	source := name + ".gv"
	if dir := filepath.Dir(source); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: %v", ErrRender, err)
		}
	}

	f, err := os.Create(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := r.WriteDOT(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	r.Logger.Debug("wrote dot source", zap.String("path", source))

	if r.Format == "" || r.Format == FormatNone {
		if view {
			r.Logger.Warn("nothing to view without an output format", zap.String("path", source))
		}
		return source, nil
	}

	artifact := name + "." + r.Format
	if err := r.layout(ctx, source, artifact); err != nil {
		return "", err
	}
	r.Logger.Info("rendered graph", zap.String("path", artifact))

	if view {
		if err := r.view(artifact); err != nil {
			return "", err
		}
	}
	return artifact, nil
}

// layout runs dot -T<format> -o artifact source.
func (r *DOTRenderer) layout(ctx context.Context, source, artifact string) error {
	binary := r.DotBinary
	if binary == "" {
		binary = "dot"
	}
	cmd := exec.CommandContext(ctx, binary, "-T"+r.Format, "-o", artifact, source)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s -T%s: %v: %s", ErrRender, binary, r.Format, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// view starts the viewer without waiting for it to exit.
func (r *DOTRenderer) view(artifact string) error {
	argv := r.Viewer
	if len(argv) == 0 {
		argv = platformViewer()
	}
	args := append(append([]string{}, argv[1:]...), artifact)
	cmd := exec.Command(argv[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrRender, artifact, err)
	}
	r.Logger.Debug("opened viewer", zap.String("viewer", argv[0]), zap.Int("pid", cmd.Process.Pid))
	return cmd.Process.Release()
}

func platformViewer() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"cmd", "/c", "start", ""}
	default:
		return []string{"xdg-open"}
	}
}
