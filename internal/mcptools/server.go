package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMakeVarGraphMCPServer creates an MCP server with the variable graph tools registered.
func NewMakeVarGraphMCPServer(svc *GraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "makevargraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "variable_graph",
		Description: "Build the variable dependency graph of a make database dump. Returns the graph as a sorted listing, Graphviz DOT, Mermaid or JSON, plus node and edge counts.",
	}, svc.VariableGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "variable_dependencies",
		Description: "Traverse the variable graph from one variable, downstream to the variables it references or upstream to the variables referencing it. Returns dependency chains up to the specified depth.",
	}, svc.VariableDependencies)

	return server
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunMCPServer starts an HTTP server exposing the MCP tools on addr.
func RunMCPServer(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
