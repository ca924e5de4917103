package main

import (
	"github.com/dusk-indust/makevargraph/internal/internalvars"
	"github.com/dusk-indust/makevargraph/internal/mcptools"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeMCPCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the variable graph tools over MCP",
		Long: `Run an MCP server exposing the variable_graph and variable_dependencies
tools. The server speaks stdio unless --http is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.logger.Sync()

			source := internalvars.Select(a.cfg.InternalVars, a.cfg.Make, a.logger)
			server := mcptools.NewMakeVarGraphMCPServer(mcptools.NewGraphService(source, a.logger))

			if addr != "" {
				a.logger.Info("serving MCP over HTTP", zap.String("addr", addr))
				return mcptools.RunMCPServer(cmd.Context(), server, addr)
			}
			a.logger.Debug("serving MCP over stdio")
			return mcptools.RunMCPServerStdio(cmd.Context(), server)
		},
	}

	cmd.Flags().StringVar(&addr, "http", "", "listen address for the streamable HTTP transport, e.g. localhost:8080")
	return cmd
}
