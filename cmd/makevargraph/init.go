package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// mcpServerName is the key of the makevargraph entry in .mcp.json.
const mcpServerName = "makevargraph"

// makevargraphMCPEntry is the MCP server configuration for this binary.
var makevargraphMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "makevargraph",
  "args": ["serve-mcp"]
}`)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Register the MCP server in a project's .mcp.json",
		Long: `Create or update DIR/.mcp.json (default: the current directory) so
MCP clients start "makevargraph serve-mcp". Other servers in the file are
kept. An existing makevargraph entry is only replaced with --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving project root: %w", err)
			}
			return mergeMCPConfig(a.streams.out, filepath.Join(abs, ".mcp.json"), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing makevargraph entry")
	return cmd
}

// mergeMCPConfig creates or merges the makevargraph entry into .mcp.json.
func mergeMCPConfig(out io.Writer, mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers[mcpServerName]; exists && !force {
		fmt.Fprintf(out, "  skipped .mcp.json %s entry (exists, use --force to overwrite)\n", mcpServerName)
		return nil
	}

	cfg.MCPServers[mcpServerName] = makevargraphMCPEntry

	encoded, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(out, "  %s .mcp.json with %s MCP server\n", action, mcpServerName)
	return nil
}
