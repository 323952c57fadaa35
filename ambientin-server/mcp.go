package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"ambientin/internal/api"
)

// newMCPCmd serves the MCP tools over stdin/stdout for clients that launch
// the server as a subprocess. Logs go to stderr.
func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the marketplace MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			mp, err := a.open()
			if err != nil {
				return err
			}
			defer mp.Close()

			a.logger.Info("serving mcp over stdio", "db", a.cfg.Database.Path)
			return api.NewMCPServer(mp.svc, serverVersion).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
