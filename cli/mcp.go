// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/harperreed/agency/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(app *App, version string) error {
	app.Logger.Info("starting agency MCP server", zap.String("version", version))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "agency",
		Version: version,
	}, nil)

	h := handlers.New(app.Session, app.Streamer, app.Model, app.Logger)
	h.Register(server)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}
