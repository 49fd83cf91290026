// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio for desktop agent integration
package cli

import (
	"context"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, c *app.Container, version string) error {
	c.Logger.Info("starting MCP server", zap.String("version", version))

	server := handlers.NewServer(c, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
