// Package mcp assembles the MCP server from a loaded OpenAPI document.
package mcp

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yutashx/openapi-mcp-server/internal/bridge"
	"github.com/yutashx/openapi-mcp-server/internal/common"
	"github.com/yutashx/openapi-mcp-server/internal/config"
)

// NewServer builds an MCP server exposing one tool per OpenAPI operation.
// The tool catalog and the dispatcher's operation index are constructed
// once here and are immutable for the process lifetime.
func NewServer(cfg *config.Config, doc *openapi3.T, logger *common.Logger) *server.MCPServer {
	name := cfg.Server.Name
	version := config.GetVersion()
	if doc.Info != nil {
		if doc.Info.Title != "" {
			name = doc.Info.Title
		}
		if doc.Info.Version != "" {
			version = doc.Info.Version
		}
	}

	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))

	tools := bridge.NewBuilder(logger).BuildTools(doc)
	dispatcher := bridge.NewDispatcher(doc, tools, cfg.Upstream, logger)
	registered := RegisterTools(s, dispatcher, tools)

	logger.Info().
		Int("tools", registered).
		Str("base_url", cfg.Upstream.BaseURL).
		Msg("MCP server initialized")

	return s
}

// RegisterTools registers catalog tools with dispatch-backed handlers.
func RegisterTools(s *server.MCPServer, d *bridge.Dispatcher, tools []mcp.Tool) int {
	for _, tool := range tools {
		s.AddTool(tool, toolHandler(d, tool.Name))
	}
	return len(tools)
}

// toolHandler routes one MCP tool call through the dispatch engine.
func toolHandler(d *bridge.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return d.Invoke(ctx, name, r.GetArguments())
	}
}
