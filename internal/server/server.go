// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/tejzpr/thread-mcp/internal/service"
	"github.com/tejzpr/thread-mcp/internal/tools"
)

// ServerName is reported to MCP clients during initialization
const ServerName = "Thread"

// MCPServer wraps the mcp-go server with the thread tools
type MCPServer struct {
	mcpServer *server.MCPServer
	service   *service.Service
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(svc *service.Service, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	return &MCPServer{
		mcpServer: mcpServer,
		service:   svc,
	}
}

// RegisterToolsForUser registers all thread tools for userID. An empty
// userID registers tools that act as the user found on each request.
func (s *MCPServer) RegisterToolsForUser(userID string) {
	toolCtx := tools.NewToolContext(s.service)
	for _, t := range tools.All(toolCtx, userID) {
		s.mcpServer.AddTool(t.Definition, t.Handler)
	}
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Service returns the insight service behind the tools
func (s *MCPServer) Service() *service.Service {
	return s.service
}
