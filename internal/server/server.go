// Package server provides the MCP server wrapper with lifecycle management
// and the HTTP surface of the ordermatters server.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/ordermatters/internal/tools"
)

// Name is reported to MCP clients.
const Name = "ordermatters"

// Server wraps the MCP server with dependencies and lifecycle management.
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// New creates a new MCP server with the given version and logger.
func New(version string, logger *slog.Logger) *Server {
	impl := &mcp.Implementation{
		Name:    Name,
		Version: version,
	}

	return &Server{
		mcp:    mcp.NewServer(impl, nil),
		logger: logger,
	}
}

// Run starts the server on stdio transport and blocks until disconnect or context cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server for tool registration.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Setup adds the logging middleware and registers the tools.
func (s *Server) Setup(deps *tools.Dependencies) {
	s.mcp.AddReceivingMiddleware(LoggingMiddleware(s.logger))
	if deps != nil {
		tools.RegisterAll(s.mcp, deps)
	}
}

// StreamableHandler serves the MCP server over streamable HTTP.
func (s *Server) StreamableHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}
