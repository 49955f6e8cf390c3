package mcp

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"oneil-farm-bot/internal/common/logger"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

const (
	// ServerName is the MCP server name
	ServerName = "farmbot-reporting"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server exposes the reporting surface as MCP tools.
type Server struct {
	mcp     *server.MCPServer
	reports reporting.ReportingServiceInterface
	lg      *logger.Logger
}

func NewServer(reports reporting.ReportingServiceInterface, lg *logger.Logger) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		reports: reports,
		lg:      lg,
	}
	s.registerTools()
	return s
}

// Serve speaks MCP over the given streams until ctx is cancelled or the
// client disconnects.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.lg.Info("mcp_serving", map[string]any{"name": ServerName})
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchOrdersTool(), s.handleSearchOrders)
	s.mcp.AddTool(periodStatsTool(), s.handlePeriodStats)
	s.mcp.AddTool(topClientsTool(), s.handleTopClients)
	s.mcp.AddTool(topProductsTool(), s.handleTopProducts)
	s.mcp.AddTool(ordersByStatusTool(), s.handleOrdersByStatus)
}
