package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"oneil-farm-bot/internal/domain"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602
	ErrorCodeInternalError = -32603
)

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("MCP error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

func (s *Server) handleSearchOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	term, ok := args["term"].(string)
	if !ok || term == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "term parameter is required", map[string]interface{}{
			"param":  "term",
			"reason": "missing or empty",
		})
	}

	res, err := s.reports.Search(ctx, term)
	if err != nil {
		return nil, s.internal("search_orders", err)
	}
	return result(res)
}

func (s *Server) handlePeriodStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	raw, _ := args["period"].(string)
	period, err := reporting.ParsePeriod(raw)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid period", map[string]interface{}{
			"param":  "period",
			"reason": err.Error(),
		})
	}

	stats, err := s.reports.PeriodStats(ctx, period)
	if err != nil {
		return nil, s.internal("period_stats", err)
	}
	return result(stats)
}

func (s *Server) handleTopClients(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	top, err := s.reports.TopClients(ctx, reporting.ClampTop(getIntDefault(args, "limit", reporting.DefaultTop)))
	if err != nil {
		return nil, s.internal("top_clients", err)
	}
	return result(top)
}

func (s *Server) handleTopProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	top, err := s.reports.TopProducts(ctx, reporting.ClampTop(getIntDefault(args, "limit", reporting.DefaultTop)))
	if err != nil {
		return nil, s.internal("top_products", err)
	}
	return result(top)
}

func (s *Server) handleOrdersByStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	raw, _ := args["status"].(string)
	if raw == "" {
		counts, err := s.reports.StatusOverview(ctx)
		if err != nil {
			return nil, s.internal("orders_by_status", err)
		}
		return result(counts)
	}

	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid status", map[string]interface{}{
			"param":  "status",
			"reason": err.Error(),
		})
	}
	orders, err := s.reports.FindByStatus(ctx, status)
	if err != nil {
		return nil, s.internal("orders_by_status", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return result(orders)
}

func (s *Server) internal(tool string, err error) error {
	s.lg.Error("mcp_tool_failed", err, map[string]any{"tool": tool})
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return newMCPError(ErrorCodeInvalidParams, verr.Error(), nil)
	}
	return newMCPError(ErrorCodeInternalError, tool+" failed", nil)
}

// arguments treats a missing argument object as empty.
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

func result(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode result", nil)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}
