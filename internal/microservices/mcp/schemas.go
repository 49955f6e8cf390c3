package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"oneil-farm-bot/internal/domain"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

func searchOrdersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_orders",
		Description: "Find orders by 6-digit order number or by customer name (case-insensitive substring). Returns at most 10 orders, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": map[string]interface{}{
					"type":        "string",
					"description": "Last 6 digits of the order id, or part of the customer name",
				},
			},
			Required: []string{"term"},
		},
	}
}

func periodStatsTool() mcp.Tool {
	periods := make([]string, 0, len(reporting.Periods))
	for _, p := range reporting.Periods {
		periods = append(periods, string(p))
	}
	return mcp.Tool{
		Name:        "period_stats",
		Description: "Order count, revenue and per-status counts for today, this week, this month or all time",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"period": map[string]interface{}{
					"type": "string",
					"enum": periods,
				},
			},
			Required: []string{"period"},
		},
	}
}

func topClientsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "top_clients",
		Description: "Customers ranked by total amount spent",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"limit": limitProperty()},
		},
	}
}

func topProductsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "top_products",
		Description: "Products ranked by quantity sold, with revenue",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"limit": limitProperty()},
		},
	}
}

func ordersByStatusTool() mcp.Tool {
	statuses := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		statuses = append(statuses, string(s))
	}
	return mcp.Tool{
		Name:        "orders_by_status",
		Description: "Orders currently in the given status, newest first. Without a status, returns the count per status.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Status code or French label",
					"enum":        statuses,
				},
			},
		},
	}
}

func limitProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Number of rows to return",
		"default":     reporting.DefaultTop,
		"minimum":     1,
		"maximum":     reporting.MaxTop,
	}
}
