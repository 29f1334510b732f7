// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the flowcast MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Flowcast Forecast Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: list_series ---
	s.AddTool(mcp.NewTool("list_series",
		mcp.WithDescription("Derive the daily done and flow ticket counts of every project in a ticket table."),
		mcp.WithString("input_path", mcp.Description("Path to the ticket CSV produced by 'flowcast generate'."), mcp.Required()),
		mcp.WithString("projects", mcp.Description("Comma-separated project names to keep (defaults to all).")),
	), h.handleListSeries)

	// --- 2. Tool: forecast_series ---
	s.AddTool(mcp.NewTool("forecast_series",
		mcp.WithDescription("Run walk-forward validation of a regressor on the daily series of a ticket table."),
		mcp.WithString("input_path", mcp.Description("Path to the ticket CSV produced by 'flowcast generate'."), mcp.Required()),
		mcp.WithString("projects", mcp.Description("Comma-separated project names to keep (defaults to all).")),
		mcp.WithString("kinds", mcp.Description("Comma-separated series kinds (done, flow). Defaults to both.")),
		mcp.WithString("model", mcp.Description("Regressor fitted at each step. Defaults to 'boost'."), mcp.Enum("forest", "boost", "ridge")),
		mcp.WithString("strategy", mcp.Description("Hyperparameter search per step. Defaults to 'random'."), mcp.Enum("fixed", "grid", "random")),
		mcp.WithNumber("n_in", mcp.Description("Number of lagged days used as features.")),
		mcp.WithNumber("n_out", mcp.Description("Number of target days per supervised row.")),
		mcp.WithNumber("split_ratio", mcp.Description("Share of rows used as initial training history.")),
		mcp.WithNumber("last_n_days", mcp.Description("Keep only the last N days of each series in the rows (0 keeps all).")),
		mcp.WithBoolean("include_rows", mcp.Description("Include the per-day actual vs predicted rows in the result.")),
	), h.handleForecastSeries)

	return s
}

// StartMCPServer starts the flowcast MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
