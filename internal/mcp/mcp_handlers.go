package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/flowcast/core"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// seriesInfo is the compact view of a daily series returned by list_series.
type seriesInfo struct {
	Key     string            `json:"key"`
	Project string            `json:"project"`
	Kind    schema.SeriesKind `json:"kind"`
	Days    int               `json:"days"`
	First   string            `json:"first,omitempty"`
	Last    string            `json:"last,omitempty"`
	Total   float64           `json:"total"`
}

func (h *toolHandler) handleListSeries(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputPath = request.GetString("input_path", "")
	if cfg.InputPath == "" {
		return mcp.NewToolResultError("input_path is required"), nil
	}
	if p := request.GetString("projects", ""); p != "" {
		cfg.Projects = contract.SplitList(p)
	}

	projects, err := core.LoadProjectSeries(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("series derivation failed: %v", err)), nil
	}

	output := struct {
		Series  []seriesInfo               `json:"series"`
		PIFlows map[string][]schema.PIFlow `json:"pi_flows"`
	}{PIFlows: map[string][]schema.PIFlow{}}
	for _, p := range projects {
		output.PIFlows[p.Project] = p.PIFlows
		for _, s := range p.Series {
			info := seriesInfo{Key: s.Key, Project: s.Project, Kind: s.Kind, Days: len(s.Points)}
			if n := len(s.Points); n > 0 {
				info.First = s.Points[0].Date.Format(schema.DateFormat)
				info.Last = s.Points[n-1].Date.Format(schema.DateFormat)
			}
			for _, point := range s.Points {
				info.Total += point.Value
			}
			output.Series = append(output.Series, info)
		}
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleForecastSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputPath = request.GetString("input_path", "")
	if p := request.GetString("projects", ""); p != "" {
		cfg.Projects = contract.SplitList(p)
	}
	if k := request.GetString("kinds", ""); k != "" {
		kinds, err := contract.ParseKinds(k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid forecast parameters: %v", err)), nil
		}
		cfg.Kinds = kinds
	}
	if m := request.GetString("model", ""); m != "" {
		cfg.Model = schema.ModelKind(m)
	}
	if s := request.GetString("strategy", ""); s != "" {
		cfg.Strategy = schema.SearchStrategy(s)
	}
	cfg.NIn = request.GetInt("n_in", cfg.NIn)
	cfg.NOut = request.GetInt("n_out", cfg.NOut)
	cfg.SplitRatio = request.GetFloat("split_ratio", cfg.SplitRatio)
	cfg.LastNDays = request.GetInt("last_n_days", cfg.LastNDays)

	if err := contract.RevalidateForecast(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid forecast parameters: %v", err)), nil
	}

	result, err := core.RunForecast(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("forecast failed: %v", err)), nil
	}

	output := struct {
		RunID   string                 `json:"run_id"`
		Summary []schema.SeriesSummary `json:"summary"`
		Rows    []schema.ForecastRow   `json:"rows,omitempty"`
	}{
		RunID:   result.RunID,
		Summary: schema.Summarize(result.Series),
	}
	if request.GetBool("include_rows", false) {
		output.Rows = result.Rows
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
