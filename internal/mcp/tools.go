package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/claude/healthlens/internal/ingest"
	"github.com/claude/healthlens/internal/store"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// --- Tool definitions ---

var toolAnalyzeHealthCSV = mcp.NewTool("analyze_health_csv",
	mcp.WithDescription("Analyze a health CSV export and store the result. Accepts long format (user_id,date,metric,value) or wide format (date,heart_rate,steps,sleep_hours,water_liters,calories_burned). Returns the full analysis: 7-day averages, trends, anomalies, sleep and heart rate patterns, insights and health score."),
	mcp.WithString("csv", mcp.Required(), mcp.Description("CSV text including the header row")),
	mcp.WithString("filename", mcp.Description("Name recorded with the run. Defaults to 'mcp.csv'.")),
)

var toolGetLatestAnalysis = mcp.NewTool("get_latest_analysis",
	mcp.WithDescription("Return the most recent stored analysis run with its result and insight report."),
)

var toolGetAnalysis = mcp.NewTool("get_analysis",
	mcp.WithDescription("Return one stored analysis run by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Run ID (UUID) as returned by list_analyses")),
)

var toolListAnalyses = mcp.NewTool("list_analyses",
	mcp.WithDescription("List stored analysis runs, newest first, with source, record count and health score."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of runs. Defaults to 20, capped at 100."), mcp.Min(1)),
)

// --- Tool handlers ---

func (h *handlers) analyzeHealthCSV(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("csv")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := req.GetString("filename", "mcp.csv")

	res, err := h.ing.Ingest(ctx, strings.NewReader(text), filename)
	if err != nil {
		if ingest.IsBadInput(err) {
			return mcp.NewToolResultError("invalid CSV: " + err.Error()), nil
		}
		h.log.Error("mcp analyze_health_csv", "error", err)
		return mcp.NewToolResultError("analysis failed: " + err.Error()), nil
	}

	run := res.Run
	if run == nil {
		id, err := uuid.Parse(res.DataID)
		if err != nil {
			return mcp.NewToolResultError("server returned invalid run ID"), nil
		}
		if run, err = h.ds.Get(ctx, id); err != nil {
			h.log.Error("mcp analyze_health_csv fetch", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
	}

	return jsonResult(run)
}

func (h *handlers) getLatestAnalysis(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, err := h.ds.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError("no analyses stored yet"), nil
	}
	if err != nil {
		h.log.Error("mcp get_latest_analysis", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(run)
}

func (h *handlers) getAnalysis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid run ID: " + idStr), nil
	}

	run, err := h.ds.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError("analysis not found: " + idStr), nil
	}
	if err != nil {
		h.log.Error("mcp get_analysis", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(run)
}

func (h *handlers) listAnalyses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := min(req.GetInt("limit", defaultListLimit), maxListLimit)
	if limit < 1 {
		limit = defaultListLimit
	}

	runs, err := h.ds.List(ctx, limit)
	if err != nil {
		h.log.Error("mcp list_analyses", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(runs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
