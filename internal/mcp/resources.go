package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/claude/healthlens/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) latestSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	summary, err := latestSummary(ctx, h.ds)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func latestSummary(ctx context.Context, ds DataSource) (map[string]any, error) {
	run, err := ds.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]any{"message": "No health data available"}, nil
	}
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"data_id":      run.ID,
		"created_at":   run.CreatedAt,
		"source":       run.Source,
		"health_score": run.Report.HealthScore,
		"ai_insights":  run.Report.Messages,
	}
	if run.Result != nil {
		out["summary"] = run.Result.Summary
		out["trends"] = run.Result.Trends
		out["anomaly_count"] = len(run.Result.Anomalies)
	}
	return out, nil
}
