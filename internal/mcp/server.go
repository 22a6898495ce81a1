package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, ing Ingester, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("HealthLens", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("HealthLens health analysis server. Analyze CSV exports of daily health metrics (steps, sleep, heart rate, water, calories) and read stored analyses with trends, anomalies, patterns and insights."),
	)

	h := &handlers{ds: ds, ing: ing, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolAnalyzeHealthCSV, Handler: h.analyzeHealthCSV},
		server.ServerTool{Tool: toolGetLatestAnalysis, Handler: h.getLatestAnalysis},
		server.ServerTool{Tool: toolGetAnalysis, Handler: h.getAnalysis},
		server.ServerTool{Tool: toolListAnalyses, Handler: h.listAnalyses},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resLatestSummary, Handler: h.latestSummary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	ing Ingester
	log *slog.Logger
}

// --- Resource definitions ---

var resLatestSummary = mcp.NewResource(
	"healthlens://latest_summary",
	"Latest Summary",
	mcp.WithResourceDescription("7-day averages, health score, trends and insight messages of the most recent analysis"),
	mcp.WithMIMEType("application/json"),
)
