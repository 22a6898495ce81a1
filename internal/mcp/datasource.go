package mcp

import (
	"context"
	"io"

	"github.com/claude/healthlens/internal/ingest"
	"github.com/claude/healthlens/internal/ingest/csvfile"
	"github.com/claude/healthlens/internal/store"
	"github.com/google/uuid"
)

// DataSource abstracts run storage for MCP tools. Both *store.Store (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Latest(ctx context.Context) (*store.Run, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Run, error)
	List(ctx context.Context, limit int) ([]store.RunSummary, error)
}

// Ingester analyzes a CSV export and stores the run.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, filename string) (*ingest.Result, error)
}

// Compile-time checks for the local implementations.
var (
	_ DataSource = (*store.Store)(nil)
	_ Ingester   = (*csvfile.Provider)(nil)
)
