package csvfile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/claude/healthlens/internal/ingest"
	"github.com/claude/healthlens/internal/insights"
	"github.com/claude/healthlens/internal/store"
)

// Provider analyzes uploaded CSV exports and stores each run.
type Provider struct {
	analyzer *analysis.Analyzer
	engine   *insights.Engine
	store    *store.Store
	log      *slog.Logger
}

// NewProvider creates a new CSV ingest provider.
func NewProvider(analyzer *analysis.Analyzer, engine *insights.Engine, st *store.Store, log *slog.Logger) *Provider {
	return &Provider{analyzer: analyzer, engine: engine, store: st, log: log}
}

// Ingest parses a CSV export, analyzes it and stores the run. Malformed CSV
// and schema violations are returned as bad-input errors and nothing is
// stored. Any other analysis failure stores a placeholder report instead.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, filename string) (*ingest.Result, error) {
	table, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing CSV: %v", ingest.ErrBadInput, err)
	}

	res, err := ingest.Guard(func() (*analysis.Result, error) { return p.analyzer.Analyze(table) })
	if err != nil && ingest.IsBadInput(err) {
		return nil, err
	}

	run := &store.Run{Source: store.SourceCSV, Filename: filename, Records: len(table.Rows)}
	if err != nil {
		p.log.Error("analysis failed, storing placeholder", "file", filename, "error", err)
		run.Report = insights.Placeholder()
	} else {
		run.Result = res
		run.Report = p.engine.Generate(res)
	}

	if err := p.store.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}

	out := ingest.NewResult(run)
	p.log.Info("csv analyzed",
		"id", out.DataID,
		"file", filename,
		"rows", out.RowsReceived,
		"records", out.RecordsAnalyzed,
		"dropped", out.RecordsDropped,
		"score", out.HealthScore,
	)
	return out, nil
}
