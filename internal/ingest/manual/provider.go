package manual

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/claude/healthlens/internal/ingest"
	"github.com/claude/healthlens/internal/insights"
	"github.com/claude/healthlens/internal/models"
	"github.com/claude/healthlens/internal/store"
)

// Provider processes single-day manual entries submitted as JSON.
type Provider struct {
	analyzer *analysis.Analyzer
	engine   *insights.Engine
	store    *store.Store
	log      *slog.Logger
	now      func() time.Time
}

// NewProvider creates a new manual entry provider.
func NewProvider(analyzer *analysis.Analyzer, engine *insights.Engine, st *store.Store, log *slog.Logger) *Provider {
	return &Provider{analyzer: analyzer, engine: engine, store: st, log: log, now: time.Now}
}

// Ingest converts u into one record per metric, analyzes them and stores the
// run. The health score is computed from the submitted values directly.
func (p *Provider) Ingest(ctx context.Context, u models.HealthDataUpload) (*ingest.Result, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrBadInput, err)
	}

	raws := Records(u, p.analyzer.SyntheticUser(), p.now())
	run := &store.Run{Source: store.SourceJSON, Records: len(raws), Upload: &u}

	res, err := ingest.Guard(func() (*analysis.Result, error) { return p.analyzer.AnalyzeRecords(raws), nil })
	if err != nil {
		p.log.Error("analysis failed, storing placeholder", "error", err)
		run.Report = insights.Placeholder()
	} else {
		run.Result = res
		run.Report = p.engine.Generate(res)
		run.Report.HealthScore = insights.ScoreUpload(u)
	}

	if err := p.store.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}

	out := ingest.NewResult(run)
	p.log.Info("manual entry analyzed", "id", out.DataID, "day", u.Day(p.now()), "score", out.HealthScore)
	return out, nil
}

// Records expands a manual entry into long-form records for user on the
// entry's day.
func Records(u models.HealthDataUpload, user string, now time.Time) []analysis.RawRecord {
	day := u.Day(now.UTC())
	return []analysis.RawRecord{
		{UserID: user, Date: day, Metric: analysis.MetricSteps, Value: u.Steps},
		{UserID: user, Date: day, Metric: analysis.MetricSleep, Value: u.SleepHours},
		{UserID: user, Date: day, Metric: analysis.MetricHeartRate, Value: u.HeartRate},
		{UserID: user, Date: day, Metric: analysis.MetricWater, Value: u.Water()},
		{UserID: user, Date: day, Metric: analysis.MetricCalories, Value: u.Calories},
	}
}
