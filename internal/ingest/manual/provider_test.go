package manual

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/claude/healthlens/internal/ingest"
	"github.com/claude/healthlens/internal/insights"
	"github.com/claude/healthlens/internal/models"
	"github.com/claude/healthlens/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 11, 5, 18, 30, 0, 0, time.UTC)

func newProvider(t *testing.T) (*Provider, *store.Store) {
	t.Helper()
	a, err := analysis.New(analysis.DefaultConfig())
	require.NoError(t, err)
	st, err := store.Open(context.Background(), store.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	p := NewProvider(a, insights.NewEngine(), st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.now = func() time.Time { return fixedNow }
	return p, st
}

// TestRecords verifies one record per metric on the entry's day.
func TestRecords(t *testing.T) {
	u := models.HealthDataUpload{Steps: 8000, SleepHours: 7, HeartRate: 65, Calories: 2100}
	raws := Records(u, "user1", fixedNow)
	require.Len(t, raws, 5)
	for _, r := range raws {
		assert.Equal(t, "user1", r.UserID)
		assert.Equal(t, "2025-11-05", r.Date)
	}
	assert.Equal(t, analysis.MetricWater, raws[3].Metric)
	assert.Equal(t, models.DefaultWaterIntake, raws[3].Value)
}

// TestIngest verifies the upload is stored with its direct health score.
func TestIngest(t *testing.T) {
	p, st := newProvider(t)
	ctx := context.Background()

	u := models.HealthDataUpload{Steps: 10000, SleepHours: 8, HeartRate: 70, Calories: 2200}
	res, err := p.Ingest(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, store.SourceJSON, res.Source)
	assert.Equal(t, 95.0, res.HealthScore)
	assert.Equal(t, 5, res.RecordsAnalyzed)

	run, err := st.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, run.Upload)
	assert.Equal(t, 10000.0, run.Upload.Steps)
	assert.Equal(t, 8.0, run.Result.Summary["sleep_avg_7d"])
}

// TestIngestRejectsNegative verifies invalid entries are bad input.
func TestIngestRejectsNegative(t *testing.T) {
	p, _ := newProvider(t)
	_, err := p.Ingest(context.Background(), models.HealthDataUpload{Steps: -1})
	assert.ErrorIs(t, err, ingest.ErrBadInput)
}
