package insights

import (
	"fmt"
	"testing"
	"time"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/claude/healthlens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	n := 0
	return &Engine{
		now: func() time.Time { return time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC) },
		newID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func analyze(t *testing.T, rows ...[]string) *analysis.Result {
	t.Helper()
	a, err := analysis.New(analysis.DefaultConfig())
	require.NoError(t, err)
	res, err := a.Analyze(analysis.Table{Columns: []string{"user_id", "date", "metric", "value"}, Rows: rows})
	require.NoError(t, err)
	return res
}

func byTitle(list []Insight, title string) (Insight, bool) {
	for _, in := range list {
		if in.Title == title {
			return in, true
		}
	}
	return Insight{}, false
}

// TestGenerateNoData verifies each template reports an info insight when its
// metric is missing.
func TestGenerateNoData(t *testing.T) {
	rep := testEngine().Generate(analyze(t))

	require.Len(t, rep.Insights, 3)
	for _, in := range rep.Insights {
		assert.Equal(t, SeverityInfo, in.Severity)
		assert.Empty(t, in.SuggestedActions)
	}
	assert.Empty(t, rep.Recommendations)
	assert.Empty(t, rep.Messages)
	assert.Equal(t, float64(defaultCSVScore), rep.HealthScore)
	assert.Equal(t, "id-1", rep.Insights[0].ID)
}

// TestGenerateShortSleep verifies low sleep yields a warning with recommendations
// and the averages appear in the messages.
func TestGenerateShortSleep(t *testing.T) {
	res := analyze(t,
		[]string{"u1", "2025-11-03", "sleep", "6"},
		[]string{"u1", "2025-11-04", "sleep", "5.5"},
		[]string{"u1", "2025-11-05", "sleep", "6"},
		[]string{"u1", "2025-11-03", "steps", "8000"},
		[]string{"u1", "2025-11-04", "steps", "8100"},
	)
	rep := testEngine().Generate(res)

	in, ok := byTitle(rep.Insights, "Sleep is below recommended levels")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, in.Severity)
	assert.Equal(t, recommendations["sleep"], in.SuggestedActions)

	assert.Equal(t, recommendations["sleep"], rep.Recommendations)
	assert.Contains(t, rep.Messages, "You're getting less than 7 hours of sleep on average.")
	assert.Contains(t, rep.Messages, "Try to maintain a consistent bedtime routine")
	assert.Contains(t, rep.Messages, "Average sleep: 5.83 hours")
	assert.Contains(t, rep.Messages, "Average steps: 8050 per day")
}

// TestGenerateHeartRateSpike verifies a reading 30% above the median is called out
// with its time of day, and the domain anomaly becomes a warning.
func TestGenerateHeartRateSpike(t *testing.T) {
	res := analyze(t,
		[]string{"u1", "2025-11-01 09:00:00", "heart_rate", "60"},
		[]string{"u1", "2025-11-02 09:00:00", "heart_rate", "62"},
		[]string{"u1", "2025-11-03 15:00:00", "heart_rate", "110"},
	)
	rep := testEngine().Generate(res)

	spike, ok := byTitle(rep.Insights, "Heart rate spike detected")
	require.True(t, ok)
	assert.Equal(t, "Heart rate peaked unusually at 03PM on 2025-11-03, possible stress?", spike.Message)

	urgent, ok := byTitle(rep.Insights, "Urgent: Resting HR > 100")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, urgent.Severity)
	assert.Equal(t, "Urgent: Resting HR > 100 on 2025-11-03 (value 110.0)", urgent.Message)
	assert.Contains(t, rep.Messages, "Average heart rate: 77.33 BPM")
}

// TestGenerateHydration verifies four or more low-water days produce a warning.
func TestGenerateHydration(t *testing.T) {
	var rows [][]string
	for d, v := range []string{"1.5", "1.2", "1.8", "1.0", "2.5"} {
		rows = append(rows, []string{"u1", fmt.Sprintf("2025-11-%02d", d+1), "water", v})
	}
	rep := testEngine().Generate(analyze(t, rows...))

	in, ok := byTitle(rep.Insights, "Hydration below recommended levels")
	require.True(t, ok)
	assert.Equal(t, "Hydration levels below recommended for 4 days.", in.Message)
	assert.Equal(t, recommendations["hydration"], rep.Recommendations)
}

// TestGenerateActivity verifies the steps trend drives the activity template.
func TestGenerateActivity(t *testing.T) {
	rep := testEngine().Generate(analyze(t,
		[]string{"u1", "2025-11-01", "steps", "10000"},
		[]string{"u1", "2025-11-02", "steps", "8000"},
	))
	in, ok := byTitle(rep.Insights, "Activity is declining")
	require.True(t, ok)
	assert.Equal(t, "Physical activity has decreased by 20% this week.", in.Message)
	assert.Equal(t, SeverityCaution, in.Severity)
}

// TestRecommendationsDeduplicated verifies repeated insight types contribute
// their actions once.
func TestRecommendationsDeduplicated(t *testing.T) {
	list := []Insight{
		{Type: "sleep", Severity: SeverityWarning},
		{Type: "sleep", Severity: SeverityCaution},
		{Type: "hydration", Severity: SeverityGood},
	}
	assert.Equal(t, recommendations["sleep"], recommendationsFor(list))
}

// TestScoreValues verifies each scoring band and the cap.
func TestScoreValues(t *testing.T) {
	tests := []struct {
		name                    string
		steps, sleep, hr, water float64
		want                    float64
	}{
		{"ideal", 12000, 8, 65, 3, 100},
		{"good", 8000, 6.5, 55, 2, 80},
		{"moderate", 5000, 9.5, 110, 2.4, 75},
		{"poor", 1000, 4, 130, 0.5, 40},
		{"band edges", 7500, 7, 100, 2.5, 95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreValues(tt.steps, tt.sleep, tt.hr, tt.water))
		})
	}
}

// TestScoreUploadDefaultsWater verifies a manual entry without water uses 2.0 L.
func TestScoreUploadDefaultsWater(t *testing.T) {
	u := models.HealthDataUpload{Steps: 10000, SleepHours: 8, HeartRate: 70}
	assert.Equal(t, 95.0, ScoreUpload(u))
}

// TestScoreSummary verifies the CSV score needs steps, sleep and heart rate.
func TestScoreSummary(t *testing.T) {
	assert.Equal(t, 85.0, ScoreSummary(map[string]float64{"steps_avg_7d": 9000}))
	assert.Equal(t, 95.0, ScoreSummary(map[string]float64{
		"steps_avg_7d": 11000, "sleep_avg_7d": 7.5, "heart_rate_avg_7d": 70,
	}))
}

// TestPlaceholder verifies the neutral fallback report.
func TestPlaceholder(t *testing.T) {
	p := Placeholder()
	assert.True(t, p.Fallback)
	assert.Equal(t, 75.0, p.HealthScore)
	assert.Equal(t, []string{PlaceholderMessage}, p.Messages)
}

// TestEmpty verifies the pre-upload report carries the single welcome insight.
func TestEmpty(t *testing.T) {
	e := Empty()
	require.Len(t, e.Insights, 1)
	assert.Equal(t, EmptyMessage, e.Insights[0].Message)
	assert.False(t, e.Fallback)
}
