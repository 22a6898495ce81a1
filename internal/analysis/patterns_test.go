package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-11-03 is a Monday.
func sleepWeek(values ...float64) Series {
	s := Series{Metric: MetricSleep}
	for i, v := range values {
		s.Points = append(s.Points, DailyPoint{Day: day(3 + i), Value: v})
	}
	return s
}

func reading(d, hour int, v float64, hasTime bool) Record {
	ts := time.Date(2025, 11, d, hour, 0, 0, 0, time.UTC)
	return Record{UserID: "u1", Time: ts, Day: day(d), Metric: MetricHeartRate, Value: v, HasTime: hasTime}
}

// TestSleepPatternsInsufficient verifies fewer than three days is reported as a
// status, not an error.
func TestSleepPatternsInsufficient(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())
	assert.Equal(t, StatusNoData, p.Sleep(Series{Metric: MetricSleep}).Status)

	res := p.Sleep(sleepWeek(7, 8))
	assert.Equal(t, StatusInsufficientData, res.Status)
	assert.Empty(t, res.Patterns)
}

// TestSleepPatternsWeekendAndTrend verifies the weekday/weekend split, the
// first-3 vs last-3 comparison and the consistency score.
func TestSleepPatternsWeekendAndTrend(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())
	res := p.Sleep(sleepWeek(7, 7, 7, 7, 7, 9, 9))

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []string{
		"Weekend sleep differs by 2.0 hours from weekdays",
		"Sleep duration improving by 19% over the period",
	}, res.Patterns)
	assert.InDelta(t, 7.57, res.AvgDuration, 0.001)
	assert.InDelta(t, 83.7, res.ConsistencyScore, 0.001)
}

// TestSleepPatternsIrregular verifies high variance is flagged and the
// consistency score clamps at zero.
func TestSleepPatternsIrregular(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())
	res := p.Sleep(sleepWeek(4, 9, 4, 9, 4))

	assert.Equal(t, []string{"Highly irregular sleep schedule detected"}, res.Patterns)
	assert.Equal(t, 0.0, res.ConsistencyScore)
	assert.InDelta(t, 6.0, res.Variance, 1e-9)
}

// TestSleepPatternsDeclining verifies a drop beyond 15% is reported.
func TestSleepPatternsDeclining(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())
	res := p.Sleep(sleepWeek(8, 8, 8, 6, 6, 6))
	assert.Contains(t, res.Patterns, "Sleep duration declining by 25% over the period")
}

// TestHeartRatePatternsEmpty verifies no readings give an unknown risk level.
func TestHeartRatePatternsEmpty(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())
	res := p.HeartRate(nil)
	assert.Equal(t, StatusNoData, res.Status)
	assert.Equal(t, RiskUnknown, res.RiskLevel)
}

// TestHeartRatePatternsSpike verifies the IQR lens flags a single extreme reading
// and the risk level follows the maximum.
func TestHeartRatePatternsSpike(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())
	var readings []Record
	for i, v := range []float64{60, 60, 61, 62, 62, 63, 180} {
		readings = append(readings, reading(1+i, 14, v, true))
	}

	res := p.HeartRate(readings)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []string{"Heart rate spike detected: 180 bpm"}, res.Patterns)
	assert.Equal(t, 180.0, res.MaxHeartRate)
	assert.Equal(t, RiskHigh, res.RiskLevel)
	assert.Less(t, res.UpperBound, 180.0)
}

// TestHeartRatePatternsIQRBound verifies the outlier bound uses linearly
// interpolated quartiles: Q25=72.5, Q75=97.5, bound 135.
func TestHeartRatePatternsIQRBound(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())
	var readings []Record
	for i, v := range []float64{60, 70, 80, 90, 100, 138} {
		readings = append(readings, reading(1+i, 14, v, true))
	}

	res := p.HeartRate(readings)
	assert.Equal(t, 135.0, res.UpperBound)
	assert.Equal(t, []string{"Heart rate spike detected: 138 bpm"}, res.Patterns)
	assert.Equal(t, RiskModerate, res.RiskLevel)
}

// TestHeartRatePatternsNight verifies elevated night readings are flagged only
// when the readings carry a time of day.
func TestHeartRatePatternsNight(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())
	build := func(hasTime bool) []Record {
		return []Record{
			reading(1, 12, 70, hasTime), reading(1, 13, 71, hasTime), reading(1, 14, 72, hasTime),
			reading(2, 12, 73, hasTime), reading(2, 13, 74, hasTime), reading(2, 15, 75, hasTime),
			reading(1, 23, 90, hasTime), reading(2, 2, 91, hasTime), reading(2, 6, 92, hasTime),
		}
	}

	res := p.HeartRate(build(true))
	assert.Equal(t, []string{"Elevated nighttime heart rate detected - possible sleep issues"}, res.Patterns)
	assert.Equal(t, RiskLow, res.RiskLevel)

	res = p.HeartRate(build(false))
	assert.Empty(t, res.Patterns)
}

// TestHeartRateRiskLevels verifies the three-tier classification.
func TestHeartRateRiskLevels(t *testing.T) {
	tests := []struct {
		values []float64
		want   string
	}{
		{[]float64{101, 102, 103}, RiskHigh},
		{[]float64{86, 87, 88}, RiskModerate},
		{[]float64{70, 72, 121}, RiskModerate},
		{[]float64{60, 65, 70}, RiskLow},
	}
	p := NewPatternAnalyzer(DefaultConfig())
	for _, tt := range tests {
		var readings []Record
		for i, v := range tt.values {
			readings = append(readings, reading(1+i, 10, v, false))
		}
		assert.Equal(t, tt.want, p.HeartRate(readings).RiskLevel, "values %v", tt.values)
	}
}

// TestCorrelate verifies the short-sleep note and the Pearson coefficient over
// shared days.
func TestCorrelate(t *testing.T) {
	p := NewPatternAnalyzer(DefaultConfig())

	sleep := sleepWeek(6, 5, 4)
	hrDaily := Series{Metric: MetricHeartRate, Points: []DailyPoint{
		{Day: day(3), Value: 80}, {Day: day(4), Value: 85}, {Day: day(5), Value: 90},
	}}
	readings := []Record{reading(3, 9, 80, true), reading(4, 9, 85, true), reading(5, 9, 90, true)}

	res := p.Correlate(sleep, hrDaily, readings)
	assert.Equal(t, []string{"Poor sleep may be contributing to elevated heart rate"}, res.Notes)
	assert.Equal(t, 3, res.SharedDays)
	require.NotNil(t, res.Coefficient)
	assert.InDelta(t, -1.0, *res.Coefficient, 1e-9)

	res = p.Correlate(Series{Metric: MetricSleep}, hrDaily, readings)
	assert.Equal(t, StatusNoData, res.Status)
}
