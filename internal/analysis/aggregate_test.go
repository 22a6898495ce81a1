package analysis

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func rec(metric string, d int, v float64) Record {
	return Record{UserID: "u1", Time: day(d), Day: day(d), Metric: metric, Value: v}
}

// TestAggregateCombinationRules verifies additive metrics are summed and level
// metrics averaged per day, with unknown metrics averaged.
func TestAggregateCombinationRules(t *testing.T) {
	a := NewAggregator(DefaultConfig())
	records := []Record{
		rec("steps", 1, 3000), rec("steps", 1, 4500),
		rec("heart_rate", 1, 60), rec("heart_rate", 1, 80),
		rec("weight", 2, 70), rec("weight", 2, 72),
		rec("mood", 1, 3), rec("mood", 1, 5),
		rec("water", 2, 0.5), rec("water", 2, 1.25),
	}

	series := a.Aggregate(records)
	got := map[string]float64{}
	for _, s := range series {
		require.Len(t, s.Points, 1, "metric %s", s.Metric)
		got[s.Metric] = s.Points[0].Value
	}
	assert.Equal(t, map[string]float64{
		"steps":      7500,
		"heart_rate": 70,
		"weight":     71,
		"mood":       4,
		"water":      1.75,
	}, got)
}

// TestAggregateOrdering verifies series are sorted by metric and points by day,
// with gaps left unfilled.
func TestAggregateOrdering(t *testing.T) {
	a := NewAggregator(DefaultConfig())
	series := a.Aggregate([]Record{
		rec("steps", 9, 1), rec("steps", 2, 1), rec("sleep", 5, 7), rec("steps", 4, 1),
	})

	require.Len(t, series, 2)
	assert.Equal(t, "sleep", series[0].Metric)
	assert.Equal(t, "steps", series[1].Metric)
	days := []int{}
	for _, p := range series[1].Points {
		days = append(days, p.Day.Day())
	}
	assert.Equal(t, []int{2, 4, 9}, days)
}

// TestAggregateOrderIndependent verifies permuting the input rows yields an
// identical daily series, including floating-point sums.
func TestAggregateOrderIndependent(t *testing.T) {
	a := NewAggregator(DefaultConfig())
	var records []Record
	for d := 1; d <= 5; d++ {
		for _, v := range []float64{0.1, 0.2, 0.3, 1e-3, 7.77} {
			records = append(records, rec("water", d, v*float64(d)))
			records = append(records, rec("heart_rate", d, 60+v*float64(d)))
		}
	}
	want := a.Aggregate(records)

	rng := rand.New(rand.NewSource(42))
	for range 10 {
		shuffled := append([]Record(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, a.Aggregate(shuffled))
	}
}

// TestAggregateEmpty verifies no series appear for empty input.
func TestAggregateEmpty(t *testing.T) {
	a := NewAggregator(DefaultConfig())
	assert.Empty(t, a.Aggregate(nil))
}
