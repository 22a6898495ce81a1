package analysis

import (
	"sort"
	"time"
)

// DailyPoint is one aggregated value for a calendar day.
type DailyPoint struct {
	Day   time.Time
	Value float64
}

// Series is the daily series of one canonical metric, ascending by day.
type Series struct {
	Metric string
	Points []DailyPoint
}

// Values returns the point values in day order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Aggregator collapses same-day readings of a metric into one value.
type Aggregator struct {
	additive map[string]bool
}

// NewAggregator builds the additive metric set from cfg.
func NewAggregator(cfg Config) *Aggregator {
	additive := make(map[string]bool, len(cfg.AdditiveMetrics))
	for _, m := range cfg.AdditiveMetrics {
		additive[m] = true
	}
	return &Aggregator{additive: additive}
}

type dayMetric struct {
	day    time.Time
	metric string
}

// Aggregate groups records by (day, metric) across users. Series are sorted by metric name.
func (a *Aggregator) Aggregate(records []Record) []Series {
	groups := make(map[dayMetric][]float64)
	for _, r := range records {
		k := dayMetric{day: r.Day, metric: r.Metric}
		groups[k] = append(groups[k], r.Value)
	}

	byMetric := make(map[string][]DailyPoint)
	for k, vals := range groups {
		byMetric[k.metric] = append(byMetric[k.metric], DailyPoint{Day: k.day, Value: a.Combine(k.metric, vals)})
	}

	out := make([]Series, 0, len(byMetric))
	for metric, points := range byMetric {
		sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })
		out = append(out, Series{Metric: metric, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out
}

// Combine sums additive metrics and averages everything else. Values are
// sorted first so the float result does not depend on input order.
func (a *Aggregator) Combine(metric string, vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	if a.additive[metric] {
		return sum
	}
	return sum / float64(len(sorted))
}
