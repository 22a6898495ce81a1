// Package analysis turns raw health measurements into daily series, trends,
// anomalies and sleep/heart-rate patterns. It performs no I/O.
package analysis

import (
	"fmt"
)

// TimeseriesRow is one flattened daily value.
type TimeseriesRow struct {
	Day    string  `json:"day"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// Stats counts what happened to the input rows.
type Stats struct {
	Rows            int  `json:"rows"`
	RawRecords      int  `json:"raw_records"`
	RecordsAnalyzed int  `json:"records_analyzed"`
	RecordsDropped  int  `json:"records_dropped"`
	Wide            bool `json:"wide"`
	Users           int  `json:"users"`
}

// Result is the full output of one pipeline run.
type Result struct {
	Summary    map[string]float64 `json:"summary"`
	Trends     []Trend            `json:"trends"`
	Anomalies  []Anomaly          `json:"anomalies"`
	Timeseries []TimeseriesRow    `json:"timeseries"`
	Patterns   Patterns           `json:"patterns"`
	Stats      Stats              `json:"stats"`

	Series   []Series `json:"-"`
	Readings []Record `json:"-"`
}

// SeriesFor returns the daily series for metric, or an empty series.
func (r *Result) SeriesFor(metric string) Series {
	for _, s := range r.Series {
		if s.Metric == metric {
			return s
		}
	}
	return Series{Metric: metric}
}

// Analyzer wires the pipeline stages together. It holds only immutable
// configuration and is safe for concurrent use.
type Analyzer struct {
	summaryDays   int
	syntheticUser string

	reconciler *Reconciler
	normalizer *Normalizer
	aggregator *Aggregator
	detector   *Detector
	classifier *Classifier
	patterns   *PatternAnalyzer
}

// New validates cfg and builds every stage from it.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config: %w", err)
	}
	return &Analyzer{
		summaryDays:   cfg.SummaryDays,
		syntheticUser: cfg.SyntheticUser,
		reconciler:    NewReconciler(cfg),
		normalizer:    NewNormalizer(cfg),
		aggregator:    NewAggregator(cfg),
		detector:      NewDetector(cfg),
		classifier:    NewClassifier(cfg),
		patterns:      NewPatternAnalyzer(cfg),
	}, nil
}

// SyntheticUser is the user id assigned to records that carry none.
func (a *Analyzer) SyntheticUser() string { return a.syntheticUser }

// Analyze reconciles t and runs the pipeline. Only *SchemaError is returned.
func (a *Analyzer) Analyze(t Table) (*Result, error) {
	raws, err := a.reconciler.Reconcile(t)
	if err != nil {
		return nil, err
	}
	res := a.AnalyzeRecords(raws)
	res.Stats.Rows = len(t.Rows)
	res.Stats.Wide = a.reconciler.IsWide(t.Columns)
	return res, nil
}

// AnalyzeRecords runs the pipeline on already reconciled records.
func (a *Analyzer) AnalyzeRecords(raws []RawRecord) *Result {
	norm := a.normalizer.Normalize(raws)
	series := a.aggregator.Aggregate(norm.Records)

	users := make(map[string]struct{})
	for _, r := range norm.Records {
		users[r.UserID] = struct{}{}
	}

	summary := make(map[string]float64, len(series)+1)
	timeseries := []TimeseriesRow{}
	for _, s := range series {
		vals := s.Values()
		tail := vals[max(0, len(vals)-a.summaryDays):]
		summary[s.Metric+"_avg_7d"] = round(mean(tail), 2)
		for _, p := range s.Points {
			timeseries = append(timeseries, TimeseriesRow{
				Day:    p.Day.Format(DayLayout),
				Metric: s.Metric,
				Value:  p.Value,
			})
		}
	}
	summary["total_users"] = float64(len(users))

	return &Result{
		Summary:    summary,
		Trends:     a.classifier.ClassifyAll(series),
		Anomalies:  a.detector.DetectAll(series),
		Timeseries: timeseries,
		Patterns:   a.patterns.Analyze(series, norm.Records),
		Stats: Stats{
			Rows:            len(raws),
			RawRecords:      len(raws),
			RecordsAnalyzed: len(norm.Records),
			RecordsDropped:  norm.Dropped,
			Users:           len(users),
		},
		Series:   series,
		Readings: norm.Records,
	}
}
