package analysis

import (
	"fmt"
	"math"
)

// AnomalyKind distinguishes the two independent detection modes.
type AnomalyKind string

const (
	KindStatistical AnomalyKind = "statistical"
	KindDomain      AnomalyKind = "domain"
)

// Anomaly is a flagged daily value.
type Anomaly struct {
	Date   string      `json:"date"`
	Metric string      `json:"metric"`
	Value  float64     `json:"value"`
	Reason string      `json:"reason"`
	ZScore *float64    `json:"z_score,omitempty"`
	Kind   AnomalyKind `json:"kind"`
}

// DetectResult is the detector output for one series.
type DetectResult struct {
	Metric    string    `json:"metric"`
	Status    Status    `json:"status"`
	Anomalies []Anomaly `json:"anomalies"`
}

// Detector runs the rolling z-score test and the fixed domain rules.
type Detector struct {
	window    int
	threshold float64
	floor     float64
	rules     map[string][]DomainRule
}

// NewDetector creates a Detector from cfg.
func NewDetector(cfg Config) *Detector {
	rules := make(map[string][]DomainRule)
	for _, r := range cfg.DomainRules {
		rules[r.Metric] = append(rules[r.Metric], r)
	}
	return &Detector{
		window:    cfg.Window,
		threshold: cfg.ZThreshold,
		floor:     cfg.StdFloor,
		rules:     rules,
	}
}

// Detect scans one series. For each day the statistical anomaly, if any,
// precedes the domain-rule anomalies.
func (d *Detector) Detect(s Series) DetectResult {
	res := DetectResult{Metric: s.Metric, Status: StatusOK, Anomalies: []Anomaly{}}
	if len(s.Points) == 0 {
		res.Status = StatusNoData
		return res
	}

	values := s.Values()
	for i, p := range s.Points {
		day := p.Day.Format(DayLayout)

		lo := max(0, i-d.window+1)
		win := values[lo : i+1]
		m := mean(win)
		sd := sampleStd(win)
		if sd <= d.floor {
			sd = d.floor
		}
		z := math.Abs(p.Value-m) / sd
		if z > d.threshold {
			zs := round(z, 2)
			res.Anomalies = append(res.Anomalies, Anomaly{
				Date:   day,
				Metric: s.Metric,
				Value:  p.Value,
				Reason: fmt.Sprintf("Deviation > %g sigma (val=%.1f, mean=%.1f)", d.threshold, p.Value, m),
				ZScore: &zs,
				Kind:   KindStatistical,
			})
		}

		for _, rule := range d.rules[s.Metric] {
			if rule.matches(p.Value) {
				res.Anomalies = append(res.Anomalies, Anomaly{
					Date:   day,
					Metric: s.Metric,
					Value:  p.Value,
					Reason: rule.Reason,
					Kind:   KindDomain,
				})
			}
		}
	}
	return res
}

// DetectAll concatenates the anomalies of every series in series order.
func (d *Detector) DetectAll(series []Series) []Anomaly {
	out := []Anomaly{}
	for _, s := range series {
		out = append(out, d.Detect(s).Anomalies...)
	}
	return out
}
