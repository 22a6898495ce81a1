package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

// Severity orders how urgently an insight should be surfaced.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityGood     Severity = "good"
	SeverityCaution  Severity = "caution"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Attention reports whether the severity asks the user to act.
func (s Severity) Attention() bool {
	return s == SeverityCaution || s == SeverityWarning || s == SeverityCritical
}

// Insight is one rendered observation about a run.
type Insight struct {
	ID               string         `json:"id"`
	Type             string         `json:"type"`
	Severity         Severity       `json:"severity"`
	Title            string         `json:"title"`
	Message          string         `json:"message"`
	SuggestedActions []string       `json:"suggested_actions"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Report is everything the insight layer derives from one analysis result.
type Report struct {
	Insights        []Insight `json:"insights"`
	Recommendations []string  `json:"recommendations"`
	Messages        []string  `json:"ai_insights"`
	HealthScore     float64   `json:"health_score"`
	AnalysisDate    time.Time `json:"analysis_date"`
	Fallback        bool      `json:"fallback,omitempty"`
}

// Thresholds used by the insight templates.
const (
	recommendedSleepHours = 7.0
	sleepVarianceLimit    = 2.0
	spikeMultiplier       = 1.3
	recommendedWaterLiter = 2.0
	lowHydrationDays      = 4
	maxRecommendations    = 3
)

// Engine renders analysis results into insights.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// NewEngine returns an Engine using wall-clock time and random UUIDs.
func NewEngine() *Engine {
	return &Engine{now: time.Now, newID: func() string { return uuid.NewString() }}
}

// Generate renders res. The health score is derived from the 7-day averages.
func (e *Engine) Generate(res *analysis.Result) Report {
	var list []Insight
	list = append(list, e.sleep(res.SeriesFor(analysis.MetricSleep)))
	list = append(list, e.heartRate(res.Readings))
	list = append(list, e.hydration(res.SeriesFor(analysis.MetricWater)))
	if in, ok := e.activity(res.Trends); ok {
		list = append(list, in)
	}
	list = append(list, e.patterns(res.Patterns)...)
	list = append(list, e.anomalies(res.Anomalies)...)

	recs := recommendationsFor(list)
	for i := range list {
		if list[i].Severity.Attention() {
			list[i].SuggestedActions = recommendations[list[i].Type]
		}
		if list[i].SuggestedActions == nil {
			list[i].SuggestedActions = []string{}
		}
	}

	return Report{
		Insights:        list,
		Recommendations: recs,
		Messages:        messages(list, recs, res.Summary),
		HealthScore:     ScoreSummary(res.Summary),
		AnalysisDate:    e.now().UTC(),
	}
}

func (e *Engine) insight(typ string, sev Severity, title, message string) Insight {
	return Insight{ID: e.newID(), Type: typ, Severity: sev, Title: title, Message: message}
}

func (e *Engine) sleep(s analysis.Series) Insight {
	if len(s.Points) == 0 {
		return e.insight("sleep", SeverityInfo, "No sleep data", "No sleep data available for the selected period.")
	}
	vals := s.Values()
	avg, _ := stats.Mean(vals)
	variance := 0.0
	if len(vals) > 1 {
		variance, _ = stats.SampleVariance(vals)
	}

	var in Insight
	switch {
	case avg < recommendedSleepHours:
		in = e.insight("sleep", SeverityWarning, "Sleep is below recommended levels",
			"You're getting less than 7 hours of sleep on average.")
	case variance > sleepVarianceLimit:
		in = e.insight("sleep", SeverityCaution, "Sleep pattern is irregular", "Your sleep is irregular this week.")
	default:
		in = e.insight("sleep", SeverityGood, "Sleep looks healthy", "Your sleep pattern looks healthy this week.")
	}
	in.Metadata = map[string]any{"avg_hours": round2(avg), "variance": round2(variance), "days": len(vals)}
	return in
}

func (e *Engine) heartRate(readings []analysis.Record) Insight {
	var hr []analysis.Record
	for _, r := range readings {
		if r.Metric == analysis.MetricHeartRate {
			hr = append(hr, r)
		}
	}
	if len(hr) == 0 {
		return e.insight("heart_rate", SeverityInfo, "No heart rate data", "No heart rate data available for the selected period.")
	}

	vals := make([]float64, len(hr))
	for i, r := range hr {
		vals[i] = r.Value
	}
	baseline, _ := stats.Median(vals)

	for _, r := range hr {
		if r.Value > baseline*spikeMultiplier {
			when := "on " + r.Day.Format(analysis.DayLayout)
			if r.HasTime {
				when = "at " + r.Time.Format("03PM") + " " + when
			}
			in := e.insight("heart_rate", SeverityWarning, "Heart rate spike detected",
				fmt.Sprintf("Heart rate peaked unusually %s, possible stress?", when))
			in.Metadata = map[string]any{"baseline": round2(baseline), "peak": r.Value}
			return in
		}
	}
	in := e.insight("heart_rate", SeverityGood, "Heart rate looks normal", "Your heart rate patterns look normal.")
	in.Metadata = map[string]any{"baseline": round2(baseline)}
	return in
}

func (e *Engine) hydration(s analysis.Series) Insight {
	if len(s.Points) == 0 {
		return e.insight("hydration", SeverityInfo, "No hydration data", "No hydration data available for the selected period.")
	}
	low := 0
	for _, p := range s.Points {
		if p.Value < recommendedWaterLiter {
			low++
		}
	}
	if low >= lowHydrationDays {
		in := e.insight("hydration", SeverityWarning, "Hydration below recommended levels",
			fmt.Sprintf("Hydration levels below recommended for %d days.", low))
		in.Metadata = map[string]any{"low_days": low}
		return in
	}
	return e.insight("hydration", SeverityGood, "Hydration looks good", "You're maintaining good hydration levels.")
}

func (e *Engine) activity(trends []analysis.Trend) (Insight, bool) {
	for _, t := range trends {
		if t.Metric != analysis.MetricSteps {
			continue
		}
		switch t.Direction {
		case analysis.DirectionDown:
			return e.insight("activity", SeverityCaution, "Activity is declining",
				fmt.Sprintf("Physical activity has decreased by %g%% this week.", -t.ChangePercent)), true
		case analysis.DirectionUp:
			return e.insight("activity", SeverityGood, "Activity is increasing",
				fmt.Sprintf("Great job! You've increased activity by %g%% this week.", t.ChangePercent)), true
		}
	}
	return Insight{}, false
}

var riskSeverity = map[string]Severity{
	analysis.RiskHigh:     SeverityWarning,
	analysis.RiskModerate: SeverityCaution,
	analysis.RiskLow:      SeverityInfo,
	analysis.RiskUnknown:  SeverityInfo,
}

func (e *Engine) patterns(p analysis.Patterns) []Insight {
	var out []Insight
	if len(p.Sleep.Patterns) > 0 {
		in := e.insight("sleep", SeverityCaution, "Detailed sleep patterns detected", strings.Join(p.Sleep.Patterns, "; "))
		in.Metadata = map[string]any{"consistency_score": p.Sleep.ConsistencyScore, "avg_duration": p.Sleep.AvgDuration}
		out = append(out, in)
	}
	if len(p.HeartRate.Patterns) > 0 {
		in := e.insight("heart_rate", riskSeverity[p.HeartRate.RiskLevel], "Detailed heart rate anomalies detected",
			strings.Join(p.HeartRate.Patterns, "; "))
		in.Metadata = map[string]any{"risk_level": p.HeartRate.RiskLevel, "max_heart_rate": p.HeartRate.MaxHeartRate}
		out = append(out, in)
	}
	if len(p.Correlation.Notes) > 0 {
		in := e.insight("correlation", SeverityCaution, "Sleep and heart rate", strings.Join(p.Correlation.Notes, "; "))
		if p.Correlation.Coefficient != nil {
			in.Metadata = map[string]any{"coefficient": *p.Correlation.Coefficient}
		}
		out = append(out, in)
	}
	return out
}

func (e *Engine) anomalies(list []analysis.Anomaly) []Insight {
	var out []Insight
	for _, a := range list {
		sev := SeverityCaution
		if a.Kind == analysis.KindDomain {
			sev = SeverityWarning
		}
		in := e.insight(a.Metric, sev, a.Reason, fmt.Sprintf("%s on %s (value %.1f)", a.Reason, a.Date, a.Value))
		in.Metadata = map[string]any{"date": a.Date, "kind": string(a.Kind)}
		out = append(out, in)
	}
	return out
}

func messages(list []Insight, recs []string, summary map[string]float64) []string {
	out := []string{}
	for _, in := range list {
		if in.Severity.Attention() {
			out = append(out, in.Message)
		}
	}
	out = append(out, recs[:min(len(recs), maxRecommendations)]...)
	if v, ok := summary["heart_rate_avg_7d"]; ok {
		out = append(out, fmt.Sprintf("Average heart rate: %g BPM", v))
	}
	if v, ok := summary["sleep_avg_7d"]; ok {
		out = append(out, fmt.Sprintf("Average sleep: %g hours", v))
	}
	if v, ok := summary["steps_avg_7d"]; ok {
		out = append(out, fmt.Sprintf("Average steps: %d per day", int(v)))
	}
	return out
}

func round2(x float64) float64 {
	r, err := stats.Round(x, 2)
	if err != nil {
		return x
	}
	return r
}
