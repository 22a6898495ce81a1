package analysis

import (
	"fmt"
	"math"
	"time"
)

// Risk levels reported for heart rate.
const (
	RiskHigh     = "high"
	RiskModerate = "moderate"
	RiskLow      = "low"
	RiskUnknown  = "unknown"
)

// SleepPatterns summarizes the daily sleep series.
type SleepPatterns struct {
	Status           Status   `json:"status"`
	Patterns         []string `json:"patterns"`
	Days             int      `json:"days"`
	AvgDuration      float64  `json:"avg_duration"`
	Variance         float64  `json:"variance"`
	ConsistencyScore float64  `json:"consistency_score"`
}

// HeartRatePatterns summarizes raw heart-rate readings.
type HeartRatePatterns struct {
	Status       Status   `json:"status"`
	Patterns     []string `json:"patterns"`
	Readings     int      `json:"readings"`
	AvgHeartRate float64  `json:"avg_heart_rate"`
	MaxHeartRate float64  `json:"max_heart_rate"`
	UpperBound   float64  `json:"upper_bound"`
	RiskLevel    string   `json:"risk_level"`
}

// Correlation relates sleep and heart rate.
type Correlation struct {
	Status      Status   `json:"status"`
	Notes       []string `json:"notes"`
	SharedDays  int      `json:"shared_days"`
	Coefficient *float64 `json:"coefficient,omitempty"`
}

// Patterns groups the metric-specific analyses.
type Patterns struct {
	Sleep       SleepPatterns     `json:"sleep"`
	HeartRate   HeartRatePatterns `json:"heart_rate"`
	Correlation Correlation       `json:"correlation"`
}

// PatternAnalyzer runs the sleep and heart-rate specializations.
type PatternAnalyzer struct {
	cfg PatternConfig
}

// NewPatternAnalyzer creates a PatternAnalyzer from cfg.Patterns.
func NewPatternAnalyzer(cfg Config) *PatternAnalyzer {
	return &PatternAnalyzer{cfg: cfg.Patterns}
}

// Analyze runs all three lenses. series is the aggregated output and records
// the normalized readings the series were built from.
func (p *PatternAnalyzer) Analyze(series []Series, records []Record) Patterns {
	var sleep, hrDaily Series
	for _, s := range series {
		switch s.Metric {
		case MetricSleep:
			sleep = s
		case MetricHeartRate:
			hrDaily = s
		}
	}
	var readings []Record
	for _, r := range records {
		if r.Metric == MetricHeartRate {
			readings = append(readings, r)
		}
	}
	return Patterns{
		Sleep:       p.Sleep(sleep),
		HeartRate:   p.HeartRate(readings),
		Correlation: p.Correlate(sleep, hrDaily, readings),
	}
}

// Sleep inspects the daily sleep series.
func (p *PatternAnalyzer) Sleep(s Series) SleepPatterns {
	res := SleepPatterns{Patterns: []string{}, Days: len(s.Points)}
	if len(s.Points) == 0 {
		res.Status = StatusNoData
		return res
	}
	if len(s.Points) < p.cfg.MinSleepDays {
		res.Status = StatusInsufficientData
		return res
	}
	res.Status = StatusOK
	durations := s.Values()

	var weekday, weekend []float64
	for _, pt := range s.Points {
		switch pt.Day.Weekday() {
		case time.Saturday, time.Sunday:
			weekend = append(weekend, pt.Value)
		default:
			weekday = append(weekday, pt.Value)
		}
	}
	if len(weekday) > 0 && len(weekend) > 0 {
		diff := math.Abs(mean(weekend) - mean(weekday))
		if diff > p.cfg.WeekendDiffHours {
			res.Patterns = append(res.Patterns, fmt.Sprintf("Weekend sleep differs by %.1f hours from weekdays", diff))
		}
	}

	if n := len(durations); n >= p.cfg.SleepTrendMinDays && n >= 3 {
		earlier := mean(durations[:3])
		recent := mean(durations[n-3:])
		if earlier > 0 {
			change := (recent - earlier) / earlier
			switch {
			case change < -p.cfg.SleepTrendChange:
				res.Patterns = append(res.Patterns, fmt.Sprintf("Sleep duration declining by %.0f%% over the period", math.Abs(change)*100))
			case change > p.cfg.SleepTrendChange:
				res.Patterns = append(res.Patterns, fmt.Sprintf("Sleep duration improving by %.0f%% over the period", change*100))
			}
		}
	}

	variance := popVariance(durations)
	if variance > p.cfg.IrregularVariance {
		res.Patterns = append(res.Patterns, "Highly irregular sleep schedule detected")
	}

	res.AvgDuration = round(mean(durations), 2)
	res.Variance = round(variance, 3)
	res.ConsistencyScore = round(math.Max(0, 100-variance*20), 1)
	return res
}

// HeartRate inspects individual readings rather than daily means.
func (p *PatternAnalyzer) HeartRate(readings []Record) HeartRatePatterns {
	res := HeartRatePatterns{Patterns: []string{}, Readings: len(readings), RiskLevel: RiskUnknown}
	if len(readings) == 0 {
		res.Status = StatusNoData
		return res
	}
	res.Status = StatusOK

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}

	q75 := quantile(values, 0.75)
	q25 := quantile(values, 0.25)
	upper := q75 + p.cfg.IQRMultiplier*(q75-q25)
	res.UpperBound = round(upper, 2)

	spike := math.Inf(-1)
	for _, v := range values {
		if v > upper && v > spike {
			spike = v
		}
	}
	if !math.IsInf(spike, -1) {
		res.Patterns = append(res.Patterns, fmt.Sprintf("Heart rate spike detected: %g bpm", spike))
	}

	var night, day []float64
	for _, r := range readings {
		if !r.HasTime {
			continue
		}
		if p.isNight(r.Time.Hour()) {
			night = append(night, r.Value)
		} else {
			day = append(day, r.Value)
		}
	}
	if len(night) > 0 && len(day) > 0 && mean(night) > mean(day)*p.cfg.NightElevation {
		res.Patterns = append(res.Patterns, "Elevated nighttime heart rate detected - possible sleep issues")
	}

	avg := mean(values)
	peak := maxOf(values)
	res.AvgHeartRate = round(avg, 2)
	res.MaxHeartRate = peak
	switch {
	case avg > p.cfg.RiskHighMean || peak > p.cfg.RiskHighMax:
		res.RiskLevel = RiskHigh
	case avg > p.cfg.RiskModerateMean || peak > p.cfg.RiskModerateMax:
		res.RiskLevel = RiskModerate
	default:
		res.RiskLevel = RiskLow
	}
	return res
}

// isNight handles windows that wrap midnight (22 to 6) as well as ones that don't.
func (p *PatternAnalyzer) isNight(hour int) bool {
	start, end := p.cfg.NightStartHour, p.cfg.NightEndHour
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

// Correlate flags short sleep alongside elevated heart rate and, when enough
// days overlap, reports the Pearson coefficient of the two daily series.
func (p *PatternAnalyzer) Correlate(sleep, hrDaily Series, readings []Record) Correlation {
	res := Correlation{Notes: []string{}}
	if len(sleep.Points) == 0 || len(readings) == 0 {
		res.Status = StatusNoData
		return res
	}
	res.Status = StatusOK

	hrValues := make([]float64, len(readings))
	for i, r := range readings {
		hrValues[i] = r.Value
	}
	if mean(sleep.Values()) < p.cfg.ShortSleepHours && mean(hrValues) > p.cfg.ElevatedHeartRate {
		res.Notes = append(res.Notes, "Poor sleep may be contributing to elevated heart rate")
	}

	hrByDay := make(map[time.Time]float64, len(hrDaily.Points))
	for _, pt := range hrDaily.Points {
		hrByDay[pt.Day] = pt.Value
	}
	var xs, ys []float64
	for _, pt := range sleep.Points {
		if hr, ok := hrByDay[pt.Day]; ok {
			xs = append(xs, pt.Value)
			ys = append(ys, hr)
		}
	}
	res.SharedDays = len(xs)
	if len(xs) < p.cfg.MinSharedDays {
		return res
	}
	if r, ok := pearson(xs, ys); ok {
		r = round(r, 3)
		res.Coefficient = &r
	}
	return res
}
