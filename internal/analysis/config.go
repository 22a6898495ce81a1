package analysis

import (
	"fmt"
	"time"
)

// Canonical metric names.
const (
	MetricSteps     = "steps"
	MetricSleep     = "sleep"
	MetricHeartRate = "heart_rate"
	MetricWater     = "water"
	MetricCalories  = "calories"
	MetricWeight    = "weight"
)

// WideColumn lists the header names accepted for one metric in a wide table.
// The first name present in the header wins.
type WideColumn struct {
	Metric  string   `yaml:"metric"`
	Columns []string `yaml:"columns"`
}

// DomainRule is a fixed absolute-threshold check applied to a daily value.
type DomainRule struct {
	Metric    string  `yaml:"metric"`
	Op        string  `yaml:"op"` // one of >, >=, <, <=
	Threshold float64 `yaml:"threshold"`
	Reason    string  `yaml:"reason"`
}

func (r DomainRule) matches(v float64) bool {
	switch r.Op {
	case ">":
		return v > r.Threshold
	case ">=":
		return v >= r.Threshold
	case "<":
		return v < r.Threshold
	case "<=":
		return v <= r.Threshold
	}
	return false
}

// PatternConfig holds the thresholds used by the sleep and heart-rate pattern analyzer.
type PatternConfig struct {
	MinSleepDays      int     `yaml:"min_sleep_days"`
	WeekendDiffHours  float64 `yaml:"weekend_diff_hours"`
	SleepTrendMinDays int     `yaml:"sleep_trend_min_days"`
	SleepTrendChange  float64 `yaml:"sleep_trend_change"` // fraction, 0.15 = 15%
	IrregularVariance float64 `yaml:"irregular_variance"`
	IQRMultiplier     float64 `yaml:"iqr_multiplier"`
	NightStartHour    int     `yaml:"night_start_hour"`
	NightEndHour      int     `yaml:"night_end_hour"` // inclusive
	NightElevation    float64 `yaml:"night_elevation"`
	RiskHighMean      float64 `yaml:"risk_high_mean"`
	RiskHighMax       float64 `yaml:"risk_high_max"`
	RiskModerateMean  float64 `yaml:"risk_moderate_mean"`
	RiskModerateMax   float64 `yaml:"risk_moderate_max"`
	ShortSleepHours   float64 `yaml:"short_sleep_hours"`
	ElevatedHeartRate float64 `yaml:"elevated_heart_rate"`
	MinSharedDays     int     `yaml:"min_shared_days"`
}

// Config carries every table and threshold the pipeline uses.
type Config struct {
	Aliases         map[string]string `yaml:"aliases"`
	WideColumns     []WideColumn      `yaml:"wide_columns"`
	SyntheticUser   string            `yaml:"synthetic_user"`
	DateLayouts     []string          `yaml:"date_layouts"`
	AdditiveMetrics []string          `yaml:"additive_metrics"`
	Window          int               `yaml:"window"`
	ZThreshold      float64           `yaml:"z_threshold"`
	StdFloor        float64           `yaml:"std_floor"`
	TrendBand       float64           `yaml:"trend_band"`
	SummaryDays     int               `yaml:"summary_days"`
	DomainRules     []DomainRule      `yaml:"domain_rules"`
	Patterns        PatternConfig     `yaml:"patterns"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		Aliases: map[string]string{
			"heart rate":   MetricHeartRate,
			"bpm":          MetricHeartRate,
			"hr":           MetricHeartRate,
			"water intake": MetricWater,
		},
		WideColumns: []WideColumn{
			{Metric: MetricHeartRate, Columns: []string{"heart_rate", "heart_rate_bpm"}},
			{Metric: MetricSteps, Columns: []string{"steps"}},
			{Metric: MetricSleep, Columns: []string{"sleep_hours", "sleep"}},
			{Metric: MetricWater, Columns: []string{"water_liters", "water"}},
			{Metric: MetricCalories, Columns: []string{"calories_burned", "calories"}},
		},
		SyntheticUser: "user1",
		DateLayouts: []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02 15:04",
			"2006-01-02",
			"2006/01/02",
			"01/02/2006",
		},
		AdditiveMetrics: []string{MetricSteps, MetricWater, MetricSleep, MetricCalories},
		Window:          7,
		ZThreshold:      3,
		StdFloor:        1e-9,
		TrendBand:       5,
		SummaryDays:     7,
		DomainRules: []DomainRule{
			{Metric: MetricHeartRate, Op: ">", Threshold: 100, Reason: "Urgent: Resting HR > 100"},
			// Inclusive so a night of exactly 4 hours is flagged.
			{Metric: MetricSleep, Op: "<=", Threshold: 4, Reason: "Fatigue warning: Sleep < 4h"},
		},
		Patterns: PatternConfig{
			MinSleepDays:      3,
			WeekendDiffHours:  1,
			SleepTrendMinDays: 5,
			SleepTrendChange:  0.15,
			IrregularVariance: 1.5,
			IQRMultiplier:     1.5,
			NightStartHour:    22,
			NightEndHour:      6,
			NightElevation:    1.1,
			RiskHighMean:      100,
			RiskHighMax:       150,
			RiskModerateMean:  85,
			RiskModerateMax:   120,
			ShortSleepHours:   7,
			ElevatedHeartRate: 80,
			MinSharedDays:     3,
		},
	}
}

// Validate reports the first inconsistency in the configuration.
func (c Config) Validate() error {
	for from, to := range c.Aliases {
		if _, ok := c.Aliases[to]; ok {
			return fmt.Errorf("alias %q maps to %q, which is itself an alias", from, to)
		}
	}
	if c.SyntheticUser == "" {
		return fmt.Errorf("synthetic_user is required")
	}
	if len(c.DateLayouts) == 0 {
		return fmt.Errorf("at least one date layout is required")
	}
	wide := map[string]bool{}
	for _, wc := range c.WideColumns {
		if len(wc.Columns) == 0 {
			return fmt.Errorf("wide column %q has no header names", wc.Metric)
		}
		wide[wc.Metric] = true
	}
	if !wide[MetricHeartRate] || !wide[MetricSteps] {
		return fmt.Errorf("wide_columns must define %s and %s", MetricHeartRate, MetricSteps)
	}
	if c.Window < 1 {
		return fmt.Errorf("window must be at least 1, got %d", c.Window)
	}
	if c.ZThreshold <= 0 {
		return fmt.Errorf("z_threshold must be positive")
	}
	if c.StdFloor <= 0 {
		return fmt.Errorf("std_floor must be positive")
	}
	if c.TrendBand < 0 {
		return fmt.Errorf("trend_band must not be negative")
	}
	if c.SummaryDays < 1 {
		return fmt.Errorf("summary_days must be at least 1")
	}
	for _, r := range c.DomainRules {
		switch r.Op {
		case ">", ">=", "<", "<=":
		default:
			return fmt.Errorf("domain rule for %q: unknown op %q", r.Metric, r.Op)
		}
	}
	p := c.Patterns
	if p.NightStartHour < 0 || p.NightStartHour > 23 || p.NightEndHour < 0 || p.NightEndHour > 23 {
		return fmt.Errorf("night hours must be within 0-23")
	}
	if p.MinSleepDays < 1 {
		return fmt.Errorf("patterns.min_sleep_days must be at least 1")
	}
	return nil
}
