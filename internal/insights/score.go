package insights

import "github.com/claude/healthlens/internal/models"

// ScoreUpload scores a manual single-day entry.
func ScoreUpload(u models.HealthDataUpload) float64 {
	return ScoreValues(u.Steps, u.SleepHours, u.HeartRate, u.Water())
}

// ScoreValues adds the steps, sleep, heart-rate and water bands, capped at 100.
func ScoreValues(steps, sleepHours, heartRate, waterLiters float64) float64 {
	var score float64

	switch {
	case steps >= 10000:
		score += 30
	case steps >= 7500:
		score += 25
	case steps >= 5000:
		score += 20
	default:
		score += 10
	}

	switch {
	case sleepHours >= 7 && sleepHours <= 9:
		score += 25
	case (sleepHours >= 6 && sleepHours < 7) || (sleepHours > 9 && sleepHours <= 10):
		score += 20
	default:
		score += 10
	}

	switch {
	case heartRate >= 60 && heartRate <= 100:
		score += 25
	case (heartRate >= 50 && heartRate < 60) || (heartRate > 100 && heartRate <= 120):
		score += 20
	default:
		score += 10
	}

	switch {
	case waterLiters >= 2.5:
		score += 20
	case waterLiters >= 2.0:
		score += 15
	default:
		score += 10
	}

	return min(score, 100)
}

// defaultCSVScore applies when a run lacks the averages needed for scoring.
const defaultCSVScore = 85

// ScoreSummary scores the 7-day averages when steps, sleep and heart rate are
// all present. Water falls back to the manual-entry default.
func ScoreSummary(summary map[string]float64) float64 {
	steps, okSteps := summary["steps_avg_7d"]
	sleep, okSleep := summary["sleep_avg_7d"]
	hr, okHR := summary["heart_rate_avg_7d"]
	if !okSteps || !okSleep || !okHR {
		return defaultCSVScore
	}
	water, ok := summary["water_avg_7d"]
	if !ok {
		water = models.DefaultWaterIntake
	}
	return ScoreValues(steps, sleep, hr, water)
}
