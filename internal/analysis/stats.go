package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// mean returns 0 for empty input.
func mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// sampleStd is the n-1 standard deviation, 0 when fewer than two points.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd := stat.StdDev(xs, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

// popVariance is the n-denominator variance.
func popVariance(xs []float64) float64 {
	v, err := stats.PopulationVariance(xs)
	if err != nil {
		return 0
	}
	return v
}

func maxOf(xs []float64) float64 {
	m, err := stats.Max(xs)
	if err != nil {
		return 0
	}
	return m
}

// quantile interpolates linearly between order statistics at position
// (n-1)*p of a sorted copy of xs (R type 7).
func quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// pearson returns the correlation coefficient of two equally long samples.
func pearson(xs, ys []float64) (float64, bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, false
	}
	r, err := stats.Correlation(xs, ys)
	if err != nil || math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

func round(x float64, places int) float64 {
	r, err := stats.Round(x, places)
	if err != nil {
		return x
	}
	return r
}
