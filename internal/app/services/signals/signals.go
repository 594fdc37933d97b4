// Package signals implements the six pure signal calculators over a
// product's ordered DailyMetric series: demand, competition, revenue,
// trend, risk, and discount-cycle prediction.
package signals

import (
	"math"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

// Result is the common shape returned by every calculator.
type Result struct {
	Score          float64
	Signals        map[string]float64
	Interpretation string
	Insufficient   bool
}

// clampCap returns x/cap clamped to [0, 1], and 0 when cap is not positive.
func clampCap(x, cap float64) float64 {
	if cap <= 0 {
		return 0
	}
	v := x / cap
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func daySpan(metrics []commerce.DailyMetric) float64 {
	if len(metrics) < 2 {
		return 1
	}
	span := metrics[len(metrics)-1].Date.Sub(metrics[0].Date).Hours() / 24
	if span <= 0 {
		return 1
	}
	return span
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
