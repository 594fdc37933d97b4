package signals

import (
	"fmt"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

// TrendDirection is the bucketed read of a Trend score.
type TrendDirection string

const (
	TrendAccelerating TrendDirection = "accelerating"
	TrendStable       TrendDirection = "stable"
	TrendDeclining    TrendDirection = "declining"
)

// TrendResult adds a direction on top of the common Result shape.
type TrendResult struct {
	Result
	Direction TrendDirection
}

// Trend splits the series in half chronologically and compares
// review-velocity growth, rank-acceleration, and price growth between the
// two halves. Requires at least 14 points.
func Trend(metrics []commerce.DailyMetric) TrendResult {
	if len(metrics) < 14 {
		return TrendResult{
			Result:    Result{Insufficient: true, Interpretation: "insufficient data (need 14+ days)"},
			Direction: "unknown",
		}
	}

	mid := len(metrics) / 2
	firstHalf := metrics[:mid]
	secondHalf := metrics[mid:]

	reviewGrowth := velocityGrowth(firstHalf, secondHalf)
	rankAccel := rankAcceleration(firstHalf, secondHalf)
	priceGrowth := priceGrowth(metrics)

	normReview := normalizeGrowth(reviewGrowth, 2.0)
	normRank := normalizeGrowth(rankAccel, 1.0)
	normPrice := normalizeGrowth(priceGrowth, 0.5)

	score := (normReview*0.5 + normRank*0.3 + normPrice*0.2) * 100

	direction := TrendStable
	switch {
	case score > 20:
		direction = TrendAccelerating
	case score < -20:
		direction = TrendDeclining
	}

	return TrendResult{
		Result: Result{
			Score: round1(score),
			Signals: map[string]float64{
				"review_velocity_growth": reviewGrowth,
				"rank_acceleration":       rankAccel,
				"price_growth":            priceGrowth,
			},
			Interpretation: interpretTrend(score, reviewGrowth, priceGrowth),
		},
		Direction: direction,
	}
}

func velocity(metrics []commerce.DailyMetric) float64 {
	if len(metrics) < 2 {
		return 0
	}
	oldest, newest := metrics[0], metrics[len(metrics)-1]
	days := newest.Date.Sub(oldest.Date).Hours() / 24
	if days == 0 {
		return 0
	}
	return float64(newest.Reviews-oldest.Reviews) / days
}

func velocityGrowth(firstHalf, secondHalf []commerce.DailyMetric) float64 {
	v1 := velocity(firstHalf)
	v2 := velocity(secondHalf)
	if v1 == 0 {
		if v2 > 0 {
			return 1.0
		}
		return 0.0
	}
	return (v2 - v1) / absF(v1)
}

func rankImprovementRate(metrics []commerce.DailyMetric) float64 {
	if len(metrics) < 2 {
		return 0
	}
	var ranks []int
	for _, m := range metrics {
		if m.Rank != nil {
			ranks = append(ranks, *m.Rank)
		}
	}
	if len(ranks) < 2 {
		return 0
	}
	days := metrics[len(metrics)-1].Date.Sub(metrics[0].Date).Hours() / 24
	if days == 0 || ranks[0] == 0 {
		return 0
	}
	return float64(ranks[0]-ranks[len(ranks)-1]) / (float64(ranks[0]) * days)
}

func rankAcceleration(firstHalf, secondHalf []commerce.DailyMetric) float64 {
	r1 := rankImprovementRate(firstHalf)
	r2 := rankImprovementRate(secondHalf)
	if r1 == 0 {
		return r2
	}
	return (r2 - r1) / absF(r1)
}

func priceGrowth(metrics []commerce.DailyMetric) float64 {
	if len(metrics) < 2 {
		return 0
	}
	oldest, newest := metrics[0], metrics[len(metrics)-1]
	if oldest.Price == 0 {
		return 0
	}
	return (newest.Price - oldest.Price) / oldest.Price
}

func normalizeGrowth(value, maxVal float64) float64 {
	v := value / maxVal
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func interpretTrend(score, reviewGrowth, priceGrowth float64) string {
	var desc string
	switch {
	case score > 50:
		desc = "strong upward momentum"
	case score > 20:
		desc = "positive trend detected"
	case score > -20:
		desc = "relatively stable performance"
	case score > -50:
		desc = "showing signs of decline"
	default:
		desc = "significant downward trend"
	}

	var details []string
	if reviewGrowth > 0.2 {
		details = append(details, fmt.Sprintf("+%.0f%% review velocity", reviewGrowth*100))
	} else if reviewGrowth < -0.2 {
		details = append(details, fmt.Sprintf("%.0f%% review velocity", reviewGrowth*100))
	}
	if priceGrowth > 0.05 {
		details = append(details, fmt.Sprintf("+%.1f%% price", priceGrowth*100))
	} else if priceGrowth < -0.05 {
		details = append(details, fmt.Sprintf("%.1f%% price", priceGrowth*100))
	}

	if len(details) == 0 {
		return desc + "."
	}
	text := details[0]
	for _, d := range details[1:] {
		text += ", " + d
	}
	return fmt.Sprintf("%s (%s).", desc, text)
}
