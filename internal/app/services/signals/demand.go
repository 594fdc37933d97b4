package signals

import "github.com/aakashv8900/commercesignal/internal/app/domain/commerce"

// Demand computes a 0-100 demand score; requires at least 2 data points.
func Demand(metrics []commerce.DailyMetric) Result {
	if len(metrics) < 2 {
		return Result{Insufficient: true, Interpretation: "insufficient data for demand signal"}
	}

	first, last := metrics[0], metrics[len(metrics)-1]
	span := daySpan(metrics)

	reviewVelocity := float64(last.Reviews-first.Reviews) / span

	rankImprovement := 0.0
	if first.Rank != nil && last.Rank != nil && *first.Rank > 0 {
		rankImprovement = float64(*first.Rank-*last.Rank) / float64(*first.Rank)
	}

	stockouts := 0
	for _, m := range metrics {
		if !m.InStock {
			stockouts++
		}
	}
	stockoutFrequency := float64(stockouts) / float64(len(metrics))

	priceIncrease := 0.0
	if first.Price > 0 {
		priceIncrease = (last.Price - first.Price) / first.Price
	}

	score := 100 * (0.4*clampCap(reviewVelocity, 50) +
		0.3*clampCap(maxZero(rankImprovement), 0.5) +
		0.2*clampCap(stockoutFrequency, 0.3) +
		0.1*clampCap(maxZero(priceIncrease), 0.2))

	return Result{
		Score: round1(score),
		Signals: map[string]float64{
			"review_velocity":    reviewVelocity,
			"rank_improvement":   rankImprovement,
			"stockout_frequency": stockoutFrequency,
			"price_increase":     priceIncrease,
		},
		Interpretation: interpretDemand(score),
	}
}

func maxZero(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func interpretDemand(score float64) string {
	switch {
	case score >= 70:
		return "strong and growing demand"
	case score >= 40:
		return "moderate demand"
	default:
		return "weak or flat demand"
	}
}
