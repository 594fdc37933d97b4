package signals

import (
	"fmt"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

// RiskLevel buckets a Risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFlag is a typed, independently surfaced risk observation.
type RiskFlag struct {
	Category    string
	Severity    string
	Description string
}

// RiskResult adds a level and flags on top of the common Result shape.
type RiskResult struct {
	Result
	Level RiskLevel
	Flags []RiskFlag
}

// Risk computes a 0-100 score (higher = riskier) from review-spike,
// seller-churn, and rating-volatility signals. Requires at least 7 points.
func Risk(metrics []commerce.DailyMetric) RiskResult {
	if len(metrics) < 7 {
		return RiskResult{
			Result: Result{Insufficient: true, Interpretation: "insufficient data for risk analysis"},
			Level:  "unknown",
		}
	}

	spikeDetected, spikeMagnitude := detectReviewSpike(metrics)
	churn := sellerChurnRate(metrics)
	volatility := ratingVolatility(metrics)

	normSpike := clampCap(spikeMagnitude, 5.0)
	normChurn := clampCap(churn, 0.5)
	normVolatility := clampCap(volatility, 1.0)

	score := (normSpike*0.4 + normChurn*0.3 + normVolatility*0.3) * 100

	var flags []RiskFlag
	if spikeDetected {
		severity := "low"
		switch {
		case spikeMagnitude > 5:
			severity = "high"
		case spikeMagnitude > 3:
			severity = "medium"
		}
		flags = append(flags, RiskFlag{
			Category:    "review_manipulation",
			Severity:    severity,
			Description: fmt.Sprintf("unusual review spike detected (%.1fx normal rate)", spikeMagnitude),
		})
	}
	if churn > 0.3 {
		flags = append(flags, RiskFlag{
			Category:    "seller_instability",
			Severity:    "medium",
			Description: fmt.Sprintf("high seller turnover (%.0f%% churn rate)", churn*100),
		})
	}
	if volatility > 0.5 {
		flags = append(flags, RiskFlag{
			Category:    "quality_issues",
			Severity:    "medium",
			Description: fmt.Sprintf("rating volatility detected (stddev=%.2f)", volatility),
		})
	}

	level := RiskLow
	switch {
	case score >= 70:
		level = RiskCritical
	case score >= 50:
		level = RiskHigh
	case score >= 25:
		level = RiskMedium
	}

	return RiskResult{
		Result: Result{
			Score: round1(score),
			Signals: map[string]float64{
				"review_spike_magnitude": spikeMagnitude,
				"seller_churn_rate":      churn,
				"rating_volatility":      volatility,
			},
			Interpretation: interpretRisk(level),
		},
		Level: level,
		Flags: flags,
	}
}

func detectReviewSpike(metrics []commerce.DailyMetric) (bool, float64) {
	var dailyChanges []float64
	for i := 1; i < len(metrics); i++ {
		change := float64(metrics[i].Reviews - metrics[i-1].Reviews)
		if change < 0 {
			change = 0
		}
		dailyChanges = append(dailyChanges, change)
	}
	if len(dailyChanges) == 0 {
		return false, 0
	}
	avg := mean(dailyChanges)
	if avg == 0 {
		return false, 0
	}
	maxChange := 0.0
	for _, c := range dailyChanges {
		if c > maxChange {
			maxChange = c
		}
	}
	magnitude := maxChange / avg
	return magnitude > 3.0, magnitude
}

func sellerChurnRate(metrics []commerce.DailyMetric) float64 {
	if len(metrics) < 2 {
		return 0
	}
	changes := 0
	for i := 1; i < len(metrics); i++ {
		if metrics[i].SellerCount != metrics[i-1].SellerCount {
			changes++
		}
	}
	return float64(changes) / float64(len(metrics)-1)
}

func ratingVolatility(metrics []commerce.DailyMetric) float64 {
	var ratings []float64
	for _, m := range metrics {
		if m.Rating > 0 {
			ratings = append(ratings, m.Rating)
		}
	}
	if len(ratings) < 2 {
		return 0
	}
	return stddev(ratings)
}

func interpretRisk(level RiskLevel) string {
	switch level {
	case RiskCritical:
		return "critical risk profile, multiple active warning signs"
	case RiskHigh:
		return "elevated risk, monitor closely"
	case RiskMedium:
		return "some risk indicators present"
	default:
		return "low risk profile"
	}
}
