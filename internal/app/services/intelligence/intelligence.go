// Package intelligence composes the six signal calculators over a single
// product's metric history into one overall verdict.
package intelligence

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/signals"
)

// ProductIntelligence is the composed output of every signal calculator
// over one product's metric window.
type ProductIntelligence struct {
	ProductID      string
	OverallScore   float64
	Verdict        string
	Confidence     float64
	Demand         signals.Result
	Competition    signals.Result
	CompetitionBar signals.BarrierLevel
	Revenue        signals.RevenueEstimate
	Trend          signals.TrendResult
	Risk           signals.RiskResult
	DiscountCycle  signals.DiscountCyclePrediction
	Insights       []string
	GeneratedAt    time.Time
}

// Compose runs all six calculators over metrics (oldest-first) and
// assembles the overall verdict. now is injected for deterministic
// discount-cycle and generation timestamps.
func Compose(productID string, metrics []commerce.DailyMetric, category string, now time.Time) ProductIntelligence {
	demand := signals.Demand(metrics)
	competition, barrier := signals.Competition(metrics)
	trend := signals.Trend(metrics)
	risk := signals.Risk(metrics)
	discountCycle := signals.DiscountCycle(metrics, now)

	var revenue signals.RevenueEstimate
	if hasRank(metrics) {
		revenue = signals.Revenue(metrics, category)
	} else if len(metrics) > 0 {
		latest := metrics[len(metrics)-1]
		revenue = signals.RevenueFromReviews(metrics, latest.Price, category)
	}

	overall := overallScore(demand.Score, trend.Score, competition.Score, risk.Score)
	confidence := round1((dataPointsBand(len(metrics)) + revenue.Confidence) / 2)

	verdict := assembleVerdict(demand, competition, barrier, trend, risk, revenue)
	insights := selectInsights(demand, competition, trend, risk, discountCycle, now)

	return ProductIntelligence{
		ProductID:      productID,
		OverallScore:   overall,
		Verdict:        verdict,
		Confidence:     confidence,
		Demand:         demand,
		Competition:    competition,
		CompetitionBar: barrier,
		Revenue:        revenue,
		Trend:          trend,
		Risk:           risk,
		DiscountCycle:  discountCycle,
		Insights:       insights,
		GeneratedAt:    now,
	}
}

func hasRank(metrics []commerce.DailyMetric) bool {
	for _, m := range metrics {
		if m.Rank != nil {
			return true
		}
	}
	return false
}

func overallScore(demand, trend, competition, risk float64) float64 {
	score := 0.35*demand + 0.25*((trend+100)/2) + 0.20*(100-competition) + 0.20*(100-risk)
	return round1(score)
}

func dataPointsBand(n int) float64 {
	switch {
	case n >= 60:
		return 0.9
	case n >= 30:
		return 0.7
	case n >= 14:
		return 0.5
	default:
		return 0.3
	}
}

func assembleVerdict(demand, competition signals.Result, barrier signals.BarrierLevel, trend signals.TrendResult, risk signals.RiskResult, revenue signals.RevenueEstimate) string {
	if demand.Insufficient || competition.Insufficient {
		return "insufficient history for a confident verdict"
	}

	recommendation := "monitor"
	switch {
	case demand.Score >= 70 && risk.Level == signals.RiskLow && barrier != signals.BarrierHigh:
		recommendation = "strong candidate"
	case risk.Level == signals.RiskCritical || risk.Level == signals.RiskHigh:
		recommendation = "proceed with caution"
	case demand.Score < 40:
		recommendation = "likely skip"
	}

	revenueContext := "revenue estimate unavailable"
	if revenue.Confidence > 0 {
		revenueContext = fmt.Sprintf("est. $%.0f/mo revenue (%s)", revenue.EstimatedMonthlyRevenue, revenue.Methodology)
	}

	return fmt.Sprintf("%s, %s competition (%s barrier), %s trend, %s risk. %s. Recommendation: %s.",
		demand.Interpretation, competition.Interpretation, barrier, trend.Direction, risk.Level, revenueContext, recommendation)
}

func selectInsights(demand, competition signals.Result, trend signals.TrendResult, risk signals.RiskResult, discountCycle signals.DiscountCyclePrediction, now time.Time) []string {
	var insights []string

	if !demand.Insufficient {
		insights = append(insights, "demand: "+demand.Interpretation)
	}
	if !competition.Insufficient {
		insights = append(insights, "competition: "+competition.Interpretation)
	}
	if !trend.Insufficient {
		insights = append(insights, "trend: "+trend.Interpretation)
	}

	flags := make([]signals.RiskFlag, len(risk.Flags))
	copy(flags, risk.Flags)
	sort.SliceStable(flags, func(i, j int) bool { return severityRank(flags[i].Severity) > severityRank(flags[j].Severity) })
	for i := 0; i < len(flags) && i < 2; i++ {
		insights = append(insights, fmt.Sprintf("risk flag [%s]: %s", flags[i].Category, flags[i].Description))
	}

	if discountCycle.HasCycle {
		daysUntil := discountCycle.NextPredictedDiscount.Sub(now).Hours() / 24
		if daysUntil >= 0 && daysUntil <= 14 {
			insights = append(insights, fmt.Sprintf("discount cycle: next drop expected within %.0f days", daysUntil))
		}
	}

	if len(insights) > 5 {
		insights = insights[:5]
	}
	return insights
}

func severityRank(severity string) int {
	switch severity {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	default:
		return 0
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
