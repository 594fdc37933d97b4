package signals

import (
	"fmt"
	"math"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

// RevenueEstimate is the output of the power-law / review-velocity revenue
// estimator.
type RevenueEstimate struct {
	EstimatedDailySales    float64
	EstimatedMonthlyRevenue float64
	EstimatedMonthlyUnits  int
	Confidence             float64
	Methodology            string
}

type rankCalibration struct{ a, b float64 }

var amazonCategoryCalibration = map[string]rankCalibration{
	"Electronics":            {50000, 0.8},
	"Home & Kitchen":         {30000, 0.75},
	"Toys & Games":           {25000, 0.7},
	"Sports & Outdoors":      {20000, 0.7},
	"Beauty & Personal Care": {35000, 0.75},
	"Health & Household":     {30000, 0.72},
	"Clothing":               {40000, 0.78},
	"Books":                  {60000, 0.85},
	"default":                {25000, 0.72},
}

type reviewCalibration struct{ multiplier, base float64 }

var flipkartCategoryCalibration = map[string]reviewCalibration{
	"Electronics":      {15.0, 5.0},
	"Mobiles":          {12.0, 8.0},
	"Fashion":          {20.0, 10.0},
	"Home & Furniture": {10.0, 3.0},
	"Appliances":       {8.0, 2.0},
	"Beauty":           {18.0, 6.0},
	"Toys & Baby":      {12.0, 4.0},
	"Sports":           {10.0, 3.0},
	"Books":            {25.0, 2.0},
	"Grocery":          {30.0, 15.0},
	"default":          {15.0, 5.0},
}

// Revenue estimates monthly revenue from rank using the power-law model, for
// platforms that expose a bestseller rank.
func Revenue(metrics []commerce.DailyMetric, category string) RevenueEstimate {
	if len(metrics) == 0 {
		return RevenueEstimate{Methodology: "no data available"}
	}

	latest := metrics[len(metrics)-1]
	if latest.Rank == nil || *latest.Rank == 0 {
		return RevenueEstimate{Methodology: "no rank data available"}
	}

	calib, ok := amazonCategoryCalibration[category]
	if !ok {
		calib = amazonCategoryCalibration["default"]
	}

	dailySales := dailySalesFromRank(*latest.Rank, calib.a, calib.b)
	monthlyUnits := int(dailySales * 30)
	monthlyRevenue := dailySales * 30 * latest.Price

	confidence := revenueConfidenceFromRank(metrics, latest)

	return RevenueEstimate{
		EstimatedDailySales:     round2(dailySales),
		EstimatedMonthlyRevenue: round2(monthlyRevenue),
		EstimatedMonthlyUnits:   monthlyUnits,
		Confidence:              confidence,
		Methodology:             fmt.Sprintf("power law model (a=%.0f, b=%.2f) for %s category, based on rank #%d", calib.a, calib.b, category, *latest.Rank),
	}
}

// RevenueFromReviews estimates monthly revenue from review-accumulation
// velocity, for platforms without a bestseller rank (Flipkart, Walmart,
// eBay, Shopify).
func RevenueFromReviews(metrics []commerce.DailyMetric, price float64, category string) RevenueEstimate {
	if len(metrics) < 7 {
		return RevenueEstimate{Confidence: 0.2, Methodology: "insufficient data (need 7+ days)"}
	}

	first, last := metrics[0], metrics[len(metrics)-1]
	daysDiff := last.Date.Sub(first.Date).Hours() / 24
	if daysDiff <= 0 {
		daysDiff = 1
	}
	reviewVelocity := float64(last.Reviews-first.Reviews) / daysDiff

	calib, ok := flipkartCategoryCalibration[category]
	if !ok {
		calib = flipkartCategoryCalibration["default"]
	}

	dailySales := calib.base + reviewVelocity*calib.multiplier
	dailySales = clampRange(dailySales, 0.5, 5000)

	monthlyUnits := int(dailySales * 30)
	monthlyRevenue := dailySales * 30 * price

	confidence := 0.4
	switch {
	case len(metrics) >= 30:
		confidence += 0.15
	case len(metrics) >= 14:
		confidence += 0.1
	}
	switch {
	case last.Reviews > 1000:
		confidence += 0.1
	case last.Reviews > 100:
		confidence += 0.05
	}
	if confidence > 0.75 {
		confidence = 0.75
	}

	return RevenueEstimate{
		EstimatedDailySales:     round2(dailySales),
		EstimatedMonthlyRevenue: round2(monthlyRevenue),
		EstimatedMonthlyUnits:   monthlyUnits,
		Confidence:              confidence,
		Methodology:             fmt.Sprintf("review velocity estimate for %s: %.2f reviews/day", category, reviewVelocity),
	}
}

func dailySalesFromRank(rank int, a, b float64) float64 {
	if rank <= 0 {
		return 0
	}
	sales := a * math.Pow(float64(rank), -b)
	return clampRange(sales, 0.1, 10000)
}

func revenueConfidenceFromRank(metrics []commerce.DailyMetric, latest commerce.DailyMetric) float64 {
	confidence := 0.5
	switch {
	case len(metrics) >= 30:
		confidence += 0.2
	case len(metrics) >= 14:
		confidence += 0.1
	}

	if len(metrics) >= 7 && latest.Rank != nil {
		var ranks []float64
		for _, m := range metrics {
			if m.Rank != nil {
				ranks = append(ranks, float64(*m.Rank))
			}
		}
		if len(ranks) > 0 {
			avgRank := mean(ranks)
			if avgRank > 0 {
				deviation := math.Abs(float64(*latest.Rank)-avgRank) / avgRank
				switch {
				case deviation < 0.1:
					confidence += 0.1
				case deviation < 0.25:
					confidence += 0.05
				}
			}
		}
	}

	switch {
	case latest.Reviews > 1000:
		confidence += 0.1
	case latest.Reviews > 100:
		confidence += 0.05
	}

	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

func clampRange(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
