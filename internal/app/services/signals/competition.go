package signals

import "github.com/aakashv8900/commercesignal/internal/app/domain/commerce"

// BarrierLevel classifies how entrenched the current competitive field is.
type BarrierLevel string

const (
	BarrierLow    BarrierLevel = "low"
	BarrierMedium BarrierLevel = "medium"
	BarrierHigh   BarrierLevel = "high"
)

// Competition computes a 0-100 score (higher = more competition) plus a
// barrier classification.
func Competition(metrics []commerce.DailyMetric) (Result, BarrierLevel) {
	if len(metrics) == 0 {
		return Result{Insufficient: true, Interpretation: "insufficient data for competition signal"}, BarrierHigh
	}

	sellerCounts := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		sellerCounts = append(sellerCounts, float64(m.SellerCount))
	}
	avgSellerCount := mean(sellerCounts)

	shares := map[string]int{}
	for _, m := range metrics {
		if m.BuyboxOwner != "" {
			shares[m.BuyboxOwner]++
		}
	}
	reviewConcentration := 0.0
	if total := len(metrics); total > 0 && len(shares) > 0 {
		for _, count := range shares {
			share := float64(count) / float64(total)
			reviewConcentration += share * share
		}
	}

	transitions := 0
	prevOwner := ""
	haveOwner := false
	for _, m := range metrics {
		if m.BuyboxOwner == "" {
			continue
		}
		if haveOwner && m.BuyboxOwner != prevOwner {
			transitions++
		}
		prevOwner = m.BuyboxOwner
		haveOwner = true
	}
	buyboxVolatility := 0.0
	if len(metrics) > 1 {
		buyboxVolatility = float64(transitions) / float64(len(metrics)-1)
	}

	score := 100 * (0.4*clampCap(avgSellerCount, 50) +
		0.3*(1-reviewConcentration) +
		0.3*buyboxVolatility)

	var barrier BarrierLevel
	switch {
	case reviewConcentration > 0.7:
		barrier = BarrierHigh
	case score > 70:
		barrier = BarrierLow
	case score > 40:
		barrier = BarrierMedium
	default:
		barrier = BarrierHigh
	}

	return Result{
		Score: round1(score),
		Signals: map[string]float64{
			"avg_seller_count":     avgSellerCount,
			"review_concentration": reviewConcentration,
			"buybox_volatility":    buyboxVolatility,
		},
		Interpretation: interpretCompetition(barrier),
	}, barrier
}

func interpretCompetition(barrier BarrierLevel) string {
	switch barrier {
	case BarrierHigh:
		return "high barrier to entry, entrenched competition"
	case BarrierMedium:
		return "moderate competitive pressure"
	default:
		return "low barrier, fragmented competition"
	}
}
