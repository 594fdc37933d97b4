package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

func metricSeries(n int, priceFn func(i int) float64, reviewsFn func(i int) int) []commerce.DailyMetric {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]commerce.DailyMetric, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, commerce.DailyMetric{
			Date:    start.AddDate(0, 0, i),
			Price:   priceFn(i),
			Reviews: reviewsFn(i),
			Rating:  4.2,
			InStock: true,
		})
	}
	return out
}

func TestDemand_InsufficientDataBelowTwoPoints(t *testing.T) {
	res := Demand(metricSeries(1, func(i int) float64 { return 10 }, func(i int) int { return i }))
	require.True(t, res.Insufficient)
}

func TestDemand_RisingReviewsAndStockIncreasesScore(t *testing.T) {
	res := Demand(metricSeries(10, func(i int) float64 { return 10 }, func(i int) int { return i * 10 }))
	require.False(t, res.Insufficient)
	require.Greater(t, res.Score, 0.0)
	require.LessOrEqual(t, res.Score, 100.0)
}

func TestCompetition_SingleBuyboxOwnerFullConcentrationIsHighBarrier(t *testing.T) {
	metrics := metricSeries(10, func(i int) float64 { return 10 }, func(i int) int { return i })
	for i := range metrics {
		metrics[i].SellerCount = 40
		metrics[i].BuyboxOwner = "seller-a"
	}
	_, barrier := Competition(metrics)
	require.Equal(t, BarrierHigh, barrier) // single owner => concentration 1.0 => high barrier
}

func TestRevenue_NoRankReturnsZeroConfidence(t *testing.T) {
	metrics := metricSeries(5, func(i int) float64 { return 20 }, func(i int) int { return i })
	est := Revenue(metrics, "Electronics")
	require.Equal(t, 0.0, est.Confidence)
}

func TestRevenue_WithRankProducesBoundedEstimate(t *testing.T) {
	rank := 500
	metrics := metricSeries(30, func(i int) float64 { return 25 }, func(i int) int { return i * 5 })
	for i := range metrics {
		metrics[i].Rank = &rank
	}
	est := Revenue(metrics, "Electronics")
	require.Greater(t, est.EstimatedDailySales, 0.0)
	require.LessOrEqual(t, est.EstimatedDailySales, 10000.0)
	require.LessOrEqual(t, est.Confidence, 0.95)
}

func TestTrend_RequiresFourteenPoints(t *testing.T) {
	res := Trend(metricSeries(10, func(i int) float64 { return 10 }, func(i int) int { return i }))
	require.True(t, res.Insufficient)
}

func TestTrend_RisingPriceAndReviewsAccelerates(t *testing.T) {
	res := Trend(metricSeries(20, func(i int) float64 { return 10 + float64(i) }, func(i int) int { return i * i }))
	require.False(t, res.Insufficient)
	require.Equal(t, TrendAccelerating, res.Direction)
}

func TestRisk_RequiresSevenPoints(t *testing.T) {
	res := Risk(metricSeries(5, func(i int) float64 { return 10 }, func(i int) int { return i }))
	require.True(t, res.Insufficient)
}

func TestRisk_ReviewSpikeProducesFlag(t *testing.T) {
	metrics := metricSeries(10, func(i int) float64 { return 10 }, func(i int) int {
		if i == 8 {
			return 1000
		}
		return i
	})
	res := Risk(metrics)
	require.False(t, res.Insufficient)
	found := false
	for _, f := range res.Flags {
		if f.Category == "review_manipulation" {
			found = true
		}
	}
	require.True(t, found)
}

func TestDiscountCycle_RequiresFourteenPoints(t *testing.T) {
	pred := DiscountCycle(metricSeries(10, func(i int) float64 { return 10 }, func(i int) int { return i }), time.Now())
	require.False(t, pred.HasCycle)
}

func TestDiscountCycle_DetectsRepeatingDrops(t *testing.T) {
	metrics := metricSeries(30, func(i int) float64 {
		if i%10 >= 8 {
			return 60 // ~40% below 100 baseline
		}
		return 100
	}, func(i int) int { return i })
	pred := DiscountCycle(metrics, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.GreaterOrEqual(t, len(pred.HistoricalDiscounts), 2)
}
