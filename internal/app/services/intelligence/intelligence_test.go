package intelligence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

func metricSeries(n int) []commerce.DailyMetric {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]commerce.DailyMetric, 0, n)
	rank := 1000
	for i := 0; i < n; i++ {
		r := rank - i*5
		out = append(out, commerce.DailyMetric{
			Date:        start.AddDate(0, 0, i),
			Price:       20 + float64(i)*0.1,
			Reviews:     i * 10,
			Rating:      4.3,
			InStock:     true,
			SellerCount: 3,
			Rank:        &r,
		})
	}
	return out
}

func TestCompose_ProducesBoundedOverallScore(t *testing.T) {
	result := Compose("prod-1", metricSeries(30), "Electronics", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.GreaterOrEqual(t, result.OverallScore, 0.0)
	require.LessOrEqual(t, result.OverallScore, 100.0)
	require.NotEmpty(t, result.Verdict)
	require.LessOrEqual(t, len(result.Insights), 5)
}

func TestCompose_InsufficientHistoryYieldsFallbackVerdict(t *testing.T) {
	result := Compose("prod-2", metricSeries(1), "Electronics", time.Now())
	require.Equal(t, "insufficient history for a confident verdict", result.Verdict)
}

func TestCompose_ConfidenceAveragesDataPointsBandAndRevenueConfidence(t *testing.T) {
	result := Compose("prod-3", metricSeries(60), "Electronics", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Greater(t, result.Confidence, 0.0)
	require.LessOrEqual(t, result.Confidence, 1.0)
}
