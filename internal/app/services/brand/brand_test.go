package brand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

func TestAnalyze_NoMetricsYieldsNeutralHealth(t *testing.T) {
	b := commerce.Brand{ID: "b1", Name: "Acme", Category: "Electronics"}
	result := Analyze(b, nil, nil, time.Now())
	require.Equal(t, 50.0, result.Health.Score)
	require.Equal(t, "stable", result.Health.Trend)
}

func TestAnalyze_HighRatingAndGrowthYieldsTopVerdict(t *testing.T) {
	b := commerce.Brand{ID: "b1", Name: "Acme", Category: "Electronics"}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	metrics := make([]commerce.BrandMetric, 8)
	for i := range metrics {
		metrics[i] = commerce.BrandMetric{
			Date:         now.AddDate(0, 0, -i),
			AvgRating:    4.7,
			TotalReviews: 15000,
			ProductCount: 60,
			AvgPrice:     120,
			RevenueEstimate: func() float64 {
				if i == len(metrics)-1 {
					return 10000
				}
				return 15000
			}(),
		}
	}

	result := Analyze(b, metrics, nil, now)
	require.GreaterOrEqual(t, result.Health.Score, 80.0)
	require.Equal(t, "improving", result.Health.Trend)
	require.Equal(t, "premium", result.CompetitivePosition.PricePositioning)
	require.Equal(t, "high-performing brand with strong growth trajectory", result.Verdict)
}

func TestAnalyze_ProductGrowthCountsRecentProducts(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	products := []commerce.Product{
		{CreatedAt: now.AddDate(0, 0, -5)},
		{CreatedAt: now.AddDate(0, 0, -40)},
	}
	result := Analyze(commerce.Brand{Name: "Acme"}, nil, products, now)
	require.Equal(t, 1, result.ProductGrowth)
	require.Equal(t, 2, result.ProductCount)
}

func TestCompare_PicksLeaderFastestAndBestRated(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	brands := []commerce.Brand{{Name: "Acme"}, {Name: "Globex"}}
	brandMetrics := [][]commerce.BrandMetric{
		{{RevenueEstimate: 5000, AvgRating: 4.8}},
		{{RevenueEstimate: 20000, AvgRating: 4.2}},
	}

	result := Compare(brands, brandMetrics, now)
	require.Equal(t, "Globex", result.Leader)
	require.Equal(t, "Acme", result.BestRated)
}
