// Package brand implements portfolio and competitive-positioning analysis
// over a Brand's BrandMetric history (latest first) and product list.
package brand

import (
	"fmt"
	"math"
	"time"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

// Health is the brand health score plus the strengths/weaknesses that fed
// it.
type Health struct {
	Score          float64
	Trend          string // "improving" | "stable" | "declining"
	Strengths      []string
	Weaknesses     []string
	Interpretation string
}

// CompetitivePosition describes a brand's standing relative to its
// category.
type CompetitivePosition struct {
	MarketSharePercent float64
	PricePositioning   string // "premium" | "mid-range" | "value"
}

// Intelligence is the full per-brand analysis result.
type Intelligence struct {
	BrandID             string
	Name                string
	Platform            commerce.Platform
	Category            string
	AnalysisDate        time.Time
	ProductCount        int
	TotalRevenueEstimate float64
	AvgProductPrice     float64
	AvgProductRating    float64
	TotalReviews        int
	Health              Health
	CompetitivePosition CompetitivePosition
	RevenueTrend30D     float64
	ReviewVelocity      float64
	ProductGrowth       int
	Verdict             string
	Insights            []string
}

// Comparison is the output of comparing N brands in the same category.
type Comparison struct {
	Brands        []string
	Category      string
	ComparisonDate time.Time
	Revenues      []float64
	MarketShares  []float64
	AvgRatings    []float64
	ProductCounts []int
	Leader        string
	FastestGrowing string
	BestRated     string
	Insights      []string
}

// Analyze generates a complete intelligence report for a single brand.
// metrics must be ordered latest-first.
func Analyze(b commerce.Brand, metrics []commerce.BrandMetric, products []commerce.Product, now time.Time) Intelligence {
	health := calculateHealth(metrics)
	position := calculateCompetitivePosition(metrics)
	revenueTrend := revenueTrend30D(metrics)
	reviewVelocity := avgReviewVelocity(metrics)
	productGrowth := countRecentProducts(products, now)

	var latest commerce.BrandMetric
	if len(metrics) > 0 {
		latest = metrics[0]
	}

	verdict := generateVerdict(health, revenueTrend)
	insights := generateInsights(b, health, position, revenueTrend, products)

	return Intelligence{
		BrandID:              b.ID,
		Name:                 b.Name,
		Platform:             b.Platform,
		Category:             orDefault(b.Category, "Unknown"),
		AnalysisDate:         now,
		ProductCount:         len(products),
		TotalRevenueEstimate: latest.RevenueEstimate,
		AvgProductPrice:      latest.AvgPrice,
		AvgProductRating:     latest.AvgRating,
		TotalReviews:         latest.TotalReviews,
		Health:               health,
		CompetitivePosition:  position,
		RevenueTrend30D:      revenueTrend,
		ReviewVelocity:       reviewVelocity,
		ProductGrowth:        productGrowth,
		Verdict:              verdict,
		Insights:             insights,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func calculateHealth(metrics []commerce.BrandMetric) Health {
	if len(metrics) == 0 {
		return Health{
			Score:          50,
			Trend:          "stable",
			Weaknesses:     []string{"insufficient data"},
			Interpretation: "not enough data for health analysis",
		}
	}

	latest := metrics[0]
	score := 50.0
	var strengths, weaknesses []string

	switch {
	case latest.AvgRating >= 4.5:
		score += 15
		strengths = append(strengths, "excellent customer satisfaction")
	case latest.AvgRating >= 4.0:
		score += 8
	case latest.AvgRating < 3.5:
		score -= 10
		weaknesses = append(weaknesses, "below average ratings")
	}

	switch {
	case latest.TotalReviews > 10000:
		score += 10
		strengths = append(strengths, "strong review base")
	case latest.TotalReviews > 1000:
		score += 5
	}

	switch {
	case latest.ProductCount >= 50:
		score += 10
		strengths = append(strengths, "diverse product portfolio")
	case latest.ProductCount <= 5:
		score -= 5
		weaknesses = append(weaknesses, "limited product range")
	}

	trend := "stable"
	if len(metrics) >= 7 {
		oldRev := metrics[len(metrics)-1].RevenueEstimate
		newRev := metrics[0].RevenueEstimate
		if oldRev > 0 {
			growth := (newRev - oldRev) / oldRev * 100
			switch {
			case growth > 20:
				score += 15
				strengths = append(strengths, "strong revenue growth")
				trend = "improving"
			case growth > 0:
				score += 5
				trend = "stable"
			default:
				score -= 10
				weaknesses = append(weaknesses, "declining revenue")
				trend = "declining"
			}
		}
	}

	score = math.Max(0, math.Min(100, score))

	return Health{
		Score:          round1(score),
		Trend:          trend,
		Strengths:      strengths,
		Weaknesses:     weaknesses,
		Interpretation: interpretHealth(score, trend),
	}
}

func interpretHealth(score float64, trend string) string {
	var base string
	switch {
	case score >= 80:
		base = "excellent brand health with strong fundamentals"
	case score >= 60:
		base = "good brand health with room for improvement"
	case score >= 40:
		base = "moderate brand health requiring attention"
	default:
		base = "concerning brand health requiring immediate action"
	}

	switch trend {
	case "improving":
		return base + ". positive momentum suggests continued growth."
	case "declining":
		return base + ". declining trend warrants investigation."
	default:
		return base
	}
}

func calculateCompetitivePosition(metrics []commerce.BrandMetric) CompetitivePosition {
	if len(metrics) == 0 {
		return CompetitivePosition{PricePositioning: "mid-range"}
	}
	latest := metrics[0]

	var positioning string
	switch {
	case latest.AvgPrice > 100:
		positioning = "premium"
	case latest.AvgPrice > 30:
		positioning = "mid-range"
	default:
		positioning = "value"
	}

	return CompetitivePosition{
		MarketSharePercent: latest.MarketSharePercent,
		PricePositioning:   positioning,
	}
}

func revenueTrend30D(metrics []commerce.BrandMetric) float64 {
	if len(metrics) < 2 {
		return 0
	}
	old := metrics[len(metrics)-1].RevenueEstimate
	newRev := metrics[0].RevenueEstimate
	if old <= 0 {
		return 0
	}
	return round1((newRev - old) / old * 100)
}

func avgReviewVelocity(metrics []commerce.BrandMetric) float64 {
	if len(metrics) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range metrics {
		sum += m.ReviewVelocity
	}
	return round1(sum / float64(len(metrics)))
}

func countRecentProducts(products []commerce.Product, now time.Time) int {
	cutoff := now.AddDate(0, 0, -30)
	count := 0
	for _, p := range products {
		if !p.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count
}

func generateVerdict(health Health, revenueTrend float64) string {
	switch {
	case health.Score >= 80 && revenueTrend > 10:
		return "high-performing brand with strong growth trajectory"
	case health.Score >= 60:
		return "solid brand with stable performance"
	case health.Score >= 40:
		return "brand showing mixed signals, monitor closely"
	default:
		return "underperforming brand requiring strategic review"
	}
}

func generateInsights(b commerce.Brand, health Health, position CompetitivePosition, revenueTrend float64, products []commerce.Product) []string {
	var insights []string

	if health.Score >= 70 {
		insights = append(insights, fmt.Sprintf("%s maintains strong brand equity with consistent customer satisfaction", b.Name))
	}

	switch {
	case revenueTrend > 20:
		insights = append(insights, fmt.Sprintf("revenue growth of %.1f%% suggests successful product strategy", revenueTrend))
	case revenueTrend < -10:
		insights = append(insights, fmt.Sprintf("revenue decline of %.1f%% warrants competitive analysis", math.Abs(revenueTrend)))
	}

	if position.PricePositioning == "premium" {
		insights = append(insights, "premium pricing strategy indicates strong brand differentiation")
	}

	if len(products) > 20 {
		insights = append(insights, fmt.Sprintf("portfolio of %d products provides good category coverage", len(products)))
	}

	if len(health.Strengths) > 0 {
		insights = append(insights, "key strength: "+health.Strengths[0])
	}

	if len(insights) > 5 {
		insights = insights[:5]
	}
	return insights
}

// Compare ranks N brands (same category) by revenue, growth rate, and
// rating. brandMetrics[i] is brands[i]'s metric history, latest first.
func Compare(brands []commerce.Brand, brandMetrics [][]commerce.BrandMetric, now time.Time) Comparison {
	names := make([]string, len(brands))
	category := "Unknown"
	if len(brands) > 0 {
		category = orDefault(brands[0].Category, "Unknown")
	}

	revenues := make([]float64, len(brands))
	shares := make([]float64, len(brands))
	ratings := make([]float64, len(brands))
	counts := make([]int, len(brands))
	growth := make([]float64, len(brands))

	for i, b := range brands {
		names[i] = b.Name
		metrics := brandMetrics[i]
		if len(metrics) > 0 {
			latest := metrics[0]
			revenues[i] = latest.RevenueEstimate
			shares[i] = latest.MarketSharePercent
			ratings[i] = latest.AvgRating
			counts[i] = latest.ProductCount
		}
		growth[i] = revenueTrend30D(metrics)
	}

	leaderIdx := argmax(revenues)
	bestRatedIdx := argmax(ratings)
	fastestIdx := argmax(growth)

	insights := generateComparisonInsights(names, revenues, ratings, growth)

	return Comparison{
		Brands:         names,
		Category:       category,
		ComparisonDate: now,
		Revenues:       revenues,
		MarketShares:   shares,
		AvgRatings:     ratings,
		ProductCounts:  counts,
		Leader:         names[leaderIdx],
		FastestGrowing: names[fastestIdx],
		BestRated:      names[bestRatedIdx],
		Insights:       insights,
	}
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

func generateComparisonInsights(names []string, revenues, ratings, growth []float64) []string {
	var insights []string
	if len(names) < 2 {
		return insights
	}

	leaderIdx := argmax(revenues)
	insights = append(insights, fmt.Sprintf("%s leads with $%.0f estimated monthly revenue", names[leaderIdx], revenues[leaderIdx]))

	fastestIdx := argmax(growth)
	if growth[fastestIdx] > 30 {
		insights = append(insights, fmt.Sprintf("%s growing fastest at %.1f%%", names[fastestIdx], growth[fastestIdx]))
	}

	bestRatedIdx := argmax(ratings)
	if ratings[bestRatedIdx] > 4.5 {
		insights = append(insights, fmt.Sprintf("%s excels in customer satisfaction (%.1f stars)", names[bestRatedIdx], ratings[bestRatedIdx]))
	}

	return insights
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
