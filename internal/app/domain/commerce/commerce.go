// Package commerce defines the core product-intelligence entities: the
// catalog (Product, Seller, Brand) and their append-only daily metric
// series.
package commerce

import "time"

// Platform identifies a supported retail marketplace.
type Platform string

const (
	PlatformAmazon    Platform = "amazon"
	PlatformFlipkart  Platform = "flipkart"
	PlatformWalmart   Platform = "walmart"
	PlatformAlibaba   Platform = "alibaba"
	PlatformAliExpress Platform = "aliexpress"
	PlatformEbay      Platform = "ebay"
	PlatformShopify   Platform = "shopify"
)

// Product is the catalog entity. (Platform, ExternalID) is its natural key;
// scrapers must never create a second Product for a re-scraped URL.
type Product struct {
	ID         string
	Platform   Platform
	ExternalID string
	URL        string
	Title      string
	Category   string
	Brand      string
	ImageURL   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DailyMetric is an append-only, one-per-calendar-day observation of a
// Product's marketplace state.
type DailyMetric struct {
	ID               string
	ProductID        string
	Date             time.Time // truncated to a calendar day (UTC)
	Price            float64
	OriginalPrice    *float64
	DiscountPercent  *float64
	Rank             *int
	Reviews          int
	Rating           float64
	SellerCount      int
	InStock          bool
	DeliveryDays     *int
	BuyboxOwner      string
	CreatedAt        time.Time
}

// Normalize enforces the §3 DailyMetric invariants: a non-negative price,
// original_price >= price when present, and a derived discount_percent.
func (m *DailyMetric) Normalize() {
	if m.Price < 0 {
		m.Price = 0
	}
	if m.OriginalPrice != nil {
		if *m.OriginalPrice < m.Price {
			m.OriginalPrice = nil
			m.DiscountPercent = nil
			return
		}
		if *m.OriginalPrice > 0 {
			pct := (*m.OriginalPrice - m.Price) / *m.OriginalPrice * 100
			m.DiscountPercent = &pct
		}
	}
	if m.SellerCount < 1 {
		m.SellerCount = 1
	}
	if m.Rating < 0 {
		m.Rating = 0
	} else if m.Rating > 5 {
		m.Rating = 5
	}
}

// Brand is a cross-product grouping unique per (platform, slug).
type Brand struct {
	ID        string
	Platform  Platform
	Slug      string
	Name      string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BrandMetric is an append-only daily aggregate of a Brand's product metrics.
type BrandMetric struct {
	ID                string
	BrandID           string
	Date              time.Time
	ProductCount      int
	AvgPrice          float64
	AvgRating         float64
	TotalReviews      int
	ReviewVelocity    float64
	AvgRank           *float64
	RevenueEstimate   float64
	MarketSharePercent float64
	CreatedAt         time.Time
}

// Seller is a supplemental entity (not in the core spec entity table, but
// present in the original source's data model) tracking a marketplace
// seller distinct from a brand — used by the competition signal's buybox
// tracking and by brand market-share rollups.
type Seller struct {
	ID              string
	Platform        Platform
	ExternalID      string
	Name            string
	FulfillmentType string // e.g. "FBA", "FBM", "self"
	CreatedAt       time.Time
}

// SellerMetric is an append-only daily rollup of a Seller's standing.
type SellerMetric struct {
	ID            string
	SellerID      string
	Date          time.Time
	TotalProducts int
	AvgRating     float64
	TotalReviews  int
	CreatedAt     time.Time
}
