package storage

import (
	"context"
	"time"

	"github.com/aakashv8900/commercesignal/internal/app/domain/alert"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

// ProductStore persists the product catalog. (Platform, ExternalID) is the
// natural key; FindProductByExternalID is how the scheduler's ingest step
// avoids creating a second Product for a re-scraped URL.
type ProductStore interface {
	CreateProduct(ctx context.Context, p commerce.Product) (commerce.Product, error)
	UpdateProduct(ctx context.Context, p commerce.Product) (commerce.Product, error)
	GetProduct(ctx context.Context, id string) (commerce.Product, error)
	FindProductByExternalID(ctx context.Context, platform commerce.Platform, externalID string) (commerce.Product, error)
	ListProducts(ctx context.Context, platform commerce.Platform, category string) ([]commerce.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// DailyMetricStore persists the append-only per-product metric series.
type DailyMetricStore interface {
	CreateDailyMetric(ctx context.Context, m commerce.DailyMetric) (commerce.DailyMetric, error)
	GetDailyMetric(ctx context.Context, productID string, date time.Time) (commerce.DailyMetric, error)
	ListDailyMetrics(ctx context.Context, productID string) ([]commerce.DailyMetric, error)
	LatestDailyMetric(ctx context.Context, productID string) (commerce.DailyMetric, error)
	DeleteDailyMetricsForProduct(ctx context.Context, productID string) error
}

// BrandStore persists the brand catalog, unique per (platform, slug).
type BrandStore interface {
	CreateBrand(ctx context.Context, b commerce.Brand) (commerce.Brand, error)
	UpdateBrand(ctx context.Context, b commerce.Brand) (commerce.Brand, error)
	GetBrand(ctx context.Context, id string) (commerce.Brand, error)
	FindBrandBySlug(ctx context.Context, platform commerce.Platform, slug string) (commerce.Brand, error)
	ListBrands(ctx context.Context, platform commerce.Platform) ([]commerce.Brand, error)
	DeleteBrand(ctx context.Context, id string) error
}

// BrandMetricStore persists the append-only per-brand metric aggregate.
type BrandMetricStore interface {
	CreateBrandMetric(ctx context.Context, m commerce.BrandMetric) (commerce.BrandMetric, error)
	ListBrandMetrics(ctx context.Context, brandID string) ([]commerce.BrandMetric, error)
	LatestBrandMetric(ctx context.Context, brandID string) (commerce.BrandMetric, error)
	DeleteBrandMetricsForBrand(ctx context.Context, brandID string) error
}

// SellerStore persists the supplemental seller entity.
type SellerStore interface {
	CreateSeller(ctx context.Context, s commerce.Seller) (commerce.Seller, error)
	GetSeller(ctx context.Context, id string) (commerce.Seller, error)
	FindSellerByExternalID(ctx context.Context, platform commerce.Platform, externalID string) (commerce.Seller, error)
	ListSellers(ctx context.Context, platform commerce.Platform) ([]commerce.Seller, error)
}

// SellerMetricStore persists the append-only per-seller metric rollup.
type SellerMetricStore interface {
	CreateSellerMetric(ctx context.Context, m commerce.SellerMetric) (commerce.SellerMetric, error)
	ListSellerMetrics(ctx context.Context, sellerID string) ([]commerce.SellerMetric, error)
}

// AlertSubscriptionStore persists alert subscriptions.
type AlertSubscriptionStore interface {
	CreateAlertSubscription(ctx context.Context, s alert.Subscription) (alert.Subscription, error)
	UpdateAlertSubscription(ctx context.Context, s alert.Subscription) (alert.Subscription, error)
	GetAlertSubscription(ctx context.Context, id string) (alert.Subscription, error)
	ListAlertSubscriptions(ctx context.Context, userID string) ([]alert.Subscription, error)
	ListActiveAlertSubscriptionsForProduct(ctx context.Context, productID string) ([]alert.Subscription, error)
	DeleteAlertSubscription(ctx context.Context, id string) error
}

// AlertEventStore persists the append-only alert event log.
type AlertEventStore interface {
	CreateAlertEvent(ctx context.Context, e alert.Event) (alert.Event, error)
	GetAlertEvent(ctx context.Context, id string) (alert.Event, error)
	ListAlertEvents(ctx context.Context, subscriptionID string) ([]alert.Event, error)
	CountAlertEventsSince(ctx context.Context, subscriptionID string, since time.Time) (int, error)
	AcknowledgeAlertEvent(ctx context.Context, id string) error
	DeleteAlertEventsForSubscription(ctx context.Context, subscriptionID string) error
}

// Store aggregates every narrow store interface the pipeline depends on.
// Concrete implementations (e.g. Memory) satisfy all of them.
type Store interface {
	ProductStore
	DailyMetricStore
	BrandStore
	BrandMetricStore
	SellerStore
	SellerMetricStore
	AlertSubscriptionStore
	AlertEventStore
}
