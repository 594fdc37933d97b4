package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aakashv8900/commercesignal/internal/app/domain/alert"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

func TestMemory_ProductUniqueExternalID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p, err := m.CreateProduct(ctx, commerce.Product{Platform: commerce.PlatformAmazon, ExternalID: "B000111222", Title: "Widget"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	_, err = m.CreateProduct(ctx, commerce.Product{Platform: commerce.PlatformAmazon, ExternalID: "B000111222", Title: "Widget dup"})
	require.Error(t, err)

	found, err := m.FindProductByExternalID(ctx, commerce.PlatformAmazon, "B000111222")
	require.NoError(t, err)
	require.Equal(t, p.ID, found.ID)
}

func TestMemory_DeleteProductCascadesDailyMetrics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p, err := m.CreateProduct(ctx, commerce.Product{Platform: commerce.PlatformEbay, ExternalID: "123456", Title: "Thing"})
	require.NoError(t, err)

	_, err = m.CreateDailyMetric(ctx, commerce.DailyMetric{ProductID: p.ID, Date: time.Now(), Price: 10, Reviews: 5, Rating: 4.5})
	require.NoError(t, err)

	metrics, err := m.ListDailyMetrics(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 1)

	require.NoError(t, m.DeleteProduct(ctx, p.ID))

	metrics, err = m.ListDailyMetrics(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, metrics)
}

func TestMemory_DailyMetricNormalizesDiscount(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p, err := m.CreateProduct(ctx, commerce.Product{Platform: commerce.PlatformFlipkart, ExternalID: "FLIP1", Title: "Gadget"})
	require.NoError(t, err)

	orig := 100.0
	dm, err := m.CreateDailyMetric(ctx, commerce.DailyMetric{ProductID: p.ID, Date: time.Now(), Price: 80, OriginalPrice: &orig, Reviews: 1, Rating: 3})
	require.NoError(t, err)
	require.NotNil(t, dm.DiscountPercent)
	require.InDelta(t, 20.0, *dm.DiscountPercent, 0.001)
}

func TestMemory_DailyMetricUniquePerProductPerDay(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p, err := m.CreateProduct(ctx, commerce.Product{Platform: commerce.PlatformWalmart, ExternalID: "W1", Title: "Item"})
	require.NoError(t, err)

	day := time.Now()
	_, err = m.CreateDailyMetric(ctx, commerce.DailyMetric{ProductID: p.ID, Date: day, Price: 5, Reviews: 1, Rating: 4})
	require.NoError(t, err)

	_, err = m.CreateDailyMetric(ctx, commerce.DailyMetric{ProductID: p.ID, Date: day, Price: 6, Reviews: 1, Rating: 4})
	require.Error(t, err)
}

func TestMemory_DeleteBrandCascadesBrandMetrics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	b, err := m.CreateBrand(ctx, commerce.Brand{Platform: commerce.PlatformAmazon, Slug: "acme", Name: "Acme"})
	require.NoError(t, err)

	_, err = m.CreateBrandMetric(ctx, commerce.BrandMetric{BrandID: b.ID, Date: time.Now(), MarketSharePercent: 150})
	require.NoError(t, err)

	metrics, err := m.ListBrandMetrics(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	require.Equal(t, 100.0, metrics[0].MarketSharePercent)

	require.NoError(t, m.DeleteBrand(ctx, b.ID))
	metrics, err = m.ListBrandMetrics(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, metrics)
}

func TestMemory_DeleteAlertSubscriptionCascadesEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sub, err := m.CreateAlertSubscription(ctx, alert.Subscription{UserID: "u1", AlertType: alert.TypePriceDrop, IsActive: true})
	require.NoError(t, err)

	_, err = m.CreateAlertEvent(ctx, alert.Event{SubscriptionID: sub.ID, EventType: "price_below_threshold"})
	require.NoError(t, err)

	events, err := m.ListAlertEvents(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, m.DeleteAlertSubscription(ctx, sub.ID))
	events, err = m.ListAlertEvents(ctx, sub.ID)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestMemory_AlertEventRequiresExistingSubscription(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.CreateAlertEvent(ctx, alert.Event{SubscriptionID: "does-not-exist"})
	require.Error(t, err)
}

func TestMemory_CountAlertEventsSince(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sub, err := m.CreateAlertSubscription(ctx, alert.Subscription{UserID: "u1", AlertType: alert.TypeStockout, IsActive: true})
	require.NoError(t, err)

	_, err = m.CreateAlertEvent(ctx, alert.Event{SubscriptionID: sub.ID, EventType: "stockout"})
	require.NoError(t, err)

	count, err := m.CountAlertEventsSince(ctx, sub.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = m.CountAlertEventsSince(ctx, sub.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
