package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aakashv8900/commercesignal/internal/app/domain/alert"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	svcerrors "github.com/aakashv8900/commercesignal/infrastructure/errors"
)

// Memory is a thread-safe in-memory persistence layer implementing the
// storage interfaces defined in this package. It is intended for tests and
// for single-process deployments; cascade-delete semantics (Product ->
// DailyMetric, Brand -> BrandMetric, AlertSubscription -> AlertEvent) are
// enforced here rather than by a foreign-key constraint.
type Memory struct {
	mu     sync.RWMutex
	nextID int64

	products      map[string]commerce.Product
	dailyMetrics  map[string]commerce.DailyMetric // keyed by metric ID
	brands        map[string]commerce.Brand
	brandMetrics  map[string]commerce.BrandMetric
	sellers       map[string]commerce.Seller
	sellerMetrics map[string]commerce.SellerMetric

	subscriptions map[string]alert.Subscription
	events        map[string]alert.Event
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextID:        1,
		products:      make(map[string]commerce.Product),
		dailyMetrics:  make(map[string]commerce.DailyMetric),
		brands:        make(map[string]commerce.Brand),
		brandMetrics:  make(map[string]commerce.BrandMetric),
		sellers:       make(map[string]commerce.Seller),
		sellerMetrics: make(map[string]commerce.SellerMetric),
		subscriptions: make(map[string]alert.Subscription),
		events:        make(map[string]alert.Event),
	}
}

func (m *Memory) nextIDLocked() string {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("%d", id)
}

func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Product store ---------------------------------------------------------------

func (m *Memory) CreateProduct(_ context.Context, p commerce.Product) (commerce.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.products {
		if existing.Platform == p.Platform && existing.ExternalID == p.ExternalID {
			return commerce.Product{}, svcerrors.AlreadyExists("product", p.ExternalID)
		}
	}

	if p.ID == "" {
		p.ID = m.nextIDLocked()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) UpdateProduct(_ context.Context, p commerce.Product) (commerce.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[p.ID]
	if !ok {
		return commerce.Product{}, svcerrors.NotFound("product", p.ID)
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (commerce.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return commerce.Product{}, svcerrors.NotFound("product", id)
	}
	return p, nil
}

func (m *Memory) FindProductByExternalID(_ context.Context, platform commerce.Platform, externalID string) (commerce.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.Platform == platform && p.ExternalID == externalID {
			return p, nil
		}
	}
	return commerce.Product{}, svcerrors.NotFound("product", externalID)
}

func (m *Memory) ListProducts(_ context.Context, platform commerce.Platform, category string) ([]commerce.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []commerce.Product
	for _, p := range m.products {
		if platform != "" && p.Platform != platform {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return svcerrors.NotFound("product", id)
	}
	delete(m.products, id)
	for metricID, dm := range m.dailyMetrics {
		if dm.ProductID == id {
			delete(m.dailyMetrics, metricID)
		}
	}
	return nil
}

// DailyMetric store -------------------------------------------------------------

func (m *Memory) CreateDailyMetric(_ context.Context, dm commerce.DailyMetric) (commerce.DailyMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[dm.ProductID]; !ok {
		return commerce.DailyMetric{}, svcerrors.NotFound("product", dm.ProductID)
	}
	dm.Date = dayKey(dm.Date)
	for _, existing := range m.dailyMetrics {
		if existing.ProductID == dm.ProductID && existing.Date.Equal(dm.Date) {
			return commerce.DailyMetric{}, svcerrors.AlreadyExists("daily_metric", fmt.Sprintf("%s@%s", dm.ProductID, dm.Date.Format("2006-01-02")))
		}
	}

	dm.Normalize()
	if dm.ID == "" {
		dm.ID = m.nextIDLocked()
	}
	dm.CreatedAt = time.Now().UTC()
	m.dailyMetrics[dm.ID] = dm
	return dm, nil
}

func (m *Memory) GetDailyMetric(_ context.Context, productID string, date time.Time) (commerce.DailyMetric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := dayKey(date)
	for _, dm := range m.dailyMetrics {
		if dm.ProductID == productID && dm.Date.Equal(want) {
			return dm, nil
		}
	}
	return commerce.DailyMetric{}, svcerrors.NotFound("daily_metric", productID)
}

func (m *Memory) ListDailyMetrics(_ context.Context, productID string) ([]commerce.DailyMetric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []commerce.DailyMetric
	for _, dm := range m.dailyMetrics {
		if dm.ProductID == productID {
			out = append(out, dm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) LatestDailyMetric(ctx context.Context, productID string) (commerce.DailyMetric, error) {
	metrics, err := m.ListDailyMetrics(ctx, productID)
	if err != nil {
		return commerce.DailyMetric{}, err
	}
	if len(metrics) == 0 {
		return commerce.DailyMetric{}, svcerrors.NotFound("daily_metric", productID)
	}
	return metrics[len(metrics)-1], nil
}

func (m *Memory) DeleteDailyMetricsForProduct(_ context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, dm := range m.dailyMetrics {
		if dm.ProductID == productID {
			delete(m.dailyMetrics, id)
		}
	}
	return nil
}

// Brand store -------------------------------------------------------------------

func (m *Memory) CreateBrand(_ context.Context, b commerce.Brand) (commerce.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.brands {
		if existing.Platform == b.Platform && existing.Slug == b.Slug {
			return commerce.Brand{}, svcerrors.AlreadyExists("brand", b.Slug)
		}
	}
	if b.ID == "" {
		b.ID = m.nextIDLocked()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	m.brands[b.ID] = b
	return b, nil
}

func (m *Memory) UpdateBrand(_ context.Context, b commerce.Brand) (commerce.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.brands[b.ID]
	if !ok {
		return commerce.Brand{}, svcerrors.NotFound("brand", b.ID)
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	m.brands[b.ID] = b
	return b, nil
}

func (m *Memory) GetBrand(_ context.Context, id string) (commerce.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.brands[id]
	if !ok {
		return commerce.Brand{}, svcerrors.NotFound("brand", id)
	}
	return b, nil
}

func (m *Memory) FindBrandBySlug(_ context.Context, platform commerce.Platform, slug string) (commerce.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.brands {
		if b.Platform == platform && b.Slug == slug {
			return b, nil
		}
	}
	return commerce.Brand{}, svcerrors.NotFound("brand", slug)
}

func (m *Memory) ListBrands(_ context.Context, platform commerce.Platform) ([]commerce.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []commerce.Brand
	for _, b := range m.brands {
		if platform != "" && b.Platform != platform {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteBrand(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.brands[id]; !ok {
		return svcerrors.NotFound("brand", id)
	}
	delete(m.brands, id)
	for metricID, bm := range m.brandMetrics {
		if bm.BrandID == id {
			delete(m.brandMetrics, metricID)
		}
	}
	return nil
}

// BrandMetric store ---------------------------------------------------------------

func (m *Memory) CreateBrandMetric(_ context.Context, bm commerce.BrandMetric) (commerce.BrandMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.brands[bm.BrandID]; !ok {
		return commerce.BrandMetric{}, svcerrors.NotFound("brand", bm.BrandID)
	}
	if bm.MarketSharePercent < 0 {
		bm.MarketSharePercent = 0
	} else if bm.MarketSharePercent > 100 {
		bm.MarketSharePercent = 100
	}
	bm.Date = dayKey(bm.Date)
	if bm.ID == "" {
		bm.ID = m.nextIDLocked()
	}
	bm.CreatedAt = time.Now().UTC()
	m.brandMetrics[bm.ID] = bm
	return bm, nil
}

func (m *Memory) ListBrandMetrics(_ context.Context, brandID string) ([]commerce.BrandMetric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []commerce.BrandMetric
	for _, bm := range m.brandMetrics {
		if bm.BrandID == brandID {
			out = append(out, bm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) LatestBrandMetric(ctx context.Context, brandID string) (commerce.BrandMetric, error) {
	metrics, err := m.ListBrandMetrics(ctx, brandID)
	if err != nil {
		return commerce.BrandMetric{}, err
	}
	if len(metrics) == 0 {
		return commerce.BrandMetric{}, svcerrors.NotFound("brand_metric", brandID)
	}
	return metrics[len(metrics)-1], nil
}

func (m *Memory) DeleteBrandMetricsForBrand(_ context.Context, brandID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, bm := range m.brandMetrics {
		if bm.BrandID == brandID {
			delete(m.brandMetrics, id)
		}
	}
	return nil
}

// Seller store --------------------------------------------------------------------

func (m *Memory) CreateSeller(_ context.Context, s commerce.Seller) (commerce.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.sellers {
		if existing.Platform == s.Platform && existing.ExternalID == s.ExternalID {
			return commerce.Seller{}, svcerrors.AlreadyExists("seller", s.ExternalID)
		}
	}
	if s.ID == "" {
		s.ID = m.nextIDLocked()
	}
	s.CreatedAt = time.Now().UTC()
	m.sellers[s.ID] = s
	return s, nil
}

func (m *Memory) GetSeller(_ context.Context, id string) (commerce.Seller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sellers[id]
	if !ok {
		return commerce.Seller{}, svcerrors.NotFound("seller", id)
	}
	return s, nil
}

func (m *Memory) FindSellerByExternalID(_ context.Context, platform commerce.Platform, externalID string) (commerce.Seller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sellers {
		if s.Platform == platform && s.ExternalID == externalID {
			return s, nil
		}
	}
	return commerce.Seller{}, svcerrors.NotFound("seller", externalID)
}

func (m *Memory) ListSellers(_ context.Context, platform commerce.Platform) ([]commerce.Seller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []commerce.Seller
	for _, s := range m.sellers {
		if platform != "" && s.Platform != platform {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SellerMetric store --------------------------------------------------------------

func (m *Memory) CreateSellerMetric(_ context.Context, sm commerce.SellerMetric) (commerce.SellerMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sellers[sm.SellerID]; !ok {
		return commerce.SellerMetric{}, svcerrors.NotFound("seller", sm.SellerID)
	}
	sm.Date = dayKey(sm.Date)
	if sm.ID == "" {
		sm.ID = m.nextIDLocked()
	}
	sm.CreatedAt = time.Now().UTC()
	m.sellerMetrics[sm.ID] = sm
	return sm, nil
}

func (m *Memory) ListSellerMetrics(_ context.Context, sellerID string) ([]commerce.SellerMetric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []commerce.SellerMetric
	for _, sm := range m.sellerMetrics {
		if sm.SellerID == sellerID {
			out = append(out, sm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// AlertSubscription store ----------------------------------------------------------

func (m *Memory) CreateAlertSubscription(_ context.Context, s alert.Subscription) (alert.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = m.nextIDLocked()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.subscriptions[s.ID] = s
	return s, nil
}

func (m *Memory) UpdateAlertSubscription(_ context.Context, s alert.Subscription) (alert.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.subscriptions[s.ID]
	if !ok {
		return alert.Subscription{}, svcerrors.NotFound("alert_subscription", s.ID)
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	m.subscriptions[s.ID] = s
	return s, nil
}

func (m *Memory) GetAlertSubscription(_ context.Context, id string) (alert.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subscriptions[id]
	if !ok {
		return alert.Subscription{}, svcerrors.NotFound("alert_subscription", id)
	}
	return s, nil
}

func (m *Memory) ListAlertSubscriptions(_ context.Context, userID string) ([]alert.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []alert.Subscription
	for _, s := range m.subscriptions {
		if userID != "" && s.UserID != userID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListActiveAlertSubscriptionsForProduct(_ context.Context, productID string) ([]alert.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []alert.Subscription
	for _, s := range m.subscriptions {
		if !s.IsActive {
			continue
		}
		if s.ProductID != productID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteAlertSubscription(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subscriptions[id]; !ok {
		return svcerrors.NotFound("alert_subscription", id)
	}
	delete(m.subscriptions, id)
	for eventID, e := range m.events {
		if e.SubscriptionID == id {
			delete(m.events, eventID)
		}
	}
	return nil
}

// AlertEvent store ------------------------------------------------------------------

func (m *Memory) CreateAlertEvent(_ context.Context, e alert.Event) (alert.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subscriptions[e.SubscriptionID]; !ok {
		return alert.Event{}, svcerrors.NotFound("alert_subscription", e.SubscriptionID)
	}
	if e.ID == "" {
		e.ID = m.nextIDLocked()
	}
	if e.TriggeredAt.IsZero() {
		e.TriggeredAt = time.Now().UTC()
	}
	e.EventData = copyAnyMap(e.EventData)
	m.events[e.ID] = e
	return e, nil
}

func (m *Memory) GetAlertEvent(_ context.Context, id string) (alert.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[id]
	if !ok {
		return alert.Event{}, svcerrors.NotFound("alert_event", id)
	}
	return e, nil
}

func (m *Memory) ListAlertEvents(_ context.Context, subscriptionID string) ([]alert.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []alert.Event
	for _, e := range m.events {
		if e.SubscriptionID == subscriptionID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.Before(out[j].TriggeredAt) })
	return out, nil
}

func (m *Memory) CountAlertEventsSince(_ context.Context, subscriptionID string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, e := range m.events {
		if e.SubscriptionID == subscriptionID && e.TriggeredAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) AcknowledgeAlertEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return svcerrors.NotFound("alert_event", id)
	}
	e.Acknowledged = true
	m.events[id] = e
	return nil
}

func (m *Memory) DeleteAlertEventsForSubscription(_ context.Context, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.events {
		if e.SubscriptionID == subscriptionID {
			delete(m.events, id)
		}
	}
	return nil
}

// Helpers ---------------------------------------------------------------------

func copyAnyMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

var _ Store = (*Memory)(nil)
