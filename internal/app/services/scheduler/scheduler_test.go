package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/alerts"
	"github.com/aakashv8900/commercesignal/internal/app/services/extractors"
	"github.com/aakashv8900/commercesignal/internal/app/storage"
)

func TestOffsetEvery_FirstRunIsTheOffsetAnchor(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sched := offsetEvery{first: start.Add(time.Hour), every: 6 * time.Hour}

	require.Equal(t, start.Add(time.Hour), sched.Next(start))
}

func TestOffsetEvery_SubsequentRunsAdvanceByInterval(t *testing.T) {
	first := time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)
	sched := offsetEvery{first: first, every: 6 * time.Hour}

	next := sched.Next(first.Add(30 * time.Minute))
	require.Equal(t, first.Add(6*time.Hour), next)
}

// fakeExtractor is a minimal Extractor stub for ingest/dispatch tests.
type fakeExtractor struct {
	platform commerce.Platform
	records  map[string]*extractors.ProductRecord
}

func (f *fakeExtractor) Platform() commerce.Platform       { return f.platform }
func (f *fakeExtractor) ExtractID(url string) (string, bool) { return url, true }
func (f *fakeExtractor) Detect(url string) bool            { return true }
func (f *fakeExtractor) ScrapeProduct(_ context.Context, url string) (*extractors.ProductRecord, error) {
	return f.records[url], nil
}
func (f *fakeExtractor) ListDiscoveryURLs(_ context.Context, _ string) ([]string, error) {
	urls := make([]string, 0, len(f.records))
	for url := range f.records {
		urls = append(urls, url)
	}
	return urls, nil
}

func TestIngestProduct_CreatesProductAndFirstMetric(t *testing.T) {
	store := storage.NewMemory()
	engine := alerts.NewEngine(store, alerts.NewSender(alerts.NewMCPQueue()))
	s := New(store, engine, nil)

	rec := &extractors.ProductRecord{
		Platform:   commerce.PlatformAmazon,
		ExternalID: "B000TEST1",
		URL:        "https://www.amazon.com/dp/B000TEST1",
		Title:      "Test Widget",
		Price:      19.99,
		InStock:    true,
	}

	metric, previous, err := s.ingestProduct(context.Background(), rec, time.Now().UTC())
	require.NoError(t, err)
	require.Nil(t, previous)
	require.Equal(t, 19.99, metric.Price)

	product, err := store.FindProductByExternalID(context.Background(), commerce.PlatformAmazon, "B000TEST1")
	require.NoError(t, err)
	require.Equal(t, "Test Widget", product.Title)
}

func TestIngestProduct_SecondScrapeReturnsPreviousMetric(t *testing.T) {
	store := storage.NewMemory()
	engine := alerts.NewEngine(store, alerts.NewSender(alerts.NewMCPQueue()))
	s := New(store, engine, nil)

	rec := &extractors.ProductRecord{
		Platform:   commerce.PlatformAmazon,
		ExternalID: "B000TEST2",
		URL:        "https://www.amazon.com/dp/B000TEST2",
		Title:      "Test Widget 2",
		Price:      50,
		InStock:    true,
	}

	now := time.Now().UTC()
	_, _, err := s.ingestProduct(context.Background(), rec, now)
	require.NoError(t, err)

	rec.Price = 40
	_, previous, err := s.ingestProduct(context.Background(), rec, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, previous)
	require.Equal(t, 50.0, previous.Price)
}

func TestRunDiscovery_IngestsEveryListedURL(t *testing.T) {
	store := storage.NewMemory()
	engine := alerts.NewEngine(store, alerts.NewSender(alerts.NewMCPQueue()))
	s := New(store, engine, nil)

	fake := &fakeExtractor{
		platform: commerce.PlatformAmazon,
		records: map[string]*extractors.ProductRecord{
			"https://www.amazon.com/dp/A1": {Platform: commerce.PlatformAmazon, ExternalID: "A1", URL: "https://www.amazon.com/dp/A1", Title: "Widget A1", Price: 10, InStock: true},
			"https://www.amazon.com/dp/A2": {Platform: commerce.PlatformAmazon, ExternalID: "A2", URL: "https://www.amazon.com/dp/A2", Title: "Widget A2", Price: 20, InStock: true},
		},
	}

	job := PlatformJob{
		Platform:         commerce.PlatformAmazon,
		Extractor:        fake,
		Categories:       []string{"Electronics"},
		LimitPerCategory: 30,
	}

	s.runDiscovery(context.Background(), job)

	products, err := store.ListProducts(context.Background(), commerce.PlatformAmazon, "")
	require.NoError(t, err)
	require.Len(t, products, 2)
}
