// Package extractors implements the six platform-specific extractors sharing
// a common contract over the scraping substrate.
package extractors

import (
	"context"
	"regexp"
	"strconv"

	"github.com/aakashv8900/commercesignal/infrastructure/utils"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/scraping"
)

// ProductRecord is the normalized union of Product + latest DailyMetric
// fields that every extractor emits.
type ProductRecord struct {
	Platform        commerce.Platform
	ExternalID      string
	URL             string
	Title           string
	Category        string
	Brand           string
	ImageURL        string
	Price           float64
	OriginalPrice   *float64
	DiscountPercent *float64
	Rank            *int
	Reviews         int
	Rating          float64
	SellerCount     int
	InStock         bool
	DeliveryDays    *int
	BuyboxOwner     string
}

// Extractor is the shared contract every platform implementation satisfies.
type Extractor interface {
	Platform() commerce.Platform
	ExtractID(url string) (string, bool)
	Detect(url string) bool
	ScrapeProduct(ctx context.Context, url string) (*ProductRecord, error)
	ListDiscoveryURLs(ctx context.Context, category string) ([]string, error)
}

const maxDiscoveryURLs = 100

func capDiscovery(urls []string) []string {
	if len(urls) > maxDiscoveryURLs {
		return urls[:maxDiscoveryURLs]
	}
	return urls
}

func dedup(urls []string) []string {
	return utils.Unique(urls)
}

// Dispatcher detects the right extractor for a URL and fans requests out.
type Dispatcher struct {
	extractors []Extractor
}

// NewDispatcher builds a dispatcher over the given extractors, tried in
// order.
func NewDispatcher(extractors ...Extractor) *Dispatcher {
	return &Dispatcher{extractors: extractors}
}

// For returns the extractor that claims the given URL, if any.
func (d *Dispatcher) For(url string) (Extractor, bool) {
	for _, e := range d.extractors {
		if e.Detect(url) {
			return e, true
		}
	}
	return nil, false
}

var nonDigits = regexp.MustCompile(`[^0-9.]`)

// parsePrice strips currency symbols/commas and parses the remaining
// numeric text; returns ok=false when nothing numeric is present.
func parsePrice(raw string) (float64, bool) {
	cleaned := nonDigits.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

