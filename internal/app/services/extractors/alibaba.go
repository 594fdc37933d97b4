package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	svcerrors "github.com/aakashv8900/commercesignal/infrastructure/errors"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/scraping"
)

var alibabaIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/item/(\d+)\.html`),
	regexp.MustCompile(`/product-detail/[^/]+_(\d+)\.html`),
	regexp.MustCompile(`productId=(\d+)`),
	regexp.MustCompile(`/(\d+)\.html`),
}

var aliexpressSelectors = struct {
	title, altTitle, price, altPrice, rating, reviews, orders, store, image string
}{
	title:    `h1[data-pl="product-title"]`,
	altTitle: ".product-title-text",
	price:    `[data-pl="product-price"]`,
	altPrice: ".product-price-value",
	rating:   ".overview-rating-average",
	reviews:  `[data-pl="review-count"]`,
	orders:   `[data-pl="sold-count"]`,
	store:    ".store-name",
	image:    ".magnifier-image img",
}

var alibabaB2BSelectors = struct {
	title, altTitle, price, moq, supplier, location, tradeAssurance, image string
}{
	title:          ".module-pdp-title h1",
	altTitle:       ".ma-title",
	price:          ".module-pdp-price",
	moq:            ".module-pdp-moq",
	supplier:       ".company-name",
	location:       ".company-location",
	tradeAssurance: ".trade-assurance-icon",
	image:          ".main-image img",
}

const alibabaDefaultDeliveryDays = 14

// Alibaba implements Extractor for both alibaba.com (B2B wholesale) and
// aliexpress.com (retail) product pages, dispatching on host. Neither
// exposes a bestseller rank; discovery (category browsing) is not
// supported, since both sites gate category listings behind interactive
// search/filters the substrate cannot drive headlessly.
type Alibaba struct {
	substrate *scraping.Substrate
}

func NewAlibaba(substrate *scraping.Substrate) *Alibaba { return &Alibaba{substrate: substrate} }

// Platform returns the B2B wholesale platform identifier. Use PlatformFor
// to resolve the identifier for a specific URL, since a single Alibaba
// extractor instance serves both alibaba.com and aliexpress.com.
func (a *Alibaba) Platform() commerce.Platform { return commerce.PlatformAlibaba }

// PlatformFor resolves the platform identifier for a given URL, since a
// single Alibaba extractor instance serves both alibaba.com (B2B) and
// aliexpress.com (retail) hosts.
func PlatformFor(url string) commerce.Platform {
	if isAliexpress(url) {
		return commerce.PlatformAliExpress
	}
	return commerce.PlatformAlibaba
}

func (a *Alibaba) ExtractID(url string) (string, bool) {
	for _, pattern := range alibabaIDPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func (a *Alibaba) Detect(url string) bool {
	if !strings.Contains(url, "alibaba.com") && !strings.Contains(url, "aliexpress.com") {
		return false
	}
	_, ok := a.ExtractID(url)
	return ok
}

func isAliexpress(url string) bool {
	return strings.Contains(strings.ToLower(url), "aliexpress")
}

func (a *Alibaba) ScrapeProduct(ctx context.Context, url string) (*ProductRecord, error) {
	externalID, ok := a.ExtractID(url)
	if !ok {
		return nil, svcerrors.UnsupportedURL(url)
	}

	platform := PlatformFor(url)
	html, effectiveURL, err := a.substrate.FetchWithRetry(ctx, string(platform), url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("alibaba", "document", err)
	}

	if platform == commerce.PlatformAliExpress {
		return scrapeAliexpress(doc, externalID, effectiveURL)
	}
	return scrapeAlibabaB2B(doc, externalID, effectiveURL)
}

func scrapeAliexpress(doc *goquery.Document, externalID, url string) (*ProductRecord, error) {
	title := strings.TrimSpace(doc.Find(aliexpressSelectors.title).First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(aliexpressSelectors.altTitle).First().Text())
	}
	if title == "" {
		return nil, svcerrors.ExtractionFailed("alibaba", "title", nil)
	}

	price, hasPrice := parsePrice(doc.Find(aliexpressSelectors.price).First().Text())
	if !hasPrice {
		price, hasPrice = parsePrice(doc.Find(aliexpressSelectors.altPrice).First().Text())
	}
	if !hasPrice {
		return nil, svcerrors.ExtractionFailed("alibaba", "price", nil)
	}

	deliveryDays := alibabaDefaultDeliveryDays
	reviews := parseReviewCount(doc.Find(aliexpressSelectors.reviews).First().Text())
	orders := parseReviewCount(doc.Find(aliexpressSelectors.orders).First().Text())

	return &ProductRecord{
		Platform:     commerce.PlatformAliExpress,
		ExternalID:   externalID,
		URL:          url,
		Title:        title,
		Price:        price,
		Category:     "General",
		ImageURL:     attrOrEmpty(doc.Find(aliexpressSelectors.image).First(), "src"),
		InStock:      true,
		Rank:         nil,
		Rating:       parseRating(doc.Find(aliexpressSelectors.rating).First().Text()),
		Reviews:      reviews + orders, // orders combined into reviews as a demand proxy
		SellerCount:  1,
		DeliveryDays: &deliveryDays,
		BuyboxOwner:  strings.TrimSpace(doc.Find(aliexpressSelectors.store).First().Text()),
	}, nil
}

func scrapeAlibabaB2B(doc *goquery.Document, externalID, url string) (*ProductRecord, error) {
	title := strings.TrimSpace(doc.Find(alibabaB2BSelectors.title).First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(alibabaB2BSelectors.altTitle).First().Text())
	}
	if title == "" {
		return nil, svcerrors.ExtractionFailed("alibaba", "title", nil)
	}

	price, hasPrice := parsePrice(doc.Find(alibabaB2BSelectors.price).First().Text())
	if !hasPrice {
		return nil, svcerrors.ExtractionFailed("alibaba", "price", nil)
	}

	deliveryDays := alibabaDefaultDeliveryDays
	supplier := strings.TrimSpace(doc.Find(alibabaB2BSelectors.supplier).First().Text())

	return &ProductRecord{
		Platform:     commerce.PlatformAlibaba,
		ExternalID:   externalID,
		URL:          url,
		Title:        title,
		Price:        price,
		Category:     "General",
		ImageURL:     attrOrEmpty(doc.Find(alibabaB2BSelectors.image).First(), "src"),
		InStock:      true,
		Rank:         nil,
		Rating:       0, // B2B listings typically show no rating
		Reviews:      0,
		SellerCount:  1,
		DeliveryDays: &deliveryDays,
		BuyboxOwner:  supplier,
	}, nil
}

// ListDiscoveryURLs is unsupported for Alibaba/AliExpress: neither site
// exposes a static, crawlable category listing the substrate can page
// through without interactive search.
func (a *Alibaba) ListDiscoveryURLs(ctx context.Context, category string) ([]string, error) {
	return nil, svcerrors.UnsupportedURL(category)
}
