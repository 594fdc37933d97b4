package extractors

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	svcerrors "github.com/aakashv8900/commercesignal/infrastructure/errors"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/scraping"
)

var walmartIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/ip/[^/]+/(\d+)`),
	regexp.MustCompile(`/ip/(\d+)`),
	regexp.MustCompile(`[?&]irgwc=(\d+)`),
}

var walmartSelectors = struct {
	title, price, rating, reviews, brand, image, category, addToCart, seller string
}{
	title:     `h1[itemprop="name"], [data-testid="product-title"]`,
	price:     `[itemprop="price"], [data-testid="price-wrap"] span`,
	rating:    `[itemprop="ratingValue"]`,
	reviews:   `[itemprop="reviewCount"]`,
	brand:     `[itemprop="brand"]`,
	image:     `[data-testid="hero-image"] img`,
	category:  `[data-testid="breadcrumb"] li:nth-child(2) a`,
	addToCart: `[data-testid="add-to-cart-btn"]`,
	seller:    `[data-testid="sold-shipped-by"] span`,
}

var walmartCategoryPaths = map[string]string{
	"Electronics":      "/browse/electronics/3944",
	"Home":             "/browse/home/4044",
	"Toys":             "/browse/toys/4171",
	"Clothing":         "/browse/clothing/5438",
	"Sports & Outdoors": "/browse/sports-outdoors/4125",
	"Beauty":           "/browse/beauty/1085666",
	"Grocery":          "/browse/food/976759",
	"Baby":             "/browse/baby/5427",
	"Pets":             "/browse/pets/5440",
	"Auto":             "/browse/auto-tires/91083",
}

const walmartDefaultDeliveryDays = 2

// Walmart implements Extractor for walmart.com product pages. Walmart does
// not expose a bestseller rank, so Rank is always left nil.
type Walmart struct {
	substrate *scraping.Substrate
}

func NewWalmart(substrate *scraping.Substrate) *Walmart { return &Walmart{substrate: substrate} }

func (w *Walmart) Platform() commerce.Platform { return commerce.PlatformWalmart }

func (w *Walmart) ExtractID(url string) (string, bool) {
	for _, pattern := range walmartIDPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func (w *Walmart) Detect(url string) bool {
	return strings.Contains(url, "walmart.com") && strings.Contains(url, "/ip/")
}

func (w *Walmart) ScrapeProduct(ctx context.Context, url string) (*ProductRecord, error) {
	externalID, ok := w.ExtractID(url)
	if !ok {
		return nil, svcerrors.UnsupportedURL(url)
	}

	html, effectiveURL, err := w.substrate.FetchWithRetry(ctx, string(commerce.PlatformWalmart), url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("walmart", "document", err)
	}

	title := strings.TrimSpace(doc.Find(walmartSelectors.title).First().Text())
	if title == "" {
		return nil, svcerrors.ExtractionFailed("walmart", "title", nil)
	}

	price, hasPrice := parsePrice(doc.Find(walmartSelectors.price).First().Text())
	if !hasPrice {
		return nil, svcerrors.ExtractionFailed("walmart", "price", nil)
	}

	deliveryDays := walmartDefaultDeliveryDays
	seller := strings.TrimSpace(doc.Find(walmartSelectors.seller).First().Text())
	fulfillment := "Marketplace"
	if strings.Contains(seller, "Walmart") {
		fulfillment = "Walmart"
	}

	record := &ProductRecord{
		Platform:     commerce.PlatformWalmart,
		ExternalID:   externalID,
		URL:          effectiveURL,
		Title:        title,
		Price:        price,
		Category:     strings.TrimSpace(doc.Find(walmartSelectors.category).First().Text()),
		Brand:        strings.TrimSpace(doc.Find(walmartSelectors.brand).First().Text()),
		ImageURL:     attrOrEmpty(doc.Find(walmartSelectors.image).First(), "src"),
		InStock:      doc.Find(walmartSelectors.addToCart).Length() > 0,
		Rank:         nil,
		SellerCount:  1,
		DeliveryDays: &deliveryDays,
		BuyboxOwner:  fulfillment,
	}
	if record.Category == "" {
		record.Category = "General"
	}

	record.Rating = parseRating(doc.Find(walmartSelectors.rating).First().Text())
	record.Reviews = parseReviewCount(doc.Find(walmartSelectors.reviews).First().Text())

	return record, nil
}

func (w *Walmart) ListDiscoveryURLs(ctx context.Context, category string) ([]string, error) {
	path, ok := walmartCategoryPaths[category]
	if !ok {
		path = walmartCategoryPaths["Electronics"]
	}
	seed := fmt.Sprintf("https://www.walmart.com%s?sort=best_seller", path)

	html, _, err := w.substrate.FetchWithRetry(ctx, string(commerce.PlatformWalmart), seed)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("walmart", "document", err)
	}

	var urls []string
	doc.Find(`[data-testid="product-tile"] a`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/ip/") {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://www.walmart.com" + href
		}
		urls = append(urls, href)
	})
	return capDiscovery(dedup(urls)), nil
}
