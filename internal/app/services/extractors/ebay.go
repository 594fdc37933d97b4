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

var ebayIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/itm/(\d+)`),
	regexp.MustCompile(`/itm/[^/]+/(\d+)`),
	regexp.MustCompile(`item=(\d+)`),
}

var ebaySelectors = struct {
	title, altTitle, price, altPrice, auctionBids, bestOffer, sold, image, category, outOfStock string
}{
	title:       "h1.x-item-title__mainTitle span",
	altTitle:    "#itemTitle",
	price:       ".x-price-primary span",
	altPrice:    "#prcIsum",
	auctionBids: ".x-bid-count",
	bestOffer:   `[data-testid="x-best-offer"]`,
	sold:        ".x-quantity__availability span",
	image:       ".ux-image-carousel-item img",
	category:    "nav.breadcrumbs li:nth-child(2) a span",
	outOfStock:  ".d-quantity__availability--out-of-stock",
}

var ebayCategoryPaths = map[string]string{
	"Electronics":    "/b/Electronics/bn_7000259124",
	"Computers":      "/b/Computers-Tablets-Network-Hardware/58058",
	"Cell Phones":    "/b/Cell-Phones-Smart-Watches-Accessories/15032",
	"Clothing":       "/b/Clothing-Shoes-Accessories/11450",
	"Home & Garden":  "/b/Home-Garden/11700",
	"Sporting Goods": "/b/Sporting-Goods/888",
	"Toys & Hobbies": "/b/Toys-Hobbies/220",
	"Collectibles":   "/b/Collectibles/1",
	"Motors":         "/b/eBay-Motors/6000",
	"Jewelry":        "/b/Jewelry-Watches/281",
}

const ebayDefaultDeliveryDays = 5

// Ebay implements Extractor for ebay.com listings. eBay exposes no
// bestseller rank and no product rating; listing type (auction,
// fixed_price, best_offer) is recorded in BuyboxOwner since eBay has no
// single buybox owner concept.
type Ebay struct {
	substrate *scraping.Substrate
}

func NewEbay(substrate *scraping.Substrate) *Ebay { return &Ebay{substrate: substrate} }

func (e *Ebay) Platform() commerce.Platform { return commerce.PlatformEbay }

func (e *Ebay) ExtractID(url string) (string, bool) {
	for _, pattern := range ebayIDPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func (e *Ebay) Detect(url string) bool {
	return strings.Contains(url, "ebay.com") && strings.Contains(url, "/itm/")
}

func (e *Ebay) ScrapeProduct(ctx context.Context, url string) (*ProductRecord, error) {
	externalID, ok := e.ExtractID(url)
	if !ok {
		return nil, svcerrors.UnsupportedURL(url)
	}

	html, effectiveURL, err := e.substrate.FetchWithRetry(ctx, string(commerce.PlatformEbay), url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("ebay", "document", err)
	}

	title := strings.TrimSpace(doc.Find(ebaySelectors.title).First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(ebaySelectors.altTitle).First().Text())
	}
	if title == "" {
		return nil, svcerrors.ExtractionFailed("ebay", "title", nil)
	}

	price, hasPrice := parsePrice(doc.Find(ebaySelectors.price).First().Text())
	if !hasPrice {
		price, hasPrice = parsePrice(doc.Find(ebaySelectors.altPrice).First().Text())
	}
	if !hasPrice {
		return nil, svcerrors.ExtractionFailed("ebay", "price", nil)
	}

	listingType := "fixed_price"
	if doc.Find(ebaySelectors.auctionBids).Length() > 0 {
		listingType = "auction"
	}
	if doc.Find(ebaySelectors.bestOffer).Length() > 0 {
		listingType = "best_offer"
	}

	deliveryDays := ebayDefaultDeliveryDays

	record := &ProductRecord{
		Platform:     commerce.PlatformEbay,
		ExternalID:   externalID,
		URL:          effectiveURL,
		Title:        title,
		Price:        price,
		Category:     strings.TrimSpace(doc.Find(ebaySelectors.category).First().Text()),
		ImageURL:     attrOrEmpty(doc.Find(ebaySelectors.image).First(), "src"),
		InStock:      doc.Find(ebaySelectors.outOfStock).Length() == 0,
		Rank:         nil,
		Rating:       0, // eBay does not surface product ratings
		SellerCount:  1,
		DeliveryDays: &deliveryDays,
		BuyboxOwner:  listingType,
	}
	if record.Category == "" {
		record.Category = "General"
	}

	record.Reviews = parseReviewCount(doc.Find(ebaySelectors.sold).First().Text())

	return record, nil
}

func (e *Ebay) ListDiscoveryURLs(ctx context.Context, category string) ([]string, error) {
	path, ok := ebayCategoryPaths[category]
	var seed string
	if ok {
		seed = fmt.Sprintf("https://www.ebay.com%s", path)
	} else {
		seed = fmt.Sprintf("https://www.ebay.com/sch/i.html?_nkw=%s&_sop=12", strings.ReplaceAll(category, " ", "+"))
	}

	html, _, err := e.substrate.FetchWithRetry(ctx, string(commerce.PlatformEbay), seed)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("ebay", "document", err)
	}

	var urls []string
	doc.Find(".s-item__link").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/itm/") {
			return
		}
		urls = append(urls, href)
	})
	return capDiscovery(dedup(urls)), nil
}
