package extractors

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	svcerrors "github.com/aakashv8900/commercesignal/infrastructure/errors"
	"github.com/aakashv8900/commercesignal/infrastructure/utils"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/scraping"
)

var amazonIDPattern = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)

var amazonSelectors = struct {
	title, price, originalPrice, rating, reviews, rankText, category, brand, image, availability, sellerCount, buyboxSeller, delivery string
}{
	title:         "#productTitle",
	price:         "span.a-price span.a-offscreen",
	originalPrice: "span.a-price.a-text-price span.a-offscreen",
	rating:        "#acrPopover span.a-size-base",
	reviews:       "#acrCustomerReviewText",
	rankText:      "#productDetails_detailBullets_sections1",
	category:      "#wayfinding-breadcrumbs_feature_div ul li:last-child a",
	brand:         "#bylineInfo",
	image:         "#landingImage",
	availability:  "#availability span",
	sellerCount:   "#olp-upd-new a",
	buyboxSeller:  "#sellerProfileTriggerId",
	delivery:      "#delivery-message",
}

var amazonBlockSentinels = []string{"Enter the characters you see below", "robot check"}

var amazonCategoryPaths = map[string]string{
	"Electronics":             "/gp/bestsellers/electronics",
	"Home & Kitchen":          "/gp/bestsellers/home-garden",
	"Toys & Games":            "/gp/bestsellers/toys-and-games",
	"Sports & Outdoors":       "/gp/bestsellers/sporting-goods",
	"Beauty & Personal Care":  "/gp/bestsellers/beauty",
	"Health & Household":      "/gp/bestsellers/hpc",
	"Clothing":                "/gp/bestsellers/fashion",
	"Books":                   "/gp/bestsellers/books",
}

// Amazon implements Extractor for amazon.com product pages.
type Amazon struct {
	substrate *scraping.Substrate
}

func NewAmazon(substrate *scraping.Substrate) *Amazon { return &Amazon{substrate: substrate} }

func (a *Amazon) Platform() commerce.Platform { return commerce.PlatformAmazon }

func (a *Amazon) ExtractID(url string) (string, bool) {
	m := amazonIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (a *Amazon) Detect(url string) bool {
	return strings.Contains(url, "amazon.com") && amazonIDPattern.MatchString(url)
}

func (a *Amazon) ScrapeProduct(ctx context.Context, url string) (*ProductRecord, error) {
	externalID, ok := a.ExtractID(url)
	if !ok {
		return nil, svcerrors.UnsupportedURL(url)
	}

	html, effectiveURL, err := a.substrate.FetchWithRetry(ctx, string(commerce.PlatformAmazon), url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("amazon", "document", err)
	}

	for _, sentinel := range amazonBlockSentinels {
		if strings.Contains(doc.Text(), sentinel) {
			return nil, svcerrors.Blocked("amazon", url)
		}
	}

	title := strings.TrimSpace(doc.Find(amazonSelectors.title).First().Text())
	if title == "" {
		return nil, svcerrors.ExtractionFailed("amazon", "title", nil)
	}

	price, hasPrice := parsePrice(doc.Find(amazonSelectors.price).First().Text())
	if !hasPrice {
		return nil, svcerrors.ExtractionFailed("amazon", "price", nil)
	}

	record := &ProductRecord{
		Platform:   commerce.PlatformAmazon,
		ExternalID: externalID,
		URL:        effectiveURL,
		Title:      title,
		Price:      price,
		Category:   strings.TrimSpace(doc.Find(amazonSelectors.category).First().Text()),
		Brand:      strings.TrimSpace(doc.Find(amazonSelectors.brand).First().Text()),
		ImageURL:   attrOrEmpty(doc.Find(amazonSelectors.image).First(), "src"),
		InStock:    !strings.Contains(strings.ToLower(doc.Find(amazonSelectors.availability).First().Text()), "unavailable"),
	}
	if record.Category == "" {
		record.Category = "Unknown"
	}

	if orig, ok := parsePrice(doc.Find(amazonSelectors.originalPrice).First().Text()); ok && orig > price {
		record.OriginalPrice = &orig
		pct := (orig - price) / orig * 100
		record.DiscountPercent = &pct
	}

	record.Rating = parseRating(doc.Find(amazonSelectors.rating).First().Text())
	record.Reviews = parseReviewCount(doc.Find(amazonSelectors.reviews).First().Text())
	record.Rank = parseRank(doc.Find(amazonSelectors.rankText).Text())
	record.SellerCount = countSellers(doc.Find(amazonSelectors.sellerCount).First().Text())
	record.BuyboxOwner = strings.TrimSpace(doc.Find(amazonSelectors.buyboxSeller).First().Text())

	return record, nil
}

func (a *Amazon) ListDiscoveryURLs(ctx context.Context, category string) ([]string, error) {
	path, ok := amazonCategoryPaths[category]
	if !ok {
		path = "/gp/bestsellers"
	}
	seed := fmt.Sprintf("https://www.amazon.com%s", path)

	html, _, err := a.substrate.FetchWithRetry(ctx, string(commerce.PlatformAmazon), seed)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("amazon", "document", err)
	}

	var urls []string
	doc.Find("a[href*='/dp/']").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if id, ok := a.ExtractID(href); ok {
			urls = append(urls, fmt.Sprintf("https://www.amazon.com/dp/%s", id))
		}
	})
	return capDiscovery(dedup(urls)), nil
}

func attrOrEmpty(sel *goquery.Selection, attr string) string {
	v, _ := sel.Attr(attr)
	return v
}

func parseRating(raw string) float64 {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

var digitsPattern = regexp.MustCompile(`[\d,]+`)

func parseReviewCount(raw string) int {
	match := digitsPattern.FindString(raw)
	if match == "" {
		return 0
	}
	v, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return v
}

var rankPattern = regexp.MustCompile(`#([\d,]+)`)

func parseRank(raw string) *int {
	match := rankPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil || v <= 0 {
		return nil
	}
	return utils.Ptr(v)
}

func countSellers(raw string) int {
	n := parseReviewCount(raw)
	if n <= 0 {
		return 1
	}
	return n
}
