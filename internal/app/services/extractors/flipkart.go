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

var flipkartIDPattern = regexp.MustCompile(`[?&]pid=([A-Z0-9]+)|/p/([a-z0-9-]+)$`)

var flipkartSelectors = struct {
	title, price, originalPrice, rating, reviews, category, brand, image, availability, seller string
}{
	title:         "span.VU-ZEz, h1._6EBuvT, span.B_NuCI",
	price:         "div.Nx9bqj.CxhGGd, div._30jeq3._16Jk6d",
	originalPrice: "div.yRaY8j, div._3I9_wc",
	rating:        "div.XQDdHH, div._3LWZlK",
	reviews:       "span.Wphh3N span:last-child, span._2_R_DZ span",
	category:      "div._1MR4o5 a, div._3GIHBu a",
	brand:         "span.mEh187, div._2WkVRV",
	image:         "img._396cs4, img._2r_T1I",
	availability:  "div._16FRp0, div.Z8JjpR",
	seller:        "div._1RLviB span, #sellerName span",
}

var flipkartCategoryPaths = map[string]string{
	"Electronics":      "/electronics/pr",
	"Mobiles":          "/mobiles/pr",
	"Fashion":          "/fashion/pr",
	"Home & Furniture": "/home-furniture/pr",
	"Appliances":       "/appliances/pr",
	"Beauty":           "/beauty-and-personal-care/pr",
	"Toys & Baby":      "/toys-and-baby-products/pr",
	"Sports":           "/sports-and-fitness/pr",
	"Books":            "/books/pr",
	"Grocery":          "/grocery/pr",
}

// Flipkart implements Extractor for flipkart.com product pages. Flipkart
// does not expose a bestseller rank, so Rank is always left nil.
type Flipkart struct {
	substrate *scraping.Substrate
}

func NewFlipkart(substrate *scraping.Substrate) *Flipkart { return &Flipkart{substrate: substrate} }

func (f *Flipkart) Platform() commerce.Platform { return commerce.PlatformFlipkart }

func (f *Flipkart) ExtractID(url string) (string, bool) {
	m := flipkartIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	if m[2] != "" {
		return m[2], true
	}
	return "", false
}

func (f *Flipkart) Detect(url string) bool {
	return strings.Contains(url, "flipkart.com") && flipkartIDPattern.MatchString(url)
}

func (f *Flipkart) ScrapeProduct(ctx context.Context, url string) (*ProductRecord, error) {
	externalID, ok := f.ExtractID(url)
	if !ok {
		return nil, svcerrors.UnsupportedURL(url)
	}

	html, effectiveURL, err := f.substrate.FetchWithRetry(ctx, string(commerce.PlatformFlipkart), url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("flipkart", "document", err)
	}

	title := strings.TrimSpace(doc.Find(flipkartSelectors.title).First().Text())
	if title == "" {
		return nil, svcerrors.ExtractionFailed("flipkart", "title", nil)
	}

	// Rupee symbol and thousands separators are stripped by parsePrice's
	// non-digit filter.
	price, hasPrice := parsePrice(doc.Find(flipkartSelectors.price).First().Text())
	if !hasPrice {
		return nil, svcerrors.ExtractionFailed("flipkart", "price", nil)
	}

	record := &ProductRecord{
		Platform:   commerce.PlatformFlipkart,
		ExternalID: externalID,
		URL:        effectiveURL,
		Title:      title,
		Price:      price,
		Category:   strings.TrimSpace(doc.Find(flipkartSelectors.category).First().Text()),
		Brand:      strings.TrimSpace(doc.Find(flipkartSelectors.brand).First().Text()),
		ImageURL:   attrOrEmpty(doc.Find(flipkartSelectors.image).First(), "src"),
		InStock:    !strings.Contains(strings.ToLower(doc.Find(flipkartSelectors.availability).First().Text()), "out of stock"),
		Rank:       nil,
	}
	if record.Category == "" {
		record.Category = "Unknown"
	}

	if orig, ok := parsePrice(doc.Find(flipkartSelectors.originalPrice).First().Text()); ok && orig > price {
		record.OriginalPrice = &orig
		pct := (orig - price) / orig * 100
		record.DiscountPercent = &pct
	}

	record.Rating = parseRating(doc.Find(flipkartSelectors.rating).First().Text())
	record.Reviews = parseReviewCount(doc.Find(flipkartSelectors.reviews).First().Text())
	record.SellerCount = countSellers(doc.Find(flipkartSelectors.seller).First().Text())

	return record, nil
}

func (f *Flipkart) ListDiscoveryURLs(ctx context.Context, category string) ([]string, error) {
	path, ok := flipkartCategoryPaths[category]
	if !ok {
		path = flipkartCategoryPaths["Electronics"]
	}
	seed := fmt.Sprintf("https://www.flipkart.com%s?sort=popularity", path)

	html, _, err := f.substrate.FetchWithRetry(ctx, string(commerce.PlatformFlipkart), seed)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("flipkart", "document", err)
	}

	var urls []string
	doc.Find("a[href*='/p/']").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://www.flipkart.com" + href
		}
		if f.Detect(href) {
			urls = append(urls, href)
		}
	})
	return capDiscovery(dedup(urls)), nil
}
