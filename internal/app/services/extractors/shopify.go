package extractors

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	svcerrors "github.com/aakashv8900/commercesignal/infrastructure/errors"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/scraping"
)

var shopifyHandlePattern = regexp.MustCompile(`/products/([^/?#]+)`)

var shopifySelectors = struct {
	title, altTitle1, altTitle2, altTitle3, price, altPrice1, altPrice2, comparePrice, vendor, altVendor, image, altImage, soldOut, addToCart string
}{
	title:        ".product-title",
	altTitle1:    "h1.product__title",
	altTitle2:    "[data-product-title]",
	altTitle3:    "h1",
	price:        ".product-price",
	altPrice1:    ".price__regular .price-item",
	altPrice2:    "[data-product-price]",
	comparePrice: ".price__compare .price-item",
	vendor:       ".product-vendor",
	altVendor:    "[data-vendor]",
	image:        ".product-featured-image img",
	altImage:     ".product__media img",
	soldOut:      "[data-soldout]",
	addToCart:    "[data-add-to-cart]",
}

const shopifyDefaultDeliveryDays = 5

type shopifyVariant struct {
	ID               int64  `json:"id"`
	Price            string `json:"price"`
	CompareAtPrice   string `json:"compare_at_price"`
	Available        bool   `json:"available"`
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyProductJSON struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Variants    []shopifyVariant `json:"variants"`
	Images      []shopifyImage   `json:"images"`
}

type shopifyProductEnvelope struct {
	Product shopifyProductJSON `json:"product"`
}

// Shopify implements Extractor for any Shopify-backed storefront. The host
// is not fixed: a URL is claimed whenever its path matches the Shopify
// /products/{handle} convention. ScrapeProduct prefers the store's
// products/{handle}.json endpoint and falls back to DOM scraping when that
// endpoint 404s or returns non-JSON content.
type Shopify struct {
	substrate *scraping.Substrate
}

func NewShopify(substrate *scraping.Substrate) *Shopify { return &Shopify{substrate: substrate} }

func (s *Shopify) Platform() commerce.Platform { return commerce.PlatformShopify }

func (s *Shopify) ExtractID(productURL string) (string, bool) {
	m := shopifyHandlePattern.FindStringSubmatch(productURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (s *Shopify) Detect(productURL string) bool {
	return shopifyHandlePattern.MatchString(productURL)
}

func storeDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func (s *Shopify) ScrapeProduct(ctx context.Context, productURL string) (*ProductRecord, error) {
	handle, ok := s.ExtractID(productURL)
	if !ok {
		return nil, svcerrors.UnsupportedURL(productURL)
	}

	u, err := url.Parse(productURL)
	if err != nil {
		return nil, svcerrors.UnsupportedURL(productURL)
	}
	jsonURL := u.Scheme + "://" + u.Host + "/products/" + handle + ".json"

	if record, err := s.scrapeJSON(ctx, jsonURL, handle, productURL); err == nil {
		return record, nil
	}

	return s.scrapeHTML(ctx, productURL, handle)
}

func (s *Shopify) scrapeJSON(ctx context.Context, jsonURL, handle, productURL string) (*ProductRecord, error) {
	body, _, err := s.substrate.FetchWithRetry(ctx, string(commerce.PlatformShopify), jsonURL)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(body, `"product"`) {
		return nil, svcerrors.ExtractionFailed("shopify", "json", nil)
	}

	var envelope shopifyProductEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, svcerrors.ExtractionFailed("shopify", "json", err)
	}
	product := envelope.Product
	if product.Title == "" || len(product.Variants) == 0 {
		return nil, svcerrors.ExtractionFailed("shopify", "json", nil)
	}

	variant := product.Variants[0]
	price, err := strconv.ParseFloat(variant.Price, 64)
	if err != nil {
		return nil, svcerrors.ExtractionFailed("shopify", "price", err)
	}

	deliveryDays := shopifyDefaultDeliveryDays
	category := product.ProductType
	if category == "" {
		category = "General"
	}
	var imageURL string
	if len(product.Images) > 0 {
		imageURL = product.Images[0].Src
	}

	record := &ProductRecord{
		Platform:     commerce.PlatformShopify,
		ExternalID:   strconv.FormatInt(product.ID, 10),
		URL:          productURL,
		Title:        product.Title,
		Price:        price,
		Category:     category,
		Brand:        product.Vendor,
		ImageURL:     imageURL,
		InStock:      variant.Available,
		Rank:         nil,
		SellerCount:  1,
		DeliveryDays: &deliveryDays,
		BuyboxOwner:  storeDomain(productURL),
	}
	if record.ExternalID == "0" {
		record.ExternalID = handle
	}

	if comparePrice, err := strconv.ParseFloat(variant.CompareAtPrice, 64); err == nil && comparePrice > price {
		record.OriginalPrice = &comparePrice
		pct := (comparePrice - price) / comparePrice * 100
		record.DiscountPercent = &pct
	}

	return record, nil
}

func (s *Shopify) scrapeHTML(ctx context.Context, productURL, handle string) (*ProductRecord, error) {
	html, effectiveURL, err := s.substrate.FetchWithRetry(ctx, string(commerce.PlatformShopify), productURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, svcerrors.ExtractionFailed("shopify", "document", err)
	}

	title := firstNonEmpty(doc,
		shopifySelectors.title,
		shopifySelectors.altTitle1,
		shopifySelectors.altTitle2,
		shopifySelectors.altTitle3,
	)
	if title == "" {
		return nil, svcerrors.ExtractionFailed("shopify", "title", nil)
	}

	price, hasPrice := parsePrice(firstNonEmpty(doc, shopifySelectors.price, shopifySelectors.altPrice1, shopifySelectors.altPrice2))
	if !hasPrice {
		return nil, svcerrors.ExtractionFailed("shopify", "price", nil)
	}

	deliveryDays := shopifyDefaultDeliveryDays
	vendor := firstNonEmpty(doc, shopifySelectors.vendor, shopifySelectors.altVendor)
	image := attrOrEmpty(doc.Find(shopifySelectors.image).First(), "src")
	if image == "" {
		image = attrOrEmpty(doc.Find(shopifySelectors.altImage).First(), "src")
	}

	inStock := doc.Find(shopifySelectors.soldOut).Length() == 0
	if btn := doc.Find(shopifySelectors.addToCart).First(); btn.Length() > 0 {
		if _, disabled := btn.Attr("disabled"); disabled {
			inStock = false
		}
	}

	record := &ProductRecord{
		Platform:     commerce.PlatformShopify,
		ExternalID:   handle,
		URL:          effectiveURL,
		Title:        title,
		Price:        price,
		Category:     "General",
		Brand:        vendor,
		ImageURL:     image,
		InStock:      inStock,
		Rank:         nil,
		SellerCount:  1,
		DeliveryDays: &deliveryDays,
		BuyboxOwner:  storeDomain(effectiveURL),
	}

	if comparePrice, ok := parsePrice(doc.Find(shopifySelectors.comparePrice).First().Text()); ok && comparePrice > price {
		record.OriginalPrice = &comparePrice
		pct := (comparePrice - price) / comparePrice * 100
		record.DiscountPercent = &pct
	}

	return record, nil
}

func firstNonEmpty(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// ListDiscoveryURLs scrapes a Shopify collection's JSON endpoint
// (collection_url + ".json") for product handles.
func (s *Shopify) ListDiscoveryURLs(ctx context.Context, collectionURL string) ([]string, error) {
	jsonURL := collectionURL + ".json"
	body, _, err := s.substrate.FetchWithRetry(ctx, string(commerce.PlatformShopify), jsonURL)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(body, `"products"`) {
		return nil, svcerrors.ExtractionFailed("shopify", "collection json", nil)
	}

	var payload struct {
		Products []struct {
			Handle string `json:"handle"`
		} `json:"products"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, svcerrors.ExtractionFailed("shopify", "collection json", err)
	}

	base := collectionURL
	if idx := strings.Index(base, "/collections"); idx >= 0 {
		base = base[:idx]
	}

	var urls []string
	for _, p := range payload.Products {
		if p.Handle == "" {
			continue
		}
		urls = append(urls, base+"/products/"+p.Handle)
	}
	return capDiscovery(dedup(urls)), nil
}
