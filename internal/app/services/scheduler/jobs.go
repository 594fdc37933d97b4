package scheduler

import (
	"time"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/extractors"
)

const (
	amazonDiscoveryLimit   = 30
	flipkartDiscoveryLimit = 30
	ebayDiscoveryLimit     = 20
	walmartDiscoveryLimit  = 20
)

var amazonCategories = []string{
	"Electronics", "Home & Kitchen", "Toys & Games", "Sports & Outdoors",
	"Beauty & Personal Care", "Health & Household", "Clothing", "Books",
}

var flipkartCategories = []string{
	"Electronics", "Mobiles", "Fashion", "Home & Furniture", "Appliances",
	"Beauty", "Toys & Baby", "Sports", "Books", "Grocery",
}

var ebayCategories = []string{
	"Electronics", "Computers", "Cell Phones", "Clothing", "Home & Garden",
	"Sporting Goods", "Toys & Hobbies", "Collectibles", "Motors", "Jewelry",
}

var walmartCategories = []string{
	"Electronics", "Home", "Toys", "Clothing", "Sports & Outdoors",
	"Beauty", "Grocery", "Baby", "Pets", "Auto",
}

// DefaultJobs builds the four scheduled platform jobs per the §6 cadence
// table: Amazon and Flipkart discover every 6h (Flipkart offset +1h to
// avoid lockstep with Amazon), eBay and Walmart every 12h (Walmart offset
// +6h); each platform's daily metrics collection runs once at its own UTC
// hour.
func DefaultJobs(amazon *extractors.Amazon, flipkart *extractors.Flipkart, ebay *extractors.Ebay, walmart *extractors.Walmart) []PlatformJob {
	return []PlatformJob{
		{
			Platform:         commerce.PlatformAmazon,
			Extractor:        amazon,
			Categories:       amazonCategories,
			LimitPerCategory: amazonDiscoveryLimit,
			DiscoveryEvery:   6 * time.Hour,
			DiscoveryOffset:  0,
			MetricsCronSpec:  "0 3 * * *",
		},
		{
			Platform:         commerce.PlatformFlipkart,
			Extractor:        flipkart,
			Categories:       flipkartCategories,
			LimitPerCategory: flipkartDiscoveryLimit,
			DiscoveryEvery:   6 * time.Hour,
			DiscoveryOffset:  time.Hour,
			MetricsCronSpec:  "0 4 * * *",
		},
		{
			Platform:         commerce.PlatformEbay,
			Extractor:        ebay,
			Categories:       ebayCategories,
			LimitPerCategory: ebayDiscoveryLimit,
			DiscoveryEvery:   12 * time.Hour,
			DiscoveryOffset:  0,
			MetricsCronSpec:  "0 5 * * *",
		},
		{
			Platform:         commerce.PlatformWalmart,
			Extractor:        walmart,
			Categories:       walmartCategories,
			LimitPerCategory: walmartDiscoveryLimit,
			DiscoveryEvery:   12 * time.Hour,
			DiscoveryOffset:  6 * time.Hour,
			MetricsCronSpec:  "0 6 * * *",
		},
	}
}
