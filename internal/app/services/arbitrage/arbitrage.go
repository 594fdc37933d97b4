// Package arbitrage detects cross-border price arbitrage opportunities for
// a single product across its regional listings.
package arbitrage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

const minMarginPercent = 15.0

var taxRates = map[string]float64{
	"US": 0.08,
	"IN": 0.18,
	"UK": 0.20,
	"DE": 0.19,
	"JP": 0.10,
}

const defaultTaxRate = 0.10

var shippingEstimates = map[string]float64{
	"US_IN": 25.00,
	"IN_US": 30.00,
	"US_UK": 20.00,
	"UK_US": 20.00,
	"US_DE": 22.00,
	"DE_US": 22.00,
}

const defaultShippingUSD = 35.00

var importDutyRates = map[string]float64{
	"Electronics": 0.05,
	"Clothing":    0.12,
	"Toys":        0.03,
	"Beauty":      0.08,
	"Books":       0.00,
}

const defaultDutyRate = 0.05

// RegionalPrice is one platform's listing for a product in a given region.
type RegionalPrice struct {
	Platform       string
	Country        string
	Currency       string
	PriceNative    float64
	PriceUSD       float64
	PriceWithTaxUSD float64
	InStock        bool
	URL            string
}

// Opportunity is a detected buy-low/sell-high pairing between two regions.
type Opportunity struct {
	BuyFrom             RegionalPrice
	SellTo              RegionalPrice
	PriceDifferenceUSD  float64
	ShippingCostUSD     float64
	ImportTaxEstimateUSD float64
	NetMarginUSD        float64
	MarginPercent       float64
	Profitable          bool
	Notes               string
}

// GlobalPriceComparison is the full output of the arbitrage analyzer for a
// single product.
type GlobalPriceComparison struct {
	ProductTitle          string
	RegionalPrices        []RegionalPrice
	LowestPrice           RegionalPrice
	HighestPrice          RegionalPrice
	PriceSpreadPercent    float64
	ArbitrageOpportunities []Opportunity
	Recommendation        string
}

// Analyzer composes a CurrencyResolver to normalize native prices to USD
// and surface arbitrage opportunities across regions.
type Analyzer struct {
	resolver *CurrencyResolver
}

func NewAnalyzer(resolver *CurrencyResolver) *Analyzer {
	return &Analyzer{resolver: resolver}
}

// TaxRate returns the configured tax rate for a country, defaulting to 10%.
func TaxRate(country string) float64 {
	if rate, ok := taxRates[strings.ToUpper(country)]; ok {
		return rate
	}
	return defaultTaxRate
}

func shippingCost(fromCountry, toCountry string) float64 {
	key := strings.ToUpper(fromCountry) + "_" + strings.ToUpper(toCountry)
	if cost, ok := shippingEstimates[key]; ok {
		return cost
	}
	return defaultShippingUSD
}

func dutyRate(category string) float64 {
	if rate, ok := importDutyRates[category]; ok {
		return rate
	}
	return defaultDutyRate
}

// RawPrice is a caller-supplied regional price before tax-adjustment and
// USD conversion.
type RawPrice struct {
	Platform    string
	Country     string
	Currency    string
	PriceNative float64
	InStock     bool
	URL         string
}

// AnalyzePrices converts every raw price to USD (with tax), then searches
// every ordered pair for profitable arbitrage, returning the top 5 ranked
// by margin percent. Requires at least 2 regional prices.
func (a *Analyzer) AnalyzePrices(ctx context.Context, productTitle string, raw []RawPrice, category string) (GlobalPriceComparison, error) {
	if len(raw) < 2 {
		var single RegionalPrice
		if len(raw) == 1 {
			single = mustConvert(ctx, a.resolver, raw[0])
		}
		return GlobalPriceComparison{
			ProductTitle:   productTitle,
			LowestPrice:    single,
			HighestPrice:   single,
			Recommendation: "need prices from at least 2 regions for comparison",
		}, nil
	}

	prices := make([]RegionalPrice, 0, len(raw))
	for _, r := range raw {
		p, err := convert(ctx, a.resolver, r)
		if err != nil {
			return GlobalPriceComparison{}, err
		}
		prices = append(prices, p)
	}

	sort.SliceStable(prices, func(i, j int) bool { return prices[i].PriceUSD < prices[j].PriceUSD })
	lowest, highest := prices[0], prices[len(prices)-1]

	spread := 0.0
	if lowest.PriceUSD > 0 {
		spread = round1((highest.PriceUSD - lowest.PriceUSD) / lowest.PriceUSD * 100)
	}

	opportunities := findOpportunities(prices, category)
	recommendation := generateRecommendation(opportunities, spread)

	return GlobalPriceComparison{
		ProductTitle:           productTitle,
		RegionalPrices:         prices,
		LowestPrice:            lowest,
		HighestPrice:           highest,
		PriceSpreadPercent:     spread,
		ArbitrageOpportunities: opportunities,
		Recommendation:         recommendation,
	}, nil
}

func convert(ctx context.Context, resolver *CurrencyResolver, r RawPrice) (RegionalPrice, error) {
	priceUSD, err := resolver.Convert(ctx, r.PriceNative, r.Currency, "USD")
	if err != nil {
		return RegionalPrice{}, err
	}
	tax := TaxRate(r.Country)
	return RegionalPrice{
		Platform:        r.Platform,
		Country:         r.Country,
		Currency:        r.Currency,
		PriceNative:     r.PriceNative,
		PriceUSD:        priceUSD,
		PriceWithTaxUSD: round2(priceUSD * (1 + tax)),
		InStock:         r.InStock,
		URL:             r.URL,
	}, nil
}

func mustConvert(ctx context.Context, resolver *CurrencyResolver, r RawPrice) RegionalPrice {
	p, err := convert(ctx, resolver, r)
	if err != nil {
		return RegionalPrice{Platform: r.Platform, Country: r.Country, Currency: r.Currency, PriceNative: r.PriceNative, InStock: r.InStock, URL: r.URL}
	}
	return p
}

func findOpportunities(prices []RegionalPrice, category string) []Opportunity {
	var opportunities []Opportunity
	for _, buy := range prices {
		if !buy.InStock {
			continue
		}
		for _, sell := range prices {
			if buy.Country == sell.Country {
				continue
			}
			opp := calculateOpportunity(buy, sell, category)
			if opp.Profitable {
				opportunities = append(opportunities, opp)
			}
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool { return opportunities[i].MarginPercent > opportunities[j].MarginPercent })
	if len(opportunities) > 5 {
		opportunities = opportunities[:5]
	}
	return opportunities
}

func calculateOpportunity(buy, sell RegionalPrice, category string) Opportunity {
	priceDiff := sell.PriceWithTaxUSD - buy.PriceUSD
	shipping := shippingCost(buy.Country, sell.Country)
	importTax := buy.PriceUSD * dutyRate(category)
	netMargin := priceDiff - shipping - importTax

	marginPercent := 0.0
	if buy.PriceUSD > 0 {
		marginPercent = netMargin / buy.PriceUSD * 100
	}
	profitable := marginPercent >= minMarginPercent

	return Opportunity{
		BuyFrom:              buy,
		SellTo:               sell,
		PriceDifferenceUSD:   round2(priceDiff),
		ShippingCostUSD:      shipping,
		ImportTaxEstimateUSD: round2(importTax),
		NetMarginUSD:         round2(netMargin),
		MarginPercent:        round1(marginPercent),
		Profitable:           profitable,
		Notes:                generateNotes(buy, sell, marginPercent),
	}
}

func generateNotes(buy, sell RegionalPrice, marginPercent float64) string {
	var notes []string
	switch {
	case marginPercent >= 30:
		notes = append(notes, "high margin opportunity")
	case marginPercent >= 20:
		notes = append(notes, "good margin")
	case marginPercent >= minMarginPercent:
		notes = append(notes, "viable margin")
	default:
		notes = append(notes, "low margin")
	}
	if !buy.InStock {
		notes = append(notes, "out of stock at source")
	}
	if buy.Platform != sell.Platform {
		notes = append(notes, fmt.Sprintf("cross-platform: %s -> %s", buy.Platform, sell.Platform))
	}
	return strings.Join(notes, " | ")
}

func generateRecommendation(opportunities []Opportunity, spreadPercent float64) string {
	if len(opportunities) == 0 {
		if spreadPercent < 10 {
			return "no significant price differences detected; prices are well-aligned globally"
		}
		return "price differences exist but shipping/import costs eliminate margins"
	}
	best := opportunities[0]
	return fmt.Sprintf("best opportunity: buy from %s (%s) at $%.2f, sell in %s for %.1f%% margin ($%.2f net profit per unit)",
		best.BuyFrom.Country, best.BuyFrom.Platform, best.BuyFrom.PriceUSD, best.SellTo.Country, best.MarginPercent, best.NetMarginUSD)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
