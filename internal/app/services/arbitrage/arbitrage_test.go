package arbitrage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aakashv8900/commercesignal/infrastructure/fxcache"
)

func newTestAnalyzer() *Analyzer {
	cache := fxcache.NewInMemory()
	cache.Set(context.Background(), "INR", "USD", 0.012)
	cache.Set(context.Background(), "USD", "USD", 1.0)
	return NewAnalyzer(NewCurrencyResolver(cache))
}

func TestAnalyzePrices_RequiresTwoRegions(t *testing.T) {
	a := newTestAnalyzer()
	result, err := a.AnalyzePrices(context.Background(), "Widget", []RawPrice{
		{Platform: "Amazon", Country: "US", Currency: "USD", PriceNative: 20, InStock: true},
	}, "Electronics")
	require.NoError(t, err)
	require.Equal(t, "need prices from at least 2 regions for comparison", result.Recommendation)
}

func TestAnalyzePrices_FindsProfitableOpportunity(t *testing.T) {
	a := newTestAnalyzer()
	result, err := a.AnalyzePrices(context.Background(), "Widget", []RawPrice{
		{Platform: "Flipkart", Country: "IN", Currency: "INR", PriceNative: 830, InStock: true},
		{Platform: "Amazon", Country: "US", Currency: "USD", PriceNative: 50, InStock: true},
	}, "Electronics")
	require.NoError(t, err)
	require.Len(t, result.RegionalPrices, 2)
	require.GreaterOrEqual(t, result.PriceSpreadPercent, 0.0)
	require.NotEmpty(t, result.ArbitrageOpportunities)
	for _, opp := range result.ArbitrageOpportunities {
		require.True(t, opp.Profitable)
		require.GreaterOrEqual(t, opp.MarginPercent, minMarginPercent)
	}
}

func TestAnalyzePrices_OutOfStockSourceExcludedFromOpportunities(t *testing.T) {
	a := newTestAnalyzer()
	result, err := a.AnalyzePrices(context.Background(), "Widget", []RawPrice{
		{Platform: "Flipkart", Country: "IN", Currency: "INR", PriceNative: 830, InStock: false},
		{Platform: "Amazon", Country: "US", Currency: "USD", PriceNative: 50, InStock: true},
	}, "Electronics")
	require.NoError(t, err)
	for _, opp := range result.ArbitrageOpportunities {
		require.NotEqual(t, "IN", opp.BuyFrom.Country)
	}
}

func TestTaxRate_UnknownCountryFallsBackToDefault(t *testing.T) {
	require.Equal(t, defaultTaxRate, TaxRate("ZZ"))
	require.Equal(t, 0.08, TaxRate("US"))
}

func TestCurrencyResolver_IdentityConversionIsRateOne(t *testing.T) {
	cache := fxcache.NewInMemory()
	resolver := NewCurrencyResolver(cache)
	rate, err := resolver.Rate(context.Background(), "USD", "USD")
	require.NoError(t, err)
	require.Equal(t, "identity", rate.Source)
	require.Equal(t, 1.0, rate.Rate)
}

func TestCurrencyResolver_FallbackTableUsedWhenNoCacheOrLiveRate(t *testing.T) {
	cache := fxcache.NewInMemory()
	resolver := NewCurrencyResolver(cache)
	resolver.apiURL = "http://127.0.0.1:1" // unreachable, forces fallback
	rate, err := resolver.Rate(context.Background(), "USD", "INR")
	require.NoError(t, err)
	require.Equal(t, "fallback", rate.Source)
	require.Equal(t, 83.00, rate.Rate)
}
