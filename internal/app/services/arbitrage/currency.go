package arbitrage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	svcerrors "github.com/aakashv8900/commercesignal/infrastructure/errors"
	"github.com/aakashv8900/commercesignal/infrastructure/fxcache"
	"github.com/aakashv8900/commercesignal/infrastructure/httputil"
)

const liveRateTimeout = 5 * time.Second

var fallbackRates = map[string]float64{
	"USD_INR": 83.00,
	"INR_USD": 0.012,
	"USD_GBP": 0.79,
	"GBP_USD": 1.27,
	"USD_EUR": 0.92,
	"EUR_USD": 1.09,
	"USD_JPY": 150.00,
	"JPY_USD": 0.0067,
}

// ConversionRate is a resolved from->to rate plus the tier that produced it.
type ConversionRate struct {
	From   string
	To     string
	Rate   float64
	Source string // "identity" | "cache" | "api" | "fallback" | "fallback_calculated"
}

// CurrencyResolver converts native prices to USD via three tiers: an
// in-memory/distributed cache, a live HTTP lookup, then a static fallback
// table.
type CurrencyResolver struct {
	cache      fxcache.Cache
	httpClient *http.Client
	apiURL     string
}

func NewCurrencyResolver(cache fxcache.Cache) *CurrencyResolver {
	client := &http.Client{Transport: httputil.DefaultTransportWithMinTLS12()}
	return &CurrencyResolver{
		cache:      cache,
		httpClient: httputil.CopyHTTPClientWithTimeout(client, liveRateTimeout, true),
		apiURL:     "https://api.exchangerate-api.com/v4/latest",
	}
}

type exchangeRateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Rate resolves the conversion rate from->to, trying cache, then live API,
// then the static fallback table.
func (r *CurrencyResolver) Rate(ctx context.Context, from, to string) (ConversionRate, error) {
	if from == to {
		return ConversionRate{From: from, To: to, Rate: 1.0, Source: "identity"}, nil
	}

	if rate, ok := r.cache.Get(ctx, from, to); ok {
		return ConversionRate{From: from, To: to, Rate: rate, Source: "cache"}, nil
	}

	if rate, err := r.fetchLiveRate(ctx, from, to); err == nil {
		r.cache.Set(ctx, from, to, rate)
		return ConversionRate{From: from, To: to, Rate: rate, Source: "api"}, nil
	}

	if rate, ok := fallbackRates[from+"_"+to]; ok {
		return ConversionRate{From: from, To: to, Rate: rate, Source: "fallback"}, nil
	}

	if from != "USD" && to != "USD" {
		toUSD, okTo := fallbackRates[from+"_USD"]
		fromUSD, okFrom := fallbackRates["USD_"+to]
		if okTo && okFrom {
			return ConversionRate{From: from, To: to, Rate: toUSD * fromUSD, Source: "fallback_calculated"}, nil
		}
	}

	return ConversionRate{}, svcerrors.CurrencyUnavailable(from, to, nil)
}

func (r *CurrencyResolver) fetchLiveRate(ctx context.Context, from, to string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, liveRateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.apiURL, from), nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("exchange rate api returned status %d", resp.StatusCode)
	}

	var payload exchangeRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	rate, ok := payload.Rates[to]
	if !ok {
		return 0, fmt.Errorf("rate not found for %s", to)
	}
	return rate, nil
}

// Convert converts amount from one currency to USD-equivalent target
// currency and rounds to cents.
func (r *CurrencyResolver) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	rate, err := r.Rate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return round2(amount * rate.Rate), nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
