// Package scraping is the anti-blocking fetch substrate shared by every
// platform extractor: fingerprint rotation, per-platform rate limiting,
// per-platform circuit breaking, and a retry policy wrapping the two.
package scraping

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	svcerrors "github.com/aakashv8900/commercesignal/infrastructure/errors"
	"github.com/aakashv8900/commercesignal/infrastructure/httputil"
	"github.com/aakashv8900/commercesignal/infrastructure/logging"
	"github.com/aakashv8900/commercesignal/infrastructure/metrics"
	"github.com/aakashv8900/commercesignal/infrastructure/ratelimit"
	"github.com/aakashv8900/commercesignal/infrastructure/resilience"
)

// maxResponseBytes caps how much of a product page body gets buffered.
const maxResponseBytes = 10 << 20

// Mode selects which rate-limit/circuit-breaker constants apply.
type Mode string

const (
	ModeFree Mode = "free"
	ModePaid Mode = "paid"
)

// Config parameterizes the substrate's anti-blocking behavior.
type Config struct {
	Mode           Mode
	RequestTimeout time.Duration
	MaxRetries     int // R in the retry policy, default 3
}

func (c Config) requestsPerMinute() float64 {
	if c.Mode == ModePaid {
		return 30
	}
	return 5
}

func (c Config) breakerMaxFailures() int {
	if c.Mode == ModePaid {
		return 5
	}
	return 3
}

func (c Config) breakerResetTimeout() time.Duration {
	if c.Mode == ModePaid {
		return 120 * time.Second
	}
	return 300 * time.Second
}

// Ticket is returned by AcquireFetchSlot and consumed by Render/ReportOutcome.
type Ticket struct {
	Platform   string
	AcquiredAt time.Time
}

// Substrate is the shared fetch substrate. One instance is constructed per
// process and passed explicitly to every extractor and the scheduler — it is
// not a package-level singleton.
type Substrate struct {
	cfg    Config
	client *http.Client
	log    *logging.Logger

	mu       sync.Mutex
	limiters map[string]*ratelimit.RateLimiter
	breakers map[string]*resilience.CircuitBreaker
}

// New constructs a Substrate with the given mode and request timeout.
func New(cfg Config, log *logging.Logger) *Substrate {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if log == nil {
		log = logging.Default()
	}
	return &Substrate{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: httputil.DefaultTransportWithMinTLS12(),
		},
		log:      log,
		limiters: make(map[string]*ratelimit.RateLimiter),
		breakers: make(map[string]*resilience.CircuitBreaker),
	}
}

func (s *Substrate) limiterFor(platform string) *ratelimit.RateLimiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[platform]
	if !ok {
		rps := s.cfg.requestsPerMinute() / 60
		l = ratelimit.New(ratelimit.RateLimitConfig{RequestsPerSecond: rps, Burst: 1})
		s.limiters[platform] = l
	}
	return l
}

func (s *Substrate) breakerFor(platform string) *resilience.CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[platform]
	if !ok {
		b = resilience.New(resilience.Config{
			MaxFailures: s.cfg.breakerMaxFailures(),
			Timeout:     s.cfg.breakerResetTimeout(),
			HalfOpenMax: 1,
		})
		s.breakers[platform] = b
	}
	return b
}

// AcquireFetchSlot respects the rate limiter and circuit breaker for the
// given platform, blocking until a slot is available. It fails fast with a
// CircuitOpen error when the breaker for this platform is open.
func (s *Substrate) AcquireFetchSlot(ctx context.Context, platform string) (Ticket, error) {
	breaker := s.breakerFor(platform)
	if err := breaker.Allow(); err != nil {
		return Ticket{}, svcerrors.CircuitOpen(platform)
	}
	if err := s.limiterFor(platform).Wait(ctx); err != nil {
		return Ticket{}, err
	}
	return Ticket{Platform: platform, AcquiredAt: time.Now().UTC()}, nil
}

// ReportOutcome closes the loop for the breaker: call after every fetch,
// success or failure, for the platform the ticket was acquired for.
func (s *Substrate) ReportOutcome(ticket Ticket, success bool) {
	s.breakerFor(ticket.Platform).RecordResult(success)
}

// Render fetches the given URL and returns its response body and effective
// (post-redirect) URL. There is no real browser behind this: no library in
// the available dependency surface renders JavaScript, so this is a plain
// HTTP fetch whose body is handed to goquery by the caller. Fingerprint
// rotation still applies at the HTTP layer (user agent, Accept-Language).
func (s *Substrate) Render(ctx context.Context, ticket Ticket, url string) (html string, effectiveURL string, err error) {
	fp := RandomFingerprint()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", svcerrors.UnsupportedURL(url)
	}
	req.Header.Set("User-Agent", fp.UserAgent)
	req.Header.Set("Accept-Language", fp.Locale)
	req.Header.Set("Sec-CH-UA-Platform", "\"Windows\"")
	req.Header.Set("Viewport-Width", fp.Viewport)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", svcerrors.ExternalAPIError(ticket.Platform, err)
	}
	defer resp.Body.Close()

	body, _, err := httputil.ReadAllWithLimit(resp.Body, maxResponseBytes)
	if err != nil {
		return "", "", svcerrors.ExternalAPIError(ticket.Platform, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden || looksBlocked(body) {
		return "", "", svcerrors.Blocked(ticket.Platform, url)
	}
	if resp.StatusCode >= 400 {
		return "", "", svcerrors.ExternalAPIError(ticket.Platform, fmt.Errorf("status %d", resp.StatusCode))
	}

	effective := url
	if resp.Request != nil && resp.Request.URL != nil {
		effective = resp.Request.URL.String()
	}
	return string(body), effective, nil
}

var blockSentinels = []string{
	"Enter the characters you see below",
	"To discuss automated access to Amazon data",
	"captcha",
	"Access Denied",
	"unusual traffic",
}

func looksBlocked(body []byte) bool {
	for _, sentinel := range blockSentinels {
		if bytes.Contains(body, []byte(sentinel)) {
			return true
		}
	}
	return false
}

// FetchWithRetry acquires a slot, renders the page, and reports the outcome,
// making up to Config.MaxRetries attempts in total with exponential backoff
// 2^attempt + jitter(0,1) seconds between attempts.
func (s *Substrate) FetchWithRetry(ctx context.Context, platform, url string) (html string, effectiveURL string, err error) {
	m := metrics.Global()
	m.ScrapesInFlight.Inc()
	defer m.ScrapesInFlight.Dec()
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		ticket, acqErr := s.AcquireFetchSlot(ctx, platform)
		if acqErr != nil {
			m.RecordScrape(platform, "fetch", "breaker_rejected", time.Since(start))
			return "", "", acqErr
		}

		html, effectiveURL, err = s.Render(ctx, ticket, url)
		success := err == nil && html != ""
		s.ReportOutcome(ticket, success)
		s.log.LogScrapeAttempt(ctx, platform, url, err)

		if success {
			m.RecordScrape(platform, "fetch", "ok", time.Since(start))
			return html, effectiveURL, nil
		}
		lastErr = err
		if err != nil && svcerrors.GetServiceError(err) != nil && svcerrors.GetServiceError(err).Code == svcerrors.ErrCodeCircuitOpen {
			m.RecordScrape(platform, "fetch", "circuit_open", time.Since(start))
			m.RecordError("scraping", "fetch")
			return "", "", err
		}

		if attempt < s.cfg.MaxRetries-1 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			backoff += time.Duration(rand.Float64() * float64(time.Second))
			select {
			case <-ctx.Done():
				return "", "", ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	if lastErr == nil {
		lastErr = svcerrors.ExtractionFailed(platform, "body", fmt.Errorf("empty response"))
	}
	m.RecordScrape(platform, "fetch", "failed", time.Since(start))
	m.RecordError("scraping", "fetch")
	return "", "", lastErr
}
