package scheduler

import (
	"context"
	"time"

	"github.com/aakashv8900/commercesignal/infrastructure/utils"
	core "github.com/aakashv8900/commercesignal/internal/app/core/service"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/extractors"
)

// runDiscovery walks every configured category for job, capping the URLs
// taken from each category at job.LimitPerCategory, and scrapes + ingests
// each one. Extractor calls for a single platform happen sequentially to
// respect that platform's rate limiter; a single product's failure is
// logged and skipped rather than aborting the rest of the pass.
func (s *Scheduler) runDiscovery(ctx context.Context, job PlatformJob) {
	lock := s.platformLock(job.Platform)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	now := started.UTC()
	s.log.Info(ctx, "discovery job starting", map[string]interface{}{
		"platform":   string(job.Platform),
		"categories": len(job.Categories),
	})
	defer func() {
		s.log.Info(ctx, "discovery job finished", map[string]interface{}{
			"platform": string(job.Platform),
			"elapsed":  utils.FormatDuration(time.Since(started)),
		})
	}()

	for _, category := range job.Categories {
		if ctx.Err() != nil {
			return
		}

		urls, err := job.Extractor.ListDiscoveryURLs(ctx, category)
		if err != nil {
			s.log.Warn(ctx, "discovery listing failed", map[string]interface{}{
				"platform": string(job.Platform),
				"category": category,
				"error":    err.Error(),
			})
			continue
		}

		limit := core.ClampLimit(job.LimitPerCategory, core.DefaultListLimit, core.MaxListLimit)
		if len(urls) > limit {
			urls = urls[:limit]
		}

		for _, url := range urls {
			if ctx.Err() != nil {
				return
			}
			s.scrapeAndIngest(ctx, job, url, now)
		}
	}
}

// runMetrics re-scrapes every already-known product for job's platform and
// appends today's DailyMetric, evaluating alert subscriptions against the
// (current, previous) pair as each product completes.
func (s *Scheduler) runMetrics(ctx context.Context, job PlatformJob) {
	lock := s.platformLock(job.Platform)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	now := started.UTC()

	products, err := s.store.ListProducts(ctx, job.Platform, "")
	if err != nil {
		s.log.Error(ctx, "metrics job could not list products", err, map[string]interface{}{
			"platform": string(job.Platform),
		})
		return
	}

	s.log.Info(ctx, "metrics job starting", map[string]interface{}{
		"platform": string(job.Platform),
		"products": len(products),
	})

	for _, product := range products {
		if ctx.Err() != nil {
			return
		}
		s.scrapeAndIngest(ctx, job, product.URL, now)
	}

	s.log.Info(ctx, "metrics job finished", map[string]interface{}{
		"platform": string(job.Platform),
		"elapsed":  utils.FormatDuration(time.Since(started)),
	})
}

func (s *Scheduler) scrapeAndIngest(ctx context.Context, job PlatformJob, url string, now time.Time) {
	done := core.StartObservation(ctx, s.hooks, map[string]string{
		"platform": string(job.Platform),
		"url":      url,
	})
	var err error
	defer func() { done(err) }()

	var rec *extractors.ProductRecord
	rec, err = job.Extractor.ScrapeProduct(ctx, url)
	if err != nil {
		s.log.LogScrapeAttempt(ctx, string(job.Platform), url, err)
		return
	}

	var current commerce.DailyMetric
	var previous *commerce.DailyMetric
	current, previous, err = s.ingestProduct(ctx, rec, now)
	if err != nil {
		s.log.Error(ctx, "failed to persist scraped product", err, map[string]interface{}{
			"platform": string(job.Platform),
			"url":      url,
		})
		return
	}

	if s.engine == nil {
		return
	}
	if err := s.engine.ProcessMetric(ctx, current.ProductID, current, previous, now); err != nil {
		s.log.Error(ctx, "alert evaluation failed", err, map[string]interface{}{
			"platform":   string(job.Platform),
			"product_id": current.ProductID,
		})
	}
}
