// Package scheduler owns the cron/interval job timers that drive discovery
// and daily-metric collection across platforms. Within a job, extractor
// calls for one platform run sequentially to respect that platform's rate
// limiter; different platforms run concurrently as independent cron
// entries.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aakashv8900/commercesignal/infrastructure/logging"
	core "github.com/aakashv8900/commercesignal/internal/app/core/service"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/alerts"
	"github.com/aakashv8900/commercesignal/internal/app/services/extractors"
	"github.com/aakashv8900/commercesignal/internal/app/storage"
)

// PlatformJob describes one platform's full job configuration: what to
// scrape, how much to take per category, and when the two timers fire.
type PlatformJob struct {
	Platform         commerce.Platform
	Extractor        extractors.Extractor
	Categories       []string
	LimitPerCategory int
	DiscoveryEvery   time.Duration
	DiscoveryOffset  time.Duration
	MetricsCronSpec  string // standard 5-field spec, evaluated in UTC
}

// Scheduler is the single-process owner of every platform's job timers. It
// holds no state about individual products; all of that lives in store.
type Scheduler struct {
	cron   *cron.Cron
	store  storage.Store
	engine *alerts.Engine
	log    *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	locks map[commerce.Platform]*sync.Mutex

	hooks core.ObservationHooks
}

// New builds a Scheduler. engine may be nil in contexts that only want
// discovery/metrics collection without alert dispatch (e.g. backfills). Every
// scrape+ingest is wrapped in an observation that logs its outcome.
func New(store storage.Store, engine *alerts.Engine, log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		store:  store,
		engine: engine,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		locks:  make(map[commerce.Platform]*sync.Mutex),
	}
	s.hooks = core.ObservationHooks{
		OnComplete: func(ctx context.Context, meta map[string]string, err error, duration time.Duration) {
			if err == nil {
				return
			}
			s.log.Warn(ctx, "product observation failed", map[string]interface{}{
				"platform": meta["platform"],
				"url":      meta["url"],
				"elapsed":  duration.String(),
				"error":    err.Error(),
			})
		},
	}
	return s
}

func (s *Scheduler) platformLock(p commerce.Platform) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[p]
	if !ok {
		l = &sync.Mutex{}
		s.locks[p] = l
	}
	return l
}

// Register wires job's discovery (fixed interval, offset from start) and
// metrics (daily cron) timers onto the scheduler. Call before Start.
func (s *Scheduler) Register(job PlatformJob, start time.Time) error {
	discoverySchedule := offsetEvery{first: start.Add(job.DiscoveryOffset), every: job.DiscoveryEvery}
	s.cron.Schedule(discoverySchedule, cron.FuncJob(func() {
		s.runDiscovery(s.ctx, job)
	}))

	_, err := s.cron.AddFunc(job.MetricsCronSpec, func() {
		s.runMetrics(s.ctx, job)
	})
	return err
}

// Name identifies this service to the system manager.
func (s *Scheduler) Name() string { return "scheduler" }

// Descriptor advertises the scheduler's placement to orchestration/reporting
// code that walks a system.DescriptorProvider list.
func (s *Scheduler) Descriptor() core.Descriptor {
	return core.Descriptor{
		Name:   "scheduler",
		Domain: "commercesignal",
		Layer:  core.LayerEngine,
	}.WithCapabilities("discovery", "metrics-collection", "alert-dispatch")
}

// Start begins dispatching registered jobs on their timers. It satisfies
// system.Service; the cron runtime itself does not take ctx, so ctx here
// only governs how long Start waits before returning (immediately, once
// the cron loop is running).
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	return nil
}

// Stop halts the cron runtime and cancels any outstanding fetch, waiting up
// to ctx's deadline for in-flight job runs to unwind. A job cancelled
// mid-discovery loses at most the product it was scraping when Stop was
// called; everything already ingested stays committed.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	s.cancel()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
