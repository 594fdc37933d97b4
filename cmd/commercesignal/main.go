package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aakashv8900/commercesignal/infrastructure/logging"
	"github.com/aakashv8900/commercesignal/infrastructure/metrics"
	"github.com/aakashv8900/commercesignal/internal/app/services/alerts"
	"github.com/aakashv8900/commercesignal/internal/app/services/extractors"
	"github.com/aakashv8900/commercesignal/internal/app/services/scheduler"
	"github.com/aakashv8900/commercesignal/internal/app/services/scraping"
	"github.com/aakashv8900/commercesignal/internal/app/storage"
	"github.com/aakashv8900/commercesignal/internal/app/system"
	"github.com/aakashv8900/commercesignal/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New("commercesignal", cfg.Logging.Level, cfg.Logging.Format)
	ctx := context.Background()
	startTime := time.Now()

	if metrics.Enabled() {
		metrics.Init("commercesignal")
	}

	mode := scraping.ModeFree
	if cfg.IsPaidMode() {
		mode = scraping.ModePaid
	}
	substrate := scraping.New(scraping.Config{
		Mode:           mode,
		RequestTimeout: cfg.Scrape.RequestTimeout,
	}, log)

	amazon := extractors.NewAmazon(substrate)
	flipkart := extractors.NewFlipkart(substrate)
	walmart := extractors.NewWalmart(substrate)
	ebay := extractors.NewEbay(substrate)

	store := storage.NewMemory()

	queue := alerts.NewMCPQueue()
	sender := alerts.NewSender(queue)
	engine := alerts.NewEngine(store, sender)

	sched := scheduler.New(store, engine, log)
	start := time.Now().UTC()
	for _, job := range scheduler.DefaultJobs(amazon, flipkart, ebay, walmart) {
		if err := sched.Register(job, start); err != nil {
			log.Fatal(ctx, "register scheduler job", err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		log.Fatal(ctx, "start scheduler", err)
	}

	descriptors := system.CollectDescriptors([]system.DescriptorProvider{sched})
	log.Info(ctx, "commercesignal scheduler started", map[string]interface{}{
		"mode":        string(mode),
		"descriptors": len(descriptors),
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	metrics.Global().UpdateUptime(startTime)
	log.Info(ctx, "shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "scheduler shutdown did not complete cleanly", err, nil)
	}
}
