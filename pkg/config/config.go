// Package config provides unified configuration loading for the pipeline:
// environment variables (via envdecode), an optional YAML file, and a
// .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aakashv8900/commercesignal/infrastructure/utils"
)

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL"`
	Format string `json:"format" env:"LOG_FORMAT"`
}

// ScrapeConfig controls the anti-blocking fetch substrate shared by all
// platform extractors.
type ScrapeConfig struct {
	Mode             string        `json:"mode" env:"SCRAPE_MODE"` // "free" or "paid"
	DelayMinMillis   int           `json:"delay_min_ms" env:"SCRAPE_DELAY_MIN_MS"`
	DelayMaxMillis   int           `json:"delay_max_ms" env:"SCRAPE_DELAY_MAX_MS"`
	RequestTimeout   time.Duration `json:"request_timeout" env:"SCRAPE_REQUEST_TIMEOUT"`
	ScraperAPIKey    string        `json:"-" env:"SCRAPERAPI_KEY"`
	BrightDataUser   string        `json:"-" env:"BRIGHTDATA_USER"`
	BrightDataPass   string        `json:"-" env:"BRIGHTDATA_PASS"`
	MaxDiscoveryAmzn int           `json:"max_discovery_amazon" env:"SCRAPE_MAX_DISCOVERY_AMAZON_FLIPKART"`
	MaxDiscoveryRest int           `json:"max_discovery_rest" env:"SCRAPE_MAX_DISCOVERY_OTHER"`
}

// CurrencyConfig controls the FX resolver used by the arbitrage analyzer.
type CurrencyConfig struct {
	APIBaseURL     string        `json:"api_base_url" env:"CURRENCY_API_BASE_URL"`
	RequestTimeout time.Duration `json:"request_timeout" env:"CURRENCY_API_TIMEOUT"`
	CacheTTL       time.Duration `json:"cache_ttl" env:"CURRENCY_CACHE_TTL"`
}

// SchedulerConfig controls discovery/metrics job cadence.
type SchedulerConfig struct {
	TickInterval      time.Duration `json:"tick_interval" env:"SCHEDULER_TICK_INTERVAL"`
	MaxConcurrentJobs int           `json:"max_concurrent_jobs" env:"SCHEDULER_MAX_CONCURRENT_JOBS"`
	JobTimeout        time.Duration `json:"job_timeout" env:"SCHEDULER_JOB_TIMEOUT"`
}

// AlertConfig controls notification delivery.
type AlertConfig struct {
	WebhookTimeout time.Duration `json:"webhook_timeout" env:"ALERT_WEBHOOK_TIMEOUT"`
	WebhookRetries int           `json:"webhook_retries" env:"ALERT_WEBHOOK_RETRIES"`
}

// Config is the top-level configuration structure for the pipeline.
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Scrape    ScrapeConfig    `json:"scrape"`
	Currency  CurrencyConfig  `json:"currency"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Alert     AlertConfig     `json:"alert"`
}

// New returns a configuration populated with defaults matching the free
// operating mode.
func New() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Scrape: ScrapeConfig{
			Mode:             "free",
			DelayMinMillis:   2000,
			DelayMaxMillis:   5000,
			RequestTimeout:   30 * time.Second,
			MaxDiscoveryAmzn: 30,
			MaxDiscoveryRest: 20,
		},
		Currency: CurrencyConfig{
			APIBaseURL:     "https://api.exchangerate-api.com/v4/latest",
			RequestTimeout: 5 * time.Second,
			CacheTTL:       1 * time.Hour,
		},
		Scheduler: SchedulerConfig{
			TickInterval:      5 * time.Second,
			MaxConcurrentJobs: 4,
			JobTimeout:        2 * time.Minute,
		},
		Alert: AlertConfig{
			WebhookTimeout: 10 * time.Second,
			WebhookRetries: 3,
		},
	}
}

// Load loads configuration from an optional YAML file followed by
// environment variable overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	if path := utils.GetEnvOptional("CONFIG_FILE"); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		_ = loadFromFile("configs/config.yaml", cfg)
	}

	if err := envdecode.Decode(cfg); err != nil {
		// envdecode errors when no tagged fields are present in the
		// environment; treat that as "no overrides" so local runs work
		// without exporting every variable.
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	cfg.normalize()
	return cfg, nil
}

// LoadFile reads configuration from a YAML file, without environment
// overrides.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// IsPaidMode reports whether the scraper substrate should use the paid
// rate-limit/circuit-breaker constants (see scraping.Config in
// internal/app/services/scraping).
func (c *Config) IsPaidMode() bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Scrape.Mode), "paid")
}

func (c *Config) normalize() {
	if c == nil {
		return
	}
	if c.Scrape.DelayMaxMillis < c.Scrape.DelayMinMillis {
		c.Scrape.DelayMaxMillis = c.Scrape.DelayMinMillis
	}
	if c.Scrape.MaxDiscoveryAmzn <= 0 {
		c.Scrape.MaxDiscoveryAmzn = 30
	}
	if c.Scrape.MaxDiscoveryRest <= 0 {
		c.Scrape.MaxDiscoveryRest = 20
	}
}
