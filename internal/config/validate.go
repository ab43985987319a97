package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aymanhs/expodir/internal/types"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Scrape.StartURL); err != nil {
		return fmt.Errorf("scrape.start_url: %w", err)
	}
	if cfg.Scrape.MaxPages < 1 {
		return fmt.Errorf("scrape.max_pages must be >= 1, got %d", cfg.Scrape.MaxPages)
	}
	if cfg.Scrape.DelayMin < 0 {
		return fmt.Errorf("scrape.delay_min must be >= 0")
	}
	if cfg.Scrape.DelayMax < cfg.Scrape.DelayMin {
		return fmt.Errorf("scrape.delay_max must be >= scrape.delay_min")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("fetcher.max_retries must be >= 0, got %d", cfg.Fetcher.MaxRetries)
	}
	if cfg.Fetcher.RatePerSecond <= 0 {
		return fmt.Errorf("fetcher.rate_per_second must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	validStorageTypes := map[string]bool{
		"json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	// storage.type may list several backends separated by commas.
	for _, name := range strings.Split(cfg.Storage.Type, ",") {
		name = strings.TrimSpace(name)
		if !validStorageTypes[name] {
			return fmt.Errorf("storage.type %q is not supported (valid: json, jsonl, csv, mongodb)", name)
		}
		if name == "mongodb" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
		}
		if name != "mongodb" && cfg.Storage.OutputPath == "" {
			return fmt.Errorf("storage.output_path is required for file storage")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a crawl entry point.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", types.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", types.ErrInvalidURL)
	}
	return nil
}
