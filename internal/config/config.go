package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for expodir.
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"  yaml:"scrape"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ScrapeConfig controls the crawl itself.
type ScrapeConfig struct {
	StartURL         string        `mapstructure:"start_url"         yaml:"start_url"`
	MaxPages         int           `mapstructure:"max_pages"         yaml:"max_pages"`
	FollowCategories bool          `mapstructure:"follow_categories" yaml:"follow_categories"`
	DelayMin         time.Duration `mapstructure:"delay_min"         yaml:"delay_min"`
	DelayMax         time.Duration `mapstructure:"delay_max"         yaml:"delay_max"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"       yaml:"max_retries"`
	RatePerSecond   float64       `mapstructure:"rate_per_second"   yaml:"rate_per_second"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// StorageConfig controls output/storage.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			StartURL:         "http://www.expoegypt.gov.eg/exporter_directory",
			MaxPages:         50,
			FollowCategories: true,
			DelayMin:         2 * time.Second,
			DelayMax:         5 * time.Second,
		},
		Fetcher: FetcherConfig{
			Type:           "http",
			RequestTimeout: 30 * time.Second,
			MaxRetries:     3,
			RatePerSecond:  0.5,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Storage: StorageConfig{
			Type:            "json",
			OutputPath:      "./output/companies.json",
			MongoDatabase:   "expodir",
			MongoCollection: "companies",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
