package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aymanhs/expodir/internal/config"
	"github.com/aymanhs/expodir/internal/fetcher"
	"github.com/aymanhs/expodir/internal/observability"
	"github.com/aymanhs/expodir/internal/quality"
	"github.com/aymanhs/expodir/internal/runner"
	"github.com/aymanhs/expodir/internal/storage"
)

var (
	cfgFile      string
	verbose      bool
	outputPath   string
	outputType   string
	maxPages     int
	fetcherType  string
	delayMin     string
	delayMax     string
	noCategories bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "expodir",
		Short: "expodir — Egypt Exporters Directory scraper",
		Long: `expodir extracts bilingual company records from the Egypt Exporters
Directory: names (Arabic and English), contact channels, business
classification and registration details, with validation, deduplication
and a data-quality report.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape the exporter directory",
		Long:  "Crawl the directory starting from the configured (or given) URL and store the extracted company records.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: json, jsonl, csv, mongodb (comma-separated to write several)")
	cmd.Flags().IntVarP(&maxPages, "max-pages", "m", 0, "maximum pages to fetch (0 = use config)")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http or browser")
	cmd.Flags().StringVar(&delayMin, "delay-min", "", "minimum delay between page fetches")
	cmd.Flags().StringVar(&delayMax, "delay-max", "", "maximum delay between page fetches")
	cmd.Flags().BoolVar(&noCategories, "no-categories", false, "do not follow category/section links")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if len(args) == 1 {
		cfg.Scrape.StartURL = args[0]
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg)
	logger.Info("starting scrape",
		"start_url", cfg.Scrape.StartURL,
		"max_pages", cfg.Scrape.MaxPages,
		"fetcher", cfg.Fetcher.Type,
		"output", cfg.Storage.OutputPath,
		"format", cfg.Storage.Type,
	)

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		if err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	var f fetcher.Fetcher
	switch cfg.Fetcher.Type {
	case "browser":
		f, err = fetcher.NewBrowserFetcher(cfg, logger, fetcher.WithStealth())
	default:
		f, err = fetcher.NewHTTPFetcher(cfg, logger)
	}
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	store, err := storage.New(cfg.Storage, cfg.Scrape.StartURL, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	run, err := runner.New(cfg, f, store, metrics, logger)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, finishing up...", "signal", sig)
		cancel()
	}()

	start := time.Now()
	report, stats, err := run.Run(ctx)
	if cerr := store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	fmt.Printf("\nScrape complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("   Pages:     %d fetched, %d failed\n", stats.PagesFetched, stats.PagesFailed)
	fmt.Printf("   Companies: %d extracted, %d rejected, %d duplicates\n",
		stats.RecordsExtracted, stats.RecordsRejected, stats.RecordsDuplicate)
	fmt.Printf("   Stored:    %d\n", stats.RecordsStored)
	fmt.Printf("   Output:    %s\n", cfg.Storage.OutputPath)
	printReport(report)

	return nil
}

// scoreCmd creates the "score" subcommand, which re-scores an existing
// corpus file.
func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <corpus.json>",
		Short: "Print the quality report for an existing corpus file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read corpus: %w", err)
			}

			var env storage.Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return fmt.Errorf("parse corpus: %w", err)
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			report := quality.New(logger).Score(env.Companies)
			printReport(&report)
			return nil
		},
	}
}

// printReport prints a quality report in a readable form.
func printReport(report *quality.Report) {
	fmt.Printf("\nQuality report\n")
	fmt.Printf("   Records:          %d\n", report.TotalRecords)
	fmt.Printf("   With name:        %d\n", report.WithName)
	fmt.Printf("   With contact:     %d\n", report.WithContact)
	fmt.Printf("   With business:    %d\n", report.WithBusinessInfo)
	fmt.Printf("   Complete:         %d\n", report.Complete)
	fmt.Printf("   Score:            %.2f / 100\n", report.Score)
	if len(report.Issues) > 0 {
		fmt.Printf("   Issues:           %d\n", len(report.Issues))
		max := len(report.Issues)
		if max > 5 {
			max = 5
		}
		for _, issue := range report.Issues[:max] {
			fmt.Printf("     - %s\n", issue)
		}
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("expodir %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting and seeding
// configuration.
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configInitCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scrape:\n")
			fmt.Printf("  Start URL:         %s\n", cfg.Scrape.StartURL)
			fmt.Printf("  Max Pages:         %d\n", cfg.Scrape.MaxPages)
			fmt.Printf("  Follow Categories: %v\n", cfg.Scrape.FollowCategories)
			fmt.Printf("  Delay:             %s - %s\n", cfg.Scrape.DelayMin, cfg.Scrape.DelayMax)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Max Retries:       %d\n", cfg.Fetcher.MaxRetries)
			fmt.Printf("  Rate:              %.2f req/s\n", cfg.Fetcher.RatePerSecond)
			fmt.Printf("  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "expodir.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Printf("Wrote default configuration to %s\n", path)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	out := os.Stderr
	if cfg.Logging.Output == "stdout" {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if maxPages > 0 {
		cfg.Scrape.MaxPages = maxPages
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = fetcherType
	}
	if delayMin != "" {
		if d, err := time.ParseDuration(delayMin); err == nil {
			cfg.Scrape.DelayMin = d
		}
	}
	if delayMax != "" {
		if d, err := time.ParseDuration(delayMax); err == nil {
			cfg.Scrape.DelayMax = d
		}
	}
	if noCategories {
		cfg.Scrape.FollowCategories = false
	}
}
