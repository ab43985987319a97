// Package runner orchestrates one scrape: fetch pages, extract records,
// validate, deduplicate, score and store.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/aymanhs/expodir/internal/config"
	"github.com/aymanhs/expodir/internal/dedup"
	"github.com/aymanhs/expodir/internal/extract"
	"github.com/aymanhs/expodir/internal/fetcher"
	"github.com/aymanhs/expodir/internal/observability"
	"github.com/aymanhs/expodir/internal/pager"
	"github.com/aymanhs/expodir/internal/quality"
	"github.com/aymanhs/expodir/internal/storage"
	"github.com/aymanhs/expodir/internal/types"
	"github.com/aymanhs/expodir/internal/validate"
)

// Stats counts what happened during one run.
type Stats struct {
	PagesFetched     int `json:"pages_fetched"`
	PagesFailed      int `json:"pages_failed"`
	RecordsExtracted int `json:"records_extracted"`
	RecordsRejected  int `json:"records_rejected"`
	RecordsDuplicate int `json:"records_duplicate"`
	RecordsStored    int `json:"records_stored"`
	Errors           int `json:"errors"`
}

// Runner drives the full pipeline for one directory crawl.
type Runner struct {
	cfg       *config.Config
	fetcher   fetcher.Fetcher
	pager     *pager.Pager
	extractor *extract.Extractor
	validator *validate.Validator
	deduper   *dedup.Deduplicator
	scorer    *quality.Scorer
	store     storage.Storage
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a Runner wired to the given fetcher and storage.
func New(cfg *config.Config, f fetcher.Fetcher, store storage.Storage, metrics *observability.Metrics, logger *slog.Logger) (*Runner, error) {
	p, err := pager.New(cfg.Scrape.StartURL, cfg.Scrape.FollowCategories, logger)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:       cfg,
		fetcher:   f,
		pager:     p,
		extractor: extract.New(logger),
		validator: validate.New(logger),
		deduper:   dedup.New(logger),
		scorer:    quality.New(logger),
		store:     store,
		metrics:   metrics,
		logger:    logger.With("component", "runner"),
	}, nil
}

// Run crawls the directory breadth-first from the start URL, bounded by
// scrape.max_pages, and stores the validated, deduplicated records. The
// caller closes the storage.
func (r *Runner) Run(ctx context.Context) (*quality.Report, *Stats, error) {
	start := time.Now()
	stats := &Stats{}

	var collected []*types.Record
	queue := []string{r.cfg.Scrape.StartURL}
	r.pager.MarkSeen(r.cfg.Scrape.StartURL)

	for len(queue) > 0 && stats.PagesFetched+stats.PagesFailed < r.cfg.Scrape.MaxPages {
		if ctx.Err() != nil {
			r.logger.Info("run cancelled", "pages_fetched", stats.PagesFetched)
			break
		}

		url := queue[0]
		queue = queue[1:]

		page, err := r.fetcher.Fetch(ctx, url)
		if err != nil {
			stats.PagesFailed++
			stats.Errors++
			r.metrics.PagesFailed.Inc()
			r.logger.Warn("page failed", "url", url, "error", err)
			continue
		}
		stats.PagesFetched++
		r.metrics.PagesFetched.Inc()
		r.metrics.FetchDuration.Observe(page.FetchDuration.Seconds())

		records, err := r.extractor.Page(page)
		if err != nil {
			stats.Errors++
			r.logger.Error("extraction failed", "url", url, "error", err)
		} else {
			collected = append(collected, records...)
			stats.RecordsExtracted += len(records)
			r.metrics.RecordsExtracted.Add(float64(len(records)))
		}

		queue = append(queue, r.pager.DiscoverLinks(page)...)

		if len(queue) > 0 {
			delay := fetcher.RandomDelay(r.cfg.Scrape.DelayMin, r.cfg.Scrape.DelayMax)
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	}

	kept, rejected := r.validator.Batch(collected)
	stats.RecordsRejected = rejected
	r.metrics.RecordsRejected.Add(float64(rejected))

	unique := r.deduper.Filter(kept)
	stats.RecordsDuplicate = len(kept) - len(unique)
	r.metrics.RecordsDuplicate.Add(float64(stats.RecordsDuplicate))

	report := r.scorer.Score(unique)

	if err := r.store.Store(unique); err != nil {
		return &report, stats, err
	}
	stats.RecordsStored = len(unique)
	r.metrics.RecordsStored.Add(float64(len(unique)))

	session := &types.SessionInfo{
		StartTime:               start,
		EndTime:                 time.Now(),
		TotalPagesScraped:       stats.PagesFetched,
		TotalCompaniesExtracted: len(unique),
		ErrorsEncountered:       stats.Errors,
	}
	if sw, ok := r.store.(storage.SessionWriter); ok {
		sw.SetSession(session, &report)
	}

	r.logger.Info("run complete",
		"elapsed", time.Since(start),
		"pages_fetched", stats.PagesFetched,
		"pages_failed", stats.PagesFailed,
		"companies", len(unique),
		"rejected", rejected,
		"duplicates", stats.RecordsDuplicate,
		"quality_score", report.Score,
	)

	return &report, stats, nil
}
